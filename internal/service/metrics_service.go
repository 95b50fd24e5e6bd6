package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the workflow
// engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	ticketsCreated  prometheus.Counter
	countsRecorded  prometheus.Counter
	batchItems      *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	ticketsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tickets_created_total",
		Help: "Total verification tickets created",
	})

	countsRecorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "physical_counts_total",
		Help: "Total physical count registrations",
	})

	batchItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_register_items_total",
		Help: "Batch registration items by outcome",
	}, []string{"outcome"})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheHits, cacheMisses,
		ticketsCreated, countsRecorded, batchItems,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		ticketsCreated:  ticketsCreated,
		countsRecorded:  countsRecorded,
		batchItems:      batchItems,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one handled HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCacheLookup tracks a cache hit or miss.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// RecordTicketCreated increments the ticket counter.
func (s *MetricsService) RecordTicketCreated() {
	if s != nil {
		s.ticketsCreated.Inc()
	}
}

// RecordPhysicalCount increments the registration counter.
func (s *MetricsService) RecordPhysicalCount() {
	if s != nil {
		s.countsRecorded.Inc()
	}
}

// RecordBatchItem tracks a batch item outcome.
func (s *MetricsService) RecordBatchItem(success bool) {
	if s == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	s.batchItems.WithLabelValues(outcome).Inc()
}
