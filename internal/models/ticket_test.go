package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductCodes(t *testing.T) {
	codes := NormalizeProductCodes([]string{" abc123 ", "ABC123", "", "def456", "  ", "abc123"})
	assert.Equal(t, []string{"ABC123", "DEF456"}, codes)
}

func TestNormalizeProductCodesEmpty(t *testing.T) {
	assert.Empty(t, NormalizeProductCodes(nil))
	assert.Empty(t, NormalizeProductCodes([]string{"", "  "}))
}

func TestCodeStatusTransitions(t *testing.T) {
	tests := []struct {
		from    CodeStatus
		to      CodeStatus
		allowed bool
	}{
		{CodeStatusPendiente, CodeStatusEnRevision, true},
		{CodeStatusPendiente, CodeStatusListo, false},
		{CodeStatusEnRevision, CodeStatusListo, true},
		{CodeStatusEnRevision, CodeStatusAjustado, true},
		{CodeStatusEnRevision, CodeStatusDevuelto, true},
		{CodeStatusListo, CodeStatusEnRevision, false},
		{CodeStatusListo, CodeStatusCancelado, true},
		{CodeStatusCancelado, CodeStatusCancelado, false},
		{CodeStatusDevuelto, CodeStatusCancelado, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestDeriveTicketStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []CodeStatus
		expected TicketStatus
	}{
		{"no codes", nil, TicketStatusPendiente},
		{"any pending wins", []CodeStatus{CodeStatusListo, CodeStatusPendiente}, TicketStatusPendiente},
		{"in review", []CodeStatus{CodeStatusListo, CodeStatusEnRevision}, TicketStatusEnRevision},
		{"devuelto counts as in review", []CodeStatus{CodeStatusListo, CodeStatusDevuelto}, TicketStatusEnRevision},
		{"adjusted", []CodeStatus{CodeStatusListo, CodeStatusAjustado}, TicketStatusAjustado},
		{"all done", []CodeStatus{CodeStatusListo, CodeStatusListo}, TicketStatusListo},
		{"all cancelled", []CodeStatus{CodeStatusCancelado, CodeStatusCancelado}, TicketStatusCancelado},
		{"cancelled ignored", []CodeStatus{CodeStatusCancelado, CodeStatusListo}, TicketStatusListo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make([]TicketCode, len(tt.statuses))
			for i, status := range tt.statuses {
				codes[i] = TicketCode{Status: status}
			}
			assert.Equal(t, tt.expected, DeriveTicketStatus(codes))
		})
	}
}

func TestCountTicketProgress(t *testing.T) {
	codes := []TicketCode{
		{Status: CodeStatusListo},
		{Status: CodeStatusAjustado},
		{Status: CodeStatusPendiente},
		{Status: CodeStatusEnRevision},
		{Status: CodeStatusDevuelto},
		{Status: CodeStatusCancelado},
	}
	completed, pending := CountTicketProgress(codes)
	assert.Equal(t, 2, completed)
	assert.Equal(t, 3, pending)
}

func TestParseTicketStatus(t *testing.T) {
	status, ok := ParseTicketStatus(" listo ")
	assert.True(t, ok)
	assert.Equal(t, TicketStatusListo, status)

	_, ok = ParseTicketStatus("DONE")
	assert.False(t, ok)
}

func TestParsePriority(t *testing.T) {
	priority, ok := ParsePriority("urgente")
	assert.True(t, ok)
	assert.Equal(t, PriorityUrgente, priority)

	_, ok = ParsePriority("CRITICAL")
	assert.False(t, ok)
}
