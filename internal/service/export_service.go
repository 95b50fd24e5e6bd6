package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/inventory-recon-api/internal/dto"
	"github.com/retailops/inventory-recon-api/internal/models"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
	"github.com/retailops/inventory-recon-api/pkg/export"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders count reconciliation reports.
type ExportService struct {
	counts  CountStore
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	maxRows int
	logger  *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(counts CountStore, csv *export.CSVExporter, pdf *export.PDFExporter, maxRows int, logger *zap.Logger) *ExportService {
	if maxRows <= 0 {
		maxRows = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{counts: counts, csv: csv, pdf: pdf, maxRows: maxRows, logger: logger}
}

// ExportCounts renders the counts matching the query as CSV or PDF. The row
// cap keeps exports synchronous and bounded.
func (s *ExportService) ExportCounts(ctx context.Context, query dto.CountQuery, format ExportFormat) (*ExportFile, error) {
	filter := models.CountFilter{
		TicketID:      query.TicketID,
		StoreCode:     query.StoreCode,
		DivisionCode:  query.DivisionCode,
		HasDifference: query.HasDifference,
		Counted:       query.Counted,
		From:          query.From,
		To:            query.To,
		Page:          1,
		PageSize:      s.maxRows,
	}
	if query.Status != "" {
		status, ok := models.ParseCountStatus(query.Status)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown count status %q", query.Status))
		}
		filter.Status = []models.CountStatus{status}
	}

	counts, total, err := s.counts.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "load counts for export")
	}
	if total > s.maxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("export exceeds the %d row limit, narrow the filters", s.maxRows))
	}

	table := buildCountTable(query.StoreCode, counts)

	var data []byte
	var contentType, extension string
	switch format {
	case FormatCSV:
		data, err = s.csv.Render(table)
		contentType = "text/csv"
		extension = "csv"
	case FormatPDF:
		data, err = s.pdf.Render(table)
		contentType = "application/pdf"
		extension = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Internal(err, "render export")
	}

	filename := fmt.Sprintf("counts_%s.%s", time.Now().UTC().Format("20060102_150405"), extension)
	s.logger.Info("export rendered",
		zap.String("filename", filename),
		zap.Int("rows", len(counts)))
	return &ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

// ParseExportFormat normalises a raw format string.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, true
	case FormatPDF:
		return FormatPDF, true
	}
	return "", false
}

func buildCountTable(storeCode string, counts []models.Count) export.Table {
	title := "Reporte de conteos"
	if storeCode != "" {
		title = fmt.Sprintf("Reporte de conteos %s", storeCode)
	}
	table := export.Table{
		Title: title,
		Headers: []string{
			"Ticket", "Codigo", "Descripcion", "Division",
			"Stock calculado", "Fisico", "Diferencia", "Costo", "Movimiento", "Estado",
		},
		Rows: make([][]string, 0, len(counts)),
	}
	for _, count := range counts {
		physical, difference, cost, movement := "", "", "", ""
		if count.PhysicalQty != nil {
			physical = count.PhysicalQty.String()
		}
		if count.Diferencia != nil {
			difference = count.Diferencia.String()
		}
		if count.CostoTotal != nil {
			cost = count.CostoTotal.String()
		}
		if count.MovementType != nil {
			movement = string(*count.MovementType)
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", count.TicketID),
			count.Barcode,
			count.Description,
			count.DivisionCode,
			count.CalculatedStock.String(),
			physical,
			difference,
			cost,
			movement,
			string(count.Status),
		})
	}
	return table
}
