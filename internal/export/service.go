// Package export writes extracted records to an XLSX workbook for operator review.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

const (
	RecordsSheet   = "Records"
	DocumentsSheet = "Documents"
)

// DocumentLister returns document snapshots. *registry.Registry satisfies it.
type DocumentLister interface {
	List() []entity.Document
}

// Service produces review workbooks from the registry's documents.
type Service struct {
	docs   DocumentLister
	logger *slog.Logger
}

func NewService(docs DocumentLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

var recordHeaders = []string{
	"Document",
	"Source",
	"Name",
	"Scientific Name",
	"Category",
	"Varieties",
	"Season",
	"Growing Period (days)",
	"Soil Type",
	"Climate",
	"Temperature Range",
	"Rainfall",
	"Water Requirement",
	"Drought Tolerance",
	"Pests & Diseases",
	"Fertilizer",
	"Irrigation",
	"Harvest Notes",
	"Yield / ha",
	"Market Price",
	"Regions",
	"Description",
	"Confidence",
	"Notes",
}

var documentHeaders = []string{"Document", "Kind", "Status", "Progress", "Records", "Method", "Source", "Error", "Uploaded"}

// ExportXLSX returns a workbook with one row per extracted record and one row per document.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	docs := s.docs.List()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DocumentsSheet); err != nil {
		return nil, err
	}

	writeRow(f, RecordsSheet, 1, toAny(recordHeaders))
	writeRow(f, DocumentsSheet, 1, toAny(documentHeaders))

	recRow, docRow := 2, 2
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		writeRow(f, DocumentsSheet, docRow, []any{
			d.Name, d.Kind.Label(), string(d.Status), d.Progress, len(d.ExtractedRecords),
			d.ExtractionMethod, string(d.Source), d.Error, d.UploadedAt.UTC().Format(time.RFC3339),
		})
		docRow++

		if d.Status != constants.StatusCompleted {
			continue
		}
		for _, r := range d.ExtractedRecords {
			writeRow(f, RecordsSheet, recRow, recordRow(d, r))
			recRow++
		}
	}

	_ = f.SetColWidth(RecordsSheet, "A", "A", 28)
	_ = f.SetColWidth(RecordsSheet, "C", "D", 24)
	_ = f.SetColWidth(RecordsSheet, "V", "V", 48)
	_ = f.SetColWidth(RecordsSheet, "X", "X", 60)
	_ = f.SetColWidth(DocumentsSheet, "A", "A", 28)
	_ = f.SetColWidth(DocumentsSheet, "H", "H", 48)
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"rows", recRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func recordRow(d entity.Document, r entity.ExtractedRecord) []any {
	days := ""
	if r.GrowingPeriodDays != nil {
		days = fmt.Sprint(*r.GrowingPeriodDays)
	}
	return []any{
		d.Name, string(d.Source),
		r.Name, r.ScientificName, r.Category,
		join(r.Varieties), join(r.Season), days,
		r.SoilType, r.Climate, r.TemperatureRange, r.RainfallRequirement, r.WaterRequirement,
		r.DroughtTolerance, join(r.PestsAndDiseases), r.Fertilizer, r.Irrigation,
		r.HarvestNotes, r.YieldPerHectare, r.MarketPrice, join(r.Regions),
		truncate(r.Description, 500), r.ConfidenceScore, truncate(r.ExtractionNotes, 500),
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func join(ss []string) string { return strings.Join(ss, ", ") }

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
