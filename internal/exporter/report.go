package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/config"
	apperrors "github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// Report collects the query results written in one export run.
// Nil sections are skipped.
type Report struct {
	Product      string                    `json:"product"`
	Date         domain.Date               `json:"date"`
	Leaderboard  *domain.Leaderboard       `json:"leaderboard,omitempty"`
	Trend        *domain.TrendReport       `json:"trend,omitempty"`
	CrossPeriod  *domain.CrossPeriodResult `json:"cross_period,omitempty"`
	BrokerDetail *domain.BrokerDetail      `json:"broker_detail,omitempty"`
}

// Tables flattens the report into its exported tables.
func (r *Report) Tables() []Table {
	var tables []Table
	tables = append(tables, LeaderboardTables(r.Leaderboard)...)
	if r.Trend != nil {
		tables = append(tables, TrendTable(r.Trend))
	}
	tables = append(tables, CrossPeriodTables(r.CrossPeriod)...)
	tables = append(tables, BrokerDetailTables(r.BrokerDetail)...)
	return tables
}

// Exporter writes reports under the reports directory as
// <product>_<date>_<report>.<ext>.
type Exporter struct {
	paths     *config.Paths
	csv       *CSVWriter
	workbook  *WorkbookWriter
	bomPrefix bool
	logger    *slog.Logger
}

// NewExporter creates an exporter for the configured reports directory.
func NewExporter(paths *config.Paths, cfg config.ExportConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		paths:     paths,
		csv:       NewCSVWriter(paths, logger),
		workbook:  NewWorkbookWriter(logger),
		bomPrefix: cfg.BOMPrefix,
		logger:    logger,
	}
}

// Export writes report in format and returns the written files.
func (e *Exporter) Export(ctx context.Context, report *Report, format string) ([]string, error) {
	if report == nil {
		return nil, apperrors.NewExportError("nothing to export", nil)
	}

	var (
		files []string
		err   error
	)
	switch strings.ToLower(format) {
	case FormatCSV, "":
		files, err = e.exportCSV(report)
	case FormatXLSX:
		files, err = e.exportWorkbook(report)
	case FormatJSON:
		files, err = e.exportJSON(report)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported export format %q", format), nil)
	}
	if err != nil {
		return files, apperrors.NewExportError("failed to write report", err).WithContext("format", format)
	}

	e.logger.InfoContext(ctx, "Report exported",
		slog.String("format", format),
		slog.String("product", report.Product),
		slog.String("date", report.Date.String()),
		slog.Int("files", len(files)))
	return files, nil
}

func (e *Exporter) exportCSV(report *Report) ([]string, error) {
	tables := report.Tables()
	files := make([]string, 0, len(tables))
	for _, t := range tables {
		path := e.paths.ReportPath(report.Product, report.Date.String(), t.Name, FormatCSV)
		if err := e.csv.WriteCSV(path, WriteOptions{
			Headers:   t.Headers,
			Records:   t.Rows,
			BOMPrefix: e.bomPrefix,
		}); err != nil {
			return files, fmt.Errorf("%s: %w", t.Name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func (e *Exporter) exportWorkbook(report *Report) ([]string, error) {
	path := e.paths.ReportPath(report.Product, report.Date.String(), "report", FormatXLSX)
	if err := e.workbook.WriteWorkbook(path, report.Tables()); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (e *Exporter) exportJSON(report *Report) ([]string, error) {
	path := e.paths.ReportPath(report.Product, report.Date.String(), "report", FormatJSON)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return []string{path}, nil
}
