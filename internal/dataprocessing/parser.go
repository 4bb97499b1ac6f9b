package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// column identifies a known input field.
type column int

const (
	colDate column = iota
	colContract
	colBroker
	colInstrument
	colVolume
	colVolumeChange
	colVolumeRank
	colLong
	colLongChange
	colLongRank
	colShort
	colShortChange
	colShortRank
)

var columnAliases = map[string]column{
	"date":           colDate,
	"datetime":       colDate,
	"trading_day":    colDate,
	"contract":       colContract,
	"symbol":         colContract,
	"broker":         colBroker,
	"instrument_id":  colInstrument,
	"volume":         colVolume,
	"volume_change":  colVolumeChange,
	"volume_ranking": colVolumeRank,
	"volume_rank":    colVolumeRank,
	"long_oi":        colLong,
	"long_change":    colLongChange,
	"long_ranking":   colLongRank,
	"long_rank":      colLongRank,
	"short_oi":       colShort,
	"short_change":   colShortChange,
	"short_ranking":  colShortRank,
	"short_rank":     colShortRank,
}

// ParseResult is the outcome of reading one source.
type ParseResult struct {
	Source  string
	Records []domain.RawRecord
	Rows    int
	Dropped int
}

// Parser turns member ranking exports into raw records.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile dispatches on the file extension.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return p.ParseWorkbook(ctx, path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewStorageError("failed to open source", err).WithContext("path", path)
		}
		defer f.Close()
		return p.ParseCSV(ctx, path, f)
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported source type %q", filepath.Ext(path)), nil).
			WithContext("path", path)
	}
}

// ParseCSV reads a header-led CSV export. Rows whose field count differs from
// the header, or without a usable date, are dropped.
func (p *Parser) ParseCSV(ctx context.Context, source string, r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read csv", err).WithContext("source", source)
	}
	return p.parseRows(ctx, source, rows, true)
}

// ParseWorkbook reads the first sheet of an xlsx export. Trailing empty cells
// are not stored by spreadsheets, so short rows are padded rather than dropped.
func (p *Parser) ParseWorkbook(ctx context.Context, path string) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	return p.parseRows(ctx, path, rows, false)
}

func (p *Parser) parseRows(ctx context.Context, source string, rows [][]string, strictWidth bool) (*ParseResult, error) {
	result := &ParseResult{Source: source, Records: []domain.RawRecord{}}
	if len(rows) == 0 {
		p.logger.WarnContext(ctx, "Source is empty", slog.String("source", source))
		return result, nil
	}

	header := rows[0]
	index, err := mapColumns(header)
	if err != nil {
		return nil, errors.NewParsingError("invalid header", err).WithContext("source", source)
	}

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		result.Rows++

		if len(row) != len(header) {
			if strictWidth || len(row) > len(header) {
				result.Dropped++
				p.logger.DebugContext(ctx, "Dropping row with mismatched width",
					slog.String("source", source),
					slog.Int("line", i+2),
					slog.Int("fields", len(row)),
					slog.Int("expected", len(header)))
				continue
			}
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}

		rec, ok := buildRecord(row, index)
		if !ok {
			result.Dropped++
			p.logger.DebugContext(ctx, "Dropping row without date",
				slog.String("source", source),
				slog.Int("line", i+2))
			continue
		}
		result.Records = append(result.Records, rec)
	}

	p.logger.InfoContext(ctx, "Parsed position source",
		slog.String("source", source),
		slog.Int("rows", result.Rows),
		slog.Int("records", len(result.Records)),
		slog.Int("dropped", result.Dropped))

	return result, nil
}

func mapColumns(header []string) (map[column]int, error) {
	index := make(map[column]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		col, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	var missing []string
	for _, req := range []struct {
		col  column
		name string
	}{{colDate, "date"}, {colContract, "contract"}, {colBroker, "broker"}} {
		if _, ok := index[req.col]; !ok {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func buildRecord(row []string, index map[column]int) (domain.RawRecord, bool) {
	field := func(c column) string {
		if i, ok := index[c]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	date, err := domain.ParseDate(field(colDate))
	if err != nil {
		return domain.RawRecord{}, false
	}

	return domain.RawRecord{
		Date:         date,
		Contract:     field(colContract),
		Broker:       field(colBroker),
		InstrumentID: field(colInstrument),
		Volume: domain.Metric{
			Value:  parseAmount(field(colVolume)),
			Change: parseAmount(field(colVolumeChange)),
			Rank:   parseRank(field(colVolumeRank)),
		},
		Long: domain.Metric{
			Value:  parseAmount(field(colLong)),
			Change: parseAmount(field(colLongChange)),
			Rank:   parseRank(field(colLongRank)),
		},
		Short: domain.Metric{
			Value:  parseAmount(field(colShort)),
			Change: parseAmount(field(colShortChange)),
			Rank:   parseRank(field(colShortRank)),
		},
	}, true
}

// parseAmount returns 0 for anything that is not a finite number.
func parseAmount(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v))
}

func parseRank(s string) domain.Rank {
	return domain.RankOf(int(parseAmount(s)))
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
