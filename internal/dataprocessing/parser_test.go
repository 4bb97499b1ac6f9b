package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/shared/testutil"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

func TestParser_ParseCSV(t *testing.T) {
	input := "\ufeff" + testutil.PositionCSVHeader + "\n" +
		"20250905,SHFE.rb2605,中信期货,1200,30,1,500,12,2,,-4,x,rb2605,volume_ranking\n" +
		"2025-09-05 00:00:00,SHFE.rb2605,国泰君安,\"1,500\",abc,,600.4,0,0,300,5,3,,long_ranking\n" +
		",SHFE.rb2605,永安期货,1,1,1,1,1,1,1,1,1,,short_ranking\n" +
		"20250905,SHFE.rb2605,short row\n" +
		"\n"

	logger, logs := testutil.NewTestLogger(t)
	p := NewParser(logger)

	result, err := p.ParseCSV(context.Background(), "rb.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 2, result.Dropped)
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, domain.Date("20250905"), first.Date)
	assert.Equal(t, "中信期货", first.Broker)
	assert.Equal(t, "rb2605", first.InstrumentID)
	assert.Equal(t, domain.Metric{Value: 1200, Change: 30, Rank: domain.RankOf(1)}, first.Volume)
	assert.Equal(t, domain.Metric{Value: 0, Change: -4, Rank: domain.Unranked}, first.Short)

	second := result.Records[1]
	assert.Equal(t, domain.Date("20250905"), second.Date)
	assert.Equal(t, int64(1500), second.Volume.Value)
	assert.Equal(t, int64(0), second.Volume.Change)
	assert.False(t, second.Volume.Rank.Ranked())
	assert.Equal(t, int64(600), second.Long.Value)
	assert.False(t, second.Long.Rank.Ranked())

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Parsed position source")
	assert.True(t, logs.ContainsAttr("dropped", int64(2)))
}

func TestParser_ParseCSV_MissingColumns(t *testing.T) {
	p := NewParser(nil)

	_, err := p.ParseCSV(context.Background(), "bad.csv", strings.NewReader("datetime,volume\n20250905,1\n"))

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
	assert.Contains(t, err.Error(), "contract, broker")
}

func TestParser_ParseCSV_Empty(t *testing.T) {
	p := NewParser(nil)

	result, err := p.ParseCSV(context.Background(), "empty.csv", strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, result.Records)
}

func TestParser_ParseWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rb.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"datetime", "symbol", "broker", "volume", "volume_change", "volume_ranking", "long_oi", "long_change", "long_ranking", "short_oi", "short_change", "short_ranking"},
		{"20250905", "SHFE.rb2605", "中信期货", 1200, 30, 1, 500, 12, 2},
		{"20250905", "SHFE.rb2605", "国泰君安", 0, 0, 0, 0, 0, 0, 300, 5, 3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result, err := NewParser(nil).ParseFile(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 0, result.Dropped)
	assert.Equal(t, int64(500), result.Records[0].Long.Value)
	assert.Equal(t, int64(0), result.Records[0].Short.Value, "padded cells parse as zero")
	assert.Equal(t, 3, result.Records[1].Short.Rank.Int())
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	p := NewParser(nil)

	csvPath := filepath.Join(dir, "rb.csv")
	rec := testutil.Record("20250905", "SHFE.rb2605", "A").WithLong(10, 1, 1).Build()
	require.NoError(t, os.WriteFile(csvPath, []byte(testutil.PositionCSV(rec)), 0o644))

	result, err := p.ParseFile(context.Background(), csvPath)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, rec.Long, result.Records[0].Long)

	_, err = p.ParseFile(context.Background(), filepath.Join(dir, "rb.json"))
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

	_, err = p.ParseFile(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}
