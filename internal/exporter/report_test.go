package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/config"
	apperrors "github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

func sampleReport() *Report {
	long := domain.RankingList{
		{Broker: "A", Value: 100, Change: 10, Rank: domain.RankOf(1)},
		{Broker: "B", Value: 30, Change: -5, Rank: domain.RankOf(2)},
	}
	return &Report{
		Product: "SHFE.rb",
		Date:    "20250905",
		Leaderboard: &domain.Leaderboard{
			Date:     "20250905",
			Contract: "SHFE.rb2605",
			PrevDate: "20250904",
			Boards: []domain.CategoryBoard{{
				Category: domain.CategoryLong,
				Entries:  long,
				Summary:  domain.SummaryStats{TodayTotal: 130, PrevTotal: 110, Change: 20, Top5Total: 130, Top10Total: 130, Top20Total: 130},
				Shares: []domain.ShareSlice{
					{Label: "A", Value: 100, Percent: 100.0 * 100 / 130},
					{Label: "B", Value: 30, Percent: 100.0 * 30 / 130},
				},
			}},
		},
		Trend: &domain.TrendReport{
			Contract: "SHFE.rb2605",
			Window:   domain.WindowWeek,
			Points: domain.TrendSeries{
				{Date: "20250904", TotalLong: 110, TotalShort: 110, TotalVolume: 50},
				{Date: "20250905", TotalLong: 130, TotalShort: 130, TotalVolume: 70},
			},
			NetTop: []domain.NetTopPoint{{Date: "20250905", Top5: 0, Top10: 0, Top20: 0}},
		},
		CrossPeriod: &domain.CrossPeriodResult{
			Date:      "20250905",
			HasData:   true,
			Contracts: []string{"SHFE.rb2605", "SHFE.rb2610"},
			Entries: []domain.CrossPeriodEntry{
				{Contract: "SHFE.rb2605", TotalLong: 130, TotalShort: 130, TotalPosition: 260},
				{Contract: "SHFE.rb2610", TotalLong: 7, TotalShort: 9, NetShort: 2, TotalPosition: 16},
			},
			Matrix: []domain.BrokerRow{{
				Broker:   "A",
				Cells:    map[string]domain.BrokerCell{"SHFE.rb2605": {NetLong: 60}},
				Exposure: 60,
			}},
		},
		BrokerDetail: &domain.BrokerDetail{
			Broker:   "A",
			Contract: "SHFE.rb2605",
			Trend: []domain.BrokerTrendRow{{
				Date:  "20250905",
				Long:  domain.Metric{Value: 100, Change: 10},
				Short: domain.Metric{Value: 40, Change: 10},
			}},
			Spread: []domain.SpreadPair{{Base: "rb2605", Other: "rb2610", BaseLong: 100, OtherShort: 3, BaseShort: 40, OtherLong: 7}},
		},
	}
}

func tableByName(t *testing.T, tables []Table, name string) Table {
	t.Helper()
	for _, tb := range tables {
		if tb.Name == name {
			return tb
		}
	}
	require.Failf(t, "table not found", "no table %q", name)
	return Table{}
}

func TestReportTables(t *testing.T) {
	tables := sampleReport().Tables()

	names := make([]string, len(tables))
	for i, tb := range tables {
		names[i] = tb.Name
	}
	assert.Equal(t, []string{
		"summary", "rank_long", "shares", "trend",
		"cross_period", "cross_period_matrix", "cross_period_top",
		"broker_trend", "broker_spread",
	}, names)

	summary := tableByName(t, tables, "summary")
	assert.Equal(t, []string{"long", "持买单量", "20250905", "20250904", "130", "110", "20", "130", "130", "130"}, summary.Rows[0])

	rank := tableByName(t, tables, "rank_long")
	assert.Equal(t, [][]string{{"1", "A", "100", "10"}, {"2", "B", "30", "-5"}}, rank.Rows)

	shares := tableByName(t, tables, "shares")
	assert.Equal(t, []string{"long", "A", "100", "76.92", "false"}, shares.Rows[0])

	trend := tableByName(t, tables, "trend")
	require.Len(t, trend.Rows, 2)
	assert.Equal(t, []string{"20250904", "110", "110", "50", "0", "", "", "", "", "", "", ""}, trend.Rows[0])
	assert.Equal(t, []string{"20250905", "130", "130", "70", "0", "20", "20", "20", "0", "0", "0", "0"}, trend.Rows[1])

	matrix := tableByName(t, tables, "cross_period_matrix")
	assert.Equal(t, []string{"broker", "exposure", "SHFE.rb2605 net_long", "SHFE.rb2605 net_short", "SHFE.rb2610 net_long", "SHFE.rb2610 net_short"}, matrix.Headers)
	assert.Equal(t, []string{"A", "60", "60", "0", "", ""}, matrix.Rows[0])
	assert.Empty(t, tableByName(t, tables, "cross_period_top").Rows)

	brokerTrend := tableByName(t, tables, "broker_trend")
	assert.Equal(t, "60", brokerTrend.Rows[0][8])
}

func TestReportTables_PartialReport(t *testing.T) {
	tables := (&Report{Product: "SHFE.rb", Trend: &domain.TrendReport{}}).Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, "trend", tables[0].Name)
	assert.Empty(t, tables[0].Rows)
}

func newTestExporter(t *testing.T, bom bool) (*Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	paths := &config.Paths{BaseDir: dir, ReportsDir: filepath.Join(dir, "reports")}
	return NewExporter(paths, config.ExportConfig{Format: FormatCSV, BOMPrefix: bom}, nil), dir
}

func TestExporter_CSV(t *testing.T) {
	exp, dir := newTestExporter(t, true)

	files, err := exp.Export(context.Background(), sampleReport(), FormatCSV)
	require.NoError(t, err)
	require.Len(t, files, 9)
	assert.Equal(t, filepath.Join(dir, "reports", "SHFE.rb_20250905_summary.csv"), files[0])

	content, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, utf8BOM))
	assert.Contains(t, string(content), "rank,broker,value,change")
}

func TestExporter_Workbook(t *testing.T) {
	exp, _ := newTestExporter(t, false)

	files, err := exp.Export(context.Background(), sampleReport(), FormatXLSX)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "SHFE.rb_20250905_report.xlsx", filepath.Base(files[0]))

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, "summary", sheets[0])
	assert.NotContains(t, sheets, "Sheet1")
	assert.Len(t, sheets, 9)

	rows, err := f.GetRows("rank_long")
	require.NoError(t, err)
	assert.Equal(t, []string{"rank", "broker", "value", "change"}, rows[0])
	assert.Equal(t, []string{"1", "A", "100", "10"}, rows[1])
}

func TestExporter_JSON(t *testing.T) {
	exp, _ := newTestExporter(t, false)

	files, err := exp.Export(context.Background(), sampleReport(), FormatJSON)
	require.NoError(t, err)

	content, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "SHFE.rb", decoded["product"])
	assert.Contains(t, decoded, "cross_period")
}

func TestExporter_Errors(t *testing.T) {
	exp, _ := newTestExporter(t, false)

	_, err := exp.Export(context.Background(), sampleReport(), "pdf")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = exp.Export(context.Background(), nil, FormatCSV)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))

	err = NewWorkbookWriter(nil).WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", sheetName(""))
	assert.Equal(t, "trend", sheetName("trend"))
	assert.Len(t, []rune(sheetName("a_very_long_table_name_that_exceeds_the_limit")), maxSheetName)
}

func TestLeaderboardTables_CategoryOrder(t *testing.T) {
	lb := &domain.Leaderboard{
		Date:     "20250905",
		Contract: "SHFE.rb2605",
		Boards: []domain.CategoryBoard{
			{Category: domain.CategoryNetShort},
			{Category: domain.CategoryVolume},
		},
	}

	var names []string
	for _, table := range LeaderboardTables(lb) {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"summary", "rank_volume", "rank_netShort", "shares"}, names)
	assert.Nil(t, LeaderboardTables(nil))
}
