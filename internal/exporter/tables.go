package exporter

import (
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// Table is one exported sheet: a file in CSV output, a worksheet in xlsx.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// LeaderboardTables renders the summary, one ranking table per category and
// the share breakdown, in the fixed category order.
func LeaderboardTables(lb *domain.Leaderboard) []Table {
	if lb == nil {
		return nil
	}

	summary := Table{
		Name:    "summary",
		Headers: []string{"category", "label", "date", "prev_date", "today_total", "prev_total", "change", "top5_total", "top10_total", "top20_total"},
	}
	shares := Table{
		Name:    "shares",
		Headers: []string{"category", "label", "value", "percent", "other"},
	}
	rankings := make([]Table, 0, len(lb.Boards))

	for _, c := range domain.Categories {
		board, ok := lb.Board(c)
		if !ok {
			continue
		}
		s := board.Summary
		summary.Rows = append(summary.Rows, []string{
			string(board.Category),
			board.Category.Label(),
			lb.Date.String(),
			lb.PrevDate.String(),
			formatInt(s.TodayTotal),
			formatInt(s.PrevTotal),
			formatInt(s.Change),
			formatInt(s.Top5Total),
			formatInt(s.Top10Total),
			formatInt(s.Top20Total),
		})

		ranking := Table{
			Name:    "rank_" + string(board.Category),
			Headers: []string{"rank", "broker", "value", "change"},
		}
		for _, e := range board.Entries {
			ranking.Rows = append(ranking.Rows, []string{
				formatRank(e.Rank),
				e.Broker,
				formatInt(e.Value),
				formatInt(e.Change),
			})
		}
		rankings = append(rankings, ranking)

		for _, sl := range board.Shares {
			shares.Rows = append(shares.Rows, []string{
				string(board.Category),
				sl.Label,
				formatInt(sl.Value),
				formatPercent(sl.Percent),
				formatBool(sl.Other),
			})
		}
	}

	tables := append([]Table{summary}, rankings...)
	return append(tables, shares)
}

// TrendTable renders the trend points with their deltas and the matching
// top-N net subtotals.
func TrendTable(report *domain.TrendReport) Table {
	t := Table{
		Name: "trend",
		Headers: []string{
			"date", "total_long", "total_short", "total_volume", "net_position",
			"long_delta", "short_delta", "volume_delta", "net_delta",
			"net_top5", "net_top10", "net_top20",
		},
	}
	if report == nil {
		return t
	}

	netTop := make(map[domain.Date]domain.NetTopPoint, len(report.NetTop))
	for _, p := range report.NetTop {
		netTop[p.Date] = p
	}

	for i, p := range report.Points {
		d, ok := report.Points.Delta(i)
		top, hasTop := netTop[p.Date]
		t.Rows = append(t.Rows, []string{
			p.Date.String(),
			formatInt(p.TotalLong),
			formatInt(p.TotalShort),
			formatInt(p.TotalVolume),
			formatInt(p.NetPosition()),
			formatOptional(d.Long, ok),
			formatOptional(d.Short, ok),
			formatOptional(d.Volume, ok),
			formatOptional(d.Net, ok),
			formatOptional(top.Top5, hasTop),
			formatOptional(top.Top10, hasTop),
			formatOptional(top.Top20, hasTop),
		})
	}
	return t
}

// CrossPeriodTables renders the contract entries and the broker matrix with
// a net long and net short column per contract.
func CrossPeriodTables(cp *domain.CrossPeriodResult) []Table {
	if cp == nil {
		return nil
	}

	entries := Table{
		Name:    "cross_period",
		Headers: []string{"contract", "total_long", "total_short", "net_long", "net_short", "total_position"},
	}
	for _, e := range cp.Entries {
		entries.Rows = append(entries.Rows, []string{
			e.Contract,
			formatInt(e.TotalLong),
			formatInt(e.TotalShort),
			formatInt(e.NetLong),
			formatInt(e.NetShort),
			formatInt(e.TotalPosition),
		})
	}

	return []Table{
		entries,
		matrixTable("cross_period_matrix", cp.Contracts, cp.Matrix),
		matrixTable("cross_period_top", cp.Contracts, cp.TopBrokers),
	}
}

func matrixTable(name string, contracts []string, rows []domain.BrokerRow) Table {
	t := Table{Name: name, Headers: []string{"broker", "exposure"}}
	for _, c := range contracts {
		t.Headers = append(t.Headers, c+" net_long", c+" net_short")
	}

	for _, row := range rows {
		record := []string{row.Broker, formatInt(row.Exposure)}
		for _, c := range contracts {
			cell, ok := row.Cell(c)
			if !ok {
				record = append(record, "", "")
				continue
			}
			record = append(record, formatInt(cell.NetLong), formatInt(cell.NetShort))
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

// BrokerDetailTables renders one broker's history and month spreads.
func BrokerDetailTables(detail *domain.BrokerDetail) []Table {
	if detail == nil {
		return nil
	}

	trend := Table{
		Name:    "broker_trend",
		Headers: []string{"date", "broker", "volume", "volume_change", "long", "long_change", "short", "short_change", "net"},
	}
	for _, r := range detail.Trend {
		trend.Rows = append(trend.Rows, []string{
			r.Date.String(),
			detail.Broker,
			formatInt(r.Volume.Value),
			formatInt(r.Volume.Change),
			formatInt(r.Long.Value),
			formatInt(r.Long.Change),
			formatInt(r.Short.Value),
			formatInt(r.Short.Change),
			formatInt(r.Net()),
		})
	}

	spread := Table{
		Name:    "broker_spread",
		Headers: []string{"base", "other", "base_long", "other_short", "base_short", "other_long"},
	}
	for _, p := range detail.Spread {
		spread.Rows = append(spread.Rows, []string{
			p.Base,
			p.Other,
			formatInt(p.BaseLong),
			formatInt(p.OtherShort),
			formatInt(p.BaseShort),
			formatInt(p.OtherLong),
		})
	}

	return []Table{trend, spread}
}
