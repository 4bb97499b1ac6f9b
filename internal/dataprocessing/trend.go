package dataprocessing

import (
	"sort"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

type dateBroker struct {
	date   domain.Date
	broker string
}

// Trend builds one point per day for a single contract over the calendar
// window ending at endDate. A zero endDate selects the latest day present.
// Each broker contributes its max-value triple per day; points are date
// ascending and limited to the most recent TrendPointCap days.
func (e *Engine) Trend(snapshots []domain.Snapshot, window domain.WindowKind, endDate domain.Date) domain.TrendSeries {
	inWindow := windowed(snapshots, window, endDate)
	if len(inWindow) == 0 {
		return domain.TrendSeries{}
	}

	keys, merged := reduceBy(inWindow, func(s domain.Snapshot) dateBroker {
		return dateBroker{date: s.Date, broker: s.Broker}
	})

	byDate := make(map[domain.Date]*domain.TrendPoint)
	for _, k := range keys {
		snap := merged[k]
		p, ok := byDate[k.date]
		if !ok {
			p = &domain.TrendPoint{Date: k.date}
			byDate[k.date] = p
		}
		p.TotalLong += snap.Long.Value
		p.TotalShort += snap.Short.Value
		p.TotalVolume += snap.Volume.Value
	}

	series := make(domain.TrendSeries, 0, len(byDate))
	for _, p := range byDate {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	return lastN(series, e.cfg.TrendPointCap)
}

// NetTopTrend computes, per day in the window, the signed net subtotal of the
// 5, 10 and 20 brokers with the largest absolute net position. Brokers are
// chosen independently for each day.
func (e *Engine) NetTopTrend(snapshots []domain.Snapshot, window domain.WindowKind, endDate domain.Date) []domain.NetTopPoint {
	inWindow := windowed(snapshots, window, endDate)
	if len(inWindow) == 0 {
		return []domain.NetTopPoint{}
	}

	keys, merged := reduceBy(inWindow, func(s domain.Snapshot) dateBroker {
		return dateBroker{date: s.Date, broker: s.Broker}
	})

	nets := make(map[domain.Date][]int64)
	dates := make([]domain.Date, 0)
	for _, k := range keys {
		if _, ok := nets[k.date]; !ok {
			dates = append(dates, k.date)
		}
		nets[k.date] = append(nets[k.date], merged[k].Net())
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	points := make([]domain.NetTopPoint, 0, len(dates))
	for _, d := range dates {
		day := nets[d]
		sort.SliceStable(day, func(i, j int) bool { return abs64(day[i]) > abs64(day[j]) })
		points = append(points, domain.NetTopPoint{
			Date:  d,
			Top5:  sumFirst(day, 5),
			Top10: sumFirst(day, 10),
			Top20: sumFirst(day, 20),
		})
	}

	return lastN(points, e.cfg.TrendPointCap)
}

// windowed keeps snapshots dated inside [endDate-N, endDate].
func windowed(snapshots []domain.Snapshot, window domain.WindowKind, endDate domain.Date) []domain.Snapshot {
	if len(snapshots) == 0 {
		return nil
	}
	if endDate.IsZero() {
		endDate = latestDate(snapshots)
	}
	start := window.Start(endDate)

	out := make([]domain.Snapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.Date >= start && snap.Date <= endDate {
			out = append(out, snap)
		}
	}
	return out
}

func latestDate(snapshots []domain.Snapshot) domain.Date {
	var latest domain.Date
	for _, snap := range snapshots {
		if snap.Date > latest {
			latest = snap.Date
		}
	}
	return latest
}

func lastN[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func sumFirst(values []int64, n int) int64 {
	if n > len(values) {
		n = len(values)
	}
	var total int64
	for _, v := range values[:n] {
		total += v
	}
	return total
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
