package domain

import "fmt"

// WindowKind is a calendar-day lookback ending at a reference date.
type WindowKind string

const (
	WindowWeek    WindowKind = "week"
	WindowMonth   WindowKind = "month"
	WindowQuarter WindowKind = "quarter"
)

// ParseWindowKind validates a window name.
func ParseWindowKind(s string) (WindowKind, error) {
	switch w := WindowKind(s); w {
	case WindowWeek, WindowMonth, WindowQuarter:
		return w, nil
	default:
		return "", fmt.Errorf("unknown trend window %q", s)
	}
}

// Days returns the lookback length in calendar days.
func (w WindowKind) Days() int {
	switch w {
	case WindowWeek:
		return 7
	case WindowMonth:
		return 30
	case WindowQuarter:
		return 90
	default:
		return 0
	}
}

// Start returns the first day of the window ending at end, inclusive.
func (w WindowKind) Start(end Date) Date {
	return end.AddDays(-w.Days())
}

// TrendPoint is the all-broker total for one contract and day.
type TrendPoint struct {
	Date        Date  `json:"date"`
	TotalLong   int64 `json:"total_long"`
	TotalShort  int64 `json:"total_short"`
	TotalVolume int64 `json:"total_volume"`
}

// NetPosition returns total long minus total short.
func (p TrendPoint) NetPosition() int64 {
	return p.TotalLong - p.TotalShort
}

// TrendDelta is the change of a point against its predecessor.
type TrendDelta struct {
	Long   int64 `json:"long"`
	Short  int64 `json:"short"`
	Volume int64 `json:"volume"`
	Net    int64 `json:"net"`
}

// TrendSeries is a date-ascending run of trend points.
type TrendSeries []TrendPoint

// Delta returns the change of point i against point i-1.
// The first point has no delta.
func (s TrendSeries) Delta(i int) (TrendDelta, bool) {
	if i <= 0 || i >= len(s) {
		return TrendDelta{}, false
	}
	cur, prev := s[i], s[i-1]
	return TrendDelta{
		Long:   cur.TotalLong - prev.TotalLong,
		Short:  cur.TotalShort - prev.TotalShort,
		Volume: cur.TotalVolume - prev.TotalVolume,
		Net:    cur.NetPosition() - prev.NetPosition(),
	}, true
}

// NetTopPoint holds the signed net subtotal of the brokers with the largest
// absolute net position on one day.
type NetTopPoint struct {
	Date  Date  `json:"date"`
	Top5  int64 `json:"top5"`
	Top10 int64 `json:"top10"`
	Top20 int64 `json:"top20"`
}

// BrokerTrendRow is one day of a single broker's position history.
type BrokerTrendRow struct {
	Date   Date   `json:"date"`
	Volume Metric `json:"volume"`
	Long   Metric `json:"long"`
	Short  Metric `json:"short"`
}

// Net returns long minus short for the day.
func (r BrokerTrendRow) Net() int64 {
	return r.Long.Value - r.Short.Value
}

// TrendReport bundles the trend outputs for one contract and window.
type TrendReport struct {
	Contract string        `json:"contract"`
	Window   WindowKind    `json:"window"`
	Start    Date          `json:"start,omitempty"`
	End      Date          `json:"end,omitempty"`
	Points   TrendSeries   `json:"points"`
	NetTop   []NetTopPoint `json:"net_top"`
}
