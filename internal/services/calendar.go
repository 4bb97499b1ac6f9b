package services

import (
	"log/slog"
	"time"

	"github.com/scmhub/calendar"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/config"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// maxCalendarLookback bounds the search for a previous trading day across
// long holidays.
const maxCalendarLookback = 30

// TradingCalendar answers trading-day questions for the exchange calendar.
// Without a known calendar it falls back to Monday to Friday.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// NewTradingCalendar loads the calendar for cfg.MIC.
func NewTradingCalendar(cfg config.CalendarConfig, logger *slog.Logger) *TradingCalendar {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown calendar timezone, using UTC",
			slog.String("timezone", cfg.Timezone),
			slog.String("error", err.Error()))
		loc = time.UTC
	}

	cal := calendar.GetCalendar(cfg.MIC)
	if cal == nil {
		logger.Warn("Trading calendar not available, using Mon-Fri fallback",
			slog.String("mic", cfg.MIC))
		return &TradingCalendar{Fallback: true, Timezone: loc}
	}

	if cal.Loc != nil {
		loc = cal.Loc
	}
	return &TradingCalendar{Calendar: cal, Timezone: loc}
}

// WeekdayCalendar returns the Monday to Friday calendar.
func WeekdayCalendar() *TradingCalendar {
	return &TradingCalendar{Fallback: true, Timezone: time.UTC}
}

// IsTradingDay reports whether the exchange trades on d.
func (tc *TradingCalendar) IsTradingDay(d domain.Date) bool {
	t := d.Time()
	if t.IsZero() {
		return false
	}
	if tc.Timezone != nil {
		// noon keeps the day stable under the zone change
		t = time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, tc.Timezone)
	}

	if tc.Fallback || tc.Calendar == nil {
		weekday := t.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(t)
}

// PreviousTradingDay returns the closest trading day before d, or the zero
// Date when none is found within the lookback.
func (tc *TradingCalendar) PreviousTradingDay(d domain.Date) domain.Date {
	if !d.Valid() {
		return ""
	}
	for i := 1; i <= maxCalendarLookback; i++ {
		prev := d.AddDays(-i)
		if tc.IsTradingDay(prev) {
			return prev
		}
	}
	return ""
}
