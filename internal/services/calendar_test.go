package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/config"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/shared/testutil"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

func TestWeekdayCalendar(t *testing.T) {
	cal := WeekdayCalendar()

	tests := []struct {
		name string
		date domain.Date
		want domain.Date
	}{
		{"monday goes to friday", "20250908", "20250905"},
		{"tuesday goes to monday", "20250909", "20250908"},
		{"sunday goes to friday", "20250907", "20250905"},
		{"invalid date", "2025", ""},
		{"empty date", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.PreviousTradingDay(tt.date))
		})
	}

	assert.True(t, cal.IsTradingDay("20250905"))
	assert.False(t, cal.IsTradingDay("20250906"))
}

func TestNewTradingCalendar(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	unknown := NewTradingCalendar(config.CalendarConfig{MIC: "none", Timezone: "Asia/Shanghai"}, logger)
	assert.True(t, unknown.Fallback)
	assert.True(t, handler.ContainsMessage("Trading calendar not available, using Mon-Fri fallback"))

	shanghai := NewTradingCalendar(config.CalendarConfig{MIC: config.DefaultCalendarMIC, Timezone: config.DefaultTimezone}, logger)
	assert.NotNil(t, shanghai.Timezone)
	// weekends are never trading days, whichever calendar is active
	assert.False(t, shanghai.IsTradingDay("20250906"))
	assert.False(t, shanghai.IsTradingDay("20250907"))
	assert.False(t, shanghai.IsTradingDay(""))
}
