package dataprocessing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/shared/testutil"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

func TestSummarize(t *testing.T) {
	today := scenarioSnapshots()
	previous := []domain.Snapshot{
		testutil.Record("20250904", "SHFE.rb2605", "A").WithVolume(10, 0, 0).WithLong(90, 0, 0).WithShort(50, 0, 0).Snapshot(),
		testutil.Record("20250904", "SHFE.rb2605", "B").WithVolume(20, 0, 0).WithLong(20, 0, 0).WithShort(70, 0, 0).Snapshot(),
		testutil.Record("20250904", "SHFE.rb2605", "C").WithLong(15, 0, 0).WithShort(5, 0, 0).Snapshot(),
	}

	tests := []struct {
		name      string
		category  domain.Category
		wantToday int64
		wantPrev  int64
	}{
		{name: "volume", category: domain.CategoryVolume, wantToday: 0, wantPrev: 30},
		{name: "long", category: domain.CategoryLong, wantToday: 130, wantPrev: 125},
		{name: "short", category: domain.CategoryShort, wantToday: 130, wantPrev: 125},
		{name: "net long counts positive nets only", category: domain.CategoryNetLong, wantToday: 60, wantPrev: 50},
		{name: "net short counts positive nets only", category: domain.CategoryNetShort, wantToday: 60, wantPrev: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := Rank(today, tt.category)
			stats := Summarize(list, previous, tt.category)

			assert.Equal(t, tt.wantToday, stats.TodayTotal)
			assert.Equal(t, tt.wantPrev, stats.PrevTotal)
			assert.Equal(t, tt.wantToday-tt.wantPrev, stats.Change)
			assert.Equal(t, list.Total(20), stats.Top20Total)
		})
	}
}

func TestSummarize_NoPreviousDay(t *testing.T) {
	list := Rank(scenarioSnapshots(), domain.CategoryLong)

	stats := Summarize(list, nil, domain.CategoryLong)

	assert.Equal(t, int64(0), stats.PrevTotal)
	assert.Equal(t, stats.TodayTotal, stats.Change)
}

func TestSummarize_TopTiers(t *testing.T) {
	var snaps, previous []domain.Snapshot
	for i := 1; i <= 25; i++ {
		broker := fmt.Sprintf("B%02d", i)
		snaps = append(snaps, testutil.Record("20250905", "SHFE.rb2605", broker).WithLong(int64(i), 0, i).Snapshot())
		previous = append(previous, testutil.Record("20250904", "SHFE.rb2605", broker).WithLong(1, 0, 0).Snapshot())
	}

	list := Rank(snaps, domain.CategoryLong)
	stats := Summarize(list, previous, domain.CategoryLong)

	// ranks 1..20 carry values 1..20
	assert.Equal(t, int64(15), stats.Top5Total)
	assert.Equal(t, int64(55), stats.Top10Total)
	assert.Equal(t, int64(210), stats.Top20Total)
	assert.Equal(t, stats.Top20Total, stats.TodayTotal)
	assert.Equal(t, int64(25), stats.PrevTotal)
}

func TestSummarize_PreviousDayMergesDuplicateRows(t *testing.T) {
	previous := []domain.Snapshot{
		testutil.Record("20250904", "SHFE.rb2605", "A").WithLong(90, 0, 0).Snapshot(),
		testutil.Record("20250904", "SHFE.rb2610", "A").WithLong(60, 0, 0).Snapshot(),
	}

	stats := Summarize(nil, previous, domain.CategoryLong)

	assert.Equal(t, int64(90), stats.PrevTotal)
	assert.Equal(t, int64(-90), stats.Change)
}
