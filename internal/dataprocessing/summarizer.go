package dataprocessing

import (
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// Summarize compares a leaderboard with the previous day's positions.
// Today's figures cover only the leaderboard itself while the previous
// total covers every broker present that day. An empty previous day yields a
// previous total of zero.
func Summarize(list domain.RankingList, previous []domain.Snapshot, category domain.Category) domain.SummaryStats {
	stats := domain.SummaryStats{
		TodayTotal: list.Total(len(list)),
		PrevTotal:  previousTotal(previous, category),
		Top5Total:  list.Total(5),
		Top10Total: list.Total(10),
		Top20Total: list.Total(20),
	}
	stats.Change = stats.TodayTotal - stats.PrevTotal
	return stats
}

func previousTotal(previous []domain.Snapshot, category domain.Category) int64 {
	brokers, merged := reduceBy(previous, func(s domain.Snapshot) string { return s.Broker })

	var total int64
	for _, broker := range brokers {
		snap := merged[broker]
		switch category {
		case domain.CategoryVolume:
			total += snap.Volume.Value
		case domain.CategoryLong:
			total += snap.Long.Value
		case domain.CategoryShort:
			total += snap.Short.Value
		case domain.CategoryNetLong:
			total += snap.NetLong()
		case domain.CategoryNetShort:
			total += snap.NetShort()
		}
	}
	return total
}
