package dataprocessing

import (
	"sort"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// Rank builds the leaderboard for category. Snapshots of one broker across
// several contracts are first folded into one position per broker.
// Only strictly positive values are ranked, the full set is sorted and then
// cut to the configured length.
func (e *Engine) Rank(snapshots []domain.Snapshot, category domain.Category) domain.RankingList {
	brokers, merged := reduceBy(snapshots, func(s domain.Snapshot) string { return s.Broker })

	list := make(domain.RankingList, 0, len(brokers))
	for _, broker := range brokers {
		if entry, ok := entryFor(merged[broker], category); ok {
			list = append(list, entry)
		}
	}

	sort.SliceStable(list, lessFor(list, category))

	if len(list) > e.cfg.TopN {
		list = list[:e.cfg.TopN]
	}

	for i := range list {
		switch {
		case category.IsNet():
			list[i].Rank = domain.RankOf(i + 1)
		case category == domain.CategoryLong || category == domain.CategoryShort:
			if !list[i].Rank.Ranked() {
				list[i].Rank = domain.RankOf(i + 1)
			}
		}
	}
	return list
}

func entryFor(snap domain.Snapshot, category domain.Category) (domain.RankingEntry, bool) {
	entry := domain.RankingEntry{Broker: snap.Broker}
	switch category {
	case domain.CategoryVolume:
		entry.Value, entry.Change, entry.Rank = snap.Volume.Value, snap.Volume.Change, snap.Volume.Rank
	case domain.CategoryLong:
		entry.Value, entry.Change, entry.Rank = snap.Long.Value, snap.Long.Change, snap.Long.Rank
	case domain.CategoryShort:
		entry.Value, entry.Change, entry.Rank = snap.Short.Value, snap.Short.Change, snap.Short.Rank
	case domain.CategoryNetLong:
		entry.Value = snap.NetLong()
	case domain.CategoryNetShort:
		entry.Value = snap.NetShort()
	default:
		return entry, false
	}
	return entry, entry.Value > 0
}

func lessFor(list domain.RankingList, category domain.Category) func(i, j int) bool {
	switch category {
	case domain.CategoryVolume:
		// Exchange ranks ascending; unranked rows trail.
		return func(i, j int) bool {
			a, b := list[i].Rank, list[j].Rank
			if a.Ranked() && b.Ranked() {
				return a.Int() < b.Int()
			}
			return a.Ranked() && !b.Ranked()
		}
	case domain.CategoryLong, domain.CategoryShort:
		return func(i, j int) bool {
			a, b := list[i], list[j]
			if a.Rank.Ranked() && b.Rank.Ranked() {
				return a.Rank.Int() < b.Rank.Int()
			}
			return a.Value > b.Value
		}
	default:
		return func(i, j int) bool {
			return list[i].Value > list[j].Value
		}
	}
}
