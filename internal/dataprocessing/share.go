package dataprocessing

import (
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// OtherLabel names the bucket that collects entries beyond the named slices.
const OtherLabel = "其他"

// ShareBreakdown turns a leaderboard into the first ShareSlices entries plus
// an other bucket for the remainder. Percentages are relative to the sum of
// all slices. The other bucket is omitted when it would be empty.
func (e *Engine) ShareBreakdown(list domain.RankingList) []domain.ShareSlice {
	if len(list) == 0 {
		return []domain.ShareSlice{}
	}

	n := e.cfg.ShareSlices
	if n > len(list) {
		n = len(list)
	}

	slices := make([]domain.ShareSlice, 0, n+1)
	for _, entry := range list[:n] {
		slices = append(slices, domain.ShareSlice{Label: entry.Broker, Value: entry.Value})
	}
	if rest := list.Total(len(list)) - list.Total(n); rest > 0 {
		slices = append(slices, domain.ShareSlice{Label: OtherLabel, Value: rest, Other: true})
	}

	var total int64
	for _, s := range slices {
		total += s.Value
	}
	if total > 0 {
		for i := range slices {
			slices[i].Percent = float64(slices[i].Value) / float64(total) * 100
		}
	}
	return slices
}
