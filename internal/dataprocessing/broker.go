package dataprocessing

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

var digitRunPattern = regexp.MustCompile(`\d+`)

// BrokerTrend returns one broker's daily position on a contract over the
// window ending at endDate. Each day keeps the max-value triple per metric,
// including the exchange-reported change.
func (e *Engine) BrokerTrend(snapshots []domain.Snapshot, broker string, window domain.WindowKind, endDate domain.Date) []domain.BrokerTrendRow {
	own := make([]domain.Snapshot, 0)
	for _, snap := range snapshots {
		if snap.Broker == broker {
			own = append(own, snap)
		}
	}

	dates, merged := reduceBy(windowed(own, window, endDate), func(s domain.Snapshot) domain.Date { return s.Date })
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	rows := make([]domain.BrokerTrendRow, 0, len(dates))
	for _, d := range dates {
		snap := merged[d]
		rows = append(rows, domain.BrokerTrendRow{
			Date:   d,
			Volume: snap.Volume,
			Long:   snap.Long,
			Short:  snap.Short,
		})
	}
	return lastN(rows, e.cfg.TrendPointCap)
}

// BrokerSpread compares one broker's position in a base contract with each
// other month it holds on date. The base is the contract matching
// baseContract when present, otherwise the one with the largest long plus
// short. Fewer than two contracts yields no pairs.
func BrokerSpread(snapshots []domain.Snapshot, date domain.Date, broker, baseContract string) []domain.SpreadPair {
	own := make([]domain.Snapshot, 0)
	for _, snap := range snapshots {
		if snap.Broker != broker || snap.Date != date {
			continue
		}
		if ContractLabel(snap) == "" {
			continue
		}
		own = append(own, snap)
	}

	labels, merged := reduceBy(own, ContractLabel)
	if len(labels) < 2 {
		return []domain.SpreadPair{}
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return leadingNumber(labels[i]) < leadingNumber(labels[j])
	})

	base := ""
	if code := shortCode(baseContract); code != "" {
		for _, l := range labels {
			if l == code || strings.HasSuffix(l, code) {
				base = l
				break
			}
		}
	}
	if base == "" {
		var best int64 = -1
		for _, l := range labels {
			if size := merged[l].Long.Value + merged[l].Short.Value; size > best {
				base, best = l, size
			}
		}
	}

	b := merged[base]
	pairs := make([]domain.SpreadPair, 0, len(labels)-1)
	for _, l := range labels {
		if l == base {
			continue
		}
		o := merged[l]
		pairs = append(pairs, domain.SpreadPair{
			Base:       base,
			Other:      l,
			BaseLong:   b.Long.Value,
			OtherShort: o.Short.Value,
			BaseShort:  b.Short.Value,
			OtherLong:  o.Long.Value,
		})
	}
	return pairs
}

// ContractLabel is the short contract name: the instrument id when known,
// otherwise the identifier without its exchange prefix.
func ContractLabel(snap domain.Snapshot) string {
	if id := strings.TrimSpace(snap.InstrumentID); id != "" {
		return id
	}
	return shortCode(snap.Contract)
}

func shortCode(contract string) string {
	if i := strings.LastIndex(contract, "."); i >= 0 {
		contract = contract[i+1:]
	}
	return strings.TrimSpace(contract)
}

func leadingNumber(label string) int {
	n, err := strconv.Atoi(digitRunPattern.FindString(label))
	if err != nil {
		return 0
	}
	return n
}
