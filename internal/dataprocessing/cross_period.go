package dataprocessing

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

var monthCodePattern = regexp.MustCompile(`\d{4}`)

type contractBroker struct {
	contract string
	broker   string
}

// CrossPeriod aggregates one day's positions per contract month and per
// (broker, contract month). Snapshots for other dates are ignored.
// Contracts whose all-broker position is zero are left out of Entries but
// keep their matrix column.
func (e *Engine) CrossPeriod(date domain.Date, snapshots []domain.Snapshot) domain.CrossPeriodResult {
	result := domain.CrossPeriodResult{
		Date:       date,
		Entries:    []domain.CrossPeriodEntry{},
		Contracts:  []string{},
		Matrix:     []domain.BrokerRow{},
		TopBrokers: []domain.BrokerRow{},
	}

	day := make([]domain.Snapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.Date == date {
			day = append(day, snap)
		}
	}
	if date.IsZero() || len(day) == 0 {
		return result
	}
	result.HasData = true

	keys, merged := reduceBy(day, func(s domain.Snapshot) contractBroker {
		return contractBroker{contract: s.Contract, broker: s.Broker}
	})

	totals := make(map[string]*domain.CrossPeriodEntry)
	rows := make(map[string]*domain.BrokerRow)
	brokers := make([]string, 0)
	for _, k := range keys {
		snap := merged[k]

		entry, ok := totals[k.contract]
		if !ok {
			entry = &domain.CrossPeriodEntry{Contract: k.contract}
			totals[k.contract] = entry
			result.Contracts = append(result.Contracts, k.contract)
		}
		entry.TotalLong += snap.Long.Value
		entry.TotalShort += snap.Short.Value

		row, ok := rows[k.broker]
		if !ok {
			row = &domain.BrokerRow{Broker: k.broker, Cells: make(map[string]domain.BrokerCell)}
			rows[k.broker] = row
			brokers = append(brokers, k.broker)
		}
		netLong, netShort := domain.NetSplit(snap.Long.Value, snap.Short.Value)
		if netLong != 0 || netShort != 0 {
			cell := domain.BrokerCell{NetLong: netLong, NetShort: netShort}
			row.Cells[k.contract] = cell
			row.Exposure += cell.Exposure()
		}
	}

	SortContracts(result.Contracts)
	for _, contract := range result.Contracts {
		entry := totals[contract]
		entry.NetLong, entry.NetShort = domain.NetSplit(entry.TotalLong, entry.TotalShort)
		entry.TotalPosition = entry.TotalLong + entry.TotalShort
		if entry.TotalPosition == 0 {
			continue
		}
		result.Entries = append(result.Entries, *entry)
	}

	sort.Strings(brokers)
	for _, broker := range brokers {
		result.Matrix = append(result.Matrix, *rows[broker])
	}

	top := make([]domain.BrokerRow, len(result.Matrix))
	copy(top, result.Matrix)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Exposure > top[j].Exposure })
	if len(top) > e.cfg.CrossPeriodTopBrokers {
		top = top[:e.cfg.CrossPeriodTopBrokers]
	}
	result.TopBrokers = top

	return result
}

// MonthCode returns the first 4-digit run of a contract identifier.
func MonthCode(contract string) (string, bool) {
	code := monthCodePattern.FindString(contract)
	return code, code != ""
}

// ProductOf strips the month digits from a contract identifier, so
// SHFE.rb2605 and SHFE.rb2601 both belong to SHFE.rb.
func ProductOf(contract string) string {
	return strings.TrimRight(strings.TrimSpace(contract), "0123456789")
}

// SortContracts orders contracts by month code. Contracts without a code
// follow in lexical order.
func SortContracts(contracts []string) {
	sort.SliceStable(contracts, func(i, j int) bool {
		return contractLess(contracts[i], contracts[j])
	})
}

func contractLess(a, b string) bool {
	ca, okA := MonthCode(a)
	cb, okB := MonthCode(b)
	switch {
	case okA && okB:
		if ca != cb {
			return ca < cb
		}
		return a < b
	case okA != okB:
		return okA
	default:
		return a < b
	}
}
