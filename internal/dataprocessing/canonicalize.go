package dataprocessing

import (
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// Snapshots is a canonical snapshot set. Iteration follows the order in
// which each key first appeared in the input.
type Snapshots struct {
	order []domain.SnapshotKey
	byKey map[domain.SnapshotKey]domain.Snapshot
}

// Canonicalize collapses records sharing (date, contract, broker) into one
// snapshot. For each metric the (value, change, rank) triple is copied from the
// record with the largest value; the earliest record wins ties.
func Canonicalize(records []domain.RawRecord) *Snapshots {
	// group
	order := make([]domain.SnapshotKey, 0, len(records))
	groups := make(map[domain.SnapshotKey][]int, len(records))
	for i, rec := range records {
		key := rec.Key()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	// reduce
	byKey := make(map[domain.SnapshotKey]domain.Snapshot, len(order))
	for _, key := range order {
		var snap domain.Snapshot
		for n, idx := range groups[key] {
			mergeMax(&snap, snapshotOf(records[idx]), n == 0)
		}
		byKey[key] = snap
	}

	return &Snapshots{order: order, byKey: byKey}
}

// Len returns the number of snapshots.
func (s *Snapshots) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All returns every snapshot in first-appearance order.
func (s *Snapshots) All() []domain.Snapshot {
	return s.Filter(nil)
}

// Filter returns the snapshots accepted by keep, in first-appearance order.
// A nil keep accepts everything.
func (s *Snapshots) Filter(keep func(domain.Snapshot) bool) []domain.Snapshot {
	if s == nil {
		return nil
	}
	out := make([]domain.Snapshot, 0, len(s.order))
	for _, key := range s.order {
		snap := s.byKey[key]
		if keep == nil || keep(snap) {
			out = append(out, snap)
		}
	}
	return out
}

// Records returns each snapshot as a single raw record.
func (s *Snapshots) Records() []domain.RawRecord {
	all := s.All()
	out := make([]domain.RawRecord, len(all))
	for i, snap := range all {
		out[i] = snap.Record()
	}
	return out
}

func snapshotOf(rec domain.RawRecord) domain.Snapshot {
	return domain.Snapshot{
		SnapshotKey:  rec.Key(),
		InstrumentID: rec.InstrumentID,
		Volume:       rec.Volume,
		Long:         rec.Long,
		Short:        rec.Short,
	}
}

// mergeMax folds src into dst metric by metric. A seed copies src whole.
func mergeMax(dst *domain.Snapshot, src domain.Snapshot, seed bool) {
	if seed {
		*dst = src
		return
	}
	if dst.InstrumentID == "" {
		dst.InstrumentID = src.InstrumentID
	}
	for _, kind := range domain.MetricKinds {
		if m := src.Metric(kind); m.Value > dst.Metric(kind).Value {
			dst.SetMetric(kind, m)
		}
	}
}

// reduceBy groups snapshots by key and folds each group with mergeMax.
// Keys are returned in first-appearance order.
func reduceBy[K comparable](snapshots []domain.Snapshot, key func(domain.Snapshot) K) ([]K, map[K]domain.Snapshot) {
	order := make([]K, 0)
	merged := make(map[K]domain.Snapshot)
	for _, snap := range snapshots {
		k := key(snap)
		cur, ok := merged[k]
		if !ok {
			order = append(order, k)
		}
		mergeMax(&cur, snap, !ok)
		merged[k] = cur
	}
	return order, merged
}
