package domain

// Metric is the (value, change, rank) triple reported for one position metric.
// The three fields always travel together.
type Metric struct {
	Value  int64 `json:"value"`
	Change int64 `json:"change"`
	Rank   Rank  `json:"rank"`
}

// MetricKind identifies one of the three reported position metrics.
type MetricKind int

const (
	MetricVolume MetricKind = iota
	MetricLong
	MetricShort
)

// MetricKinds lists the reported metrics in source column order.
var MetricKinds = []MetricKind{MetricVolume, MetricLong, MetricShort}

func (k MetricKind) String() string {
	switch k {
	case MetricVolume:
		return "volume"
	case MetricLong:
		return "long"
	case MetricShort:
		return "short"
	default:
		return "unknown"
	}
}

// RawRecord is one ingested member ranking row.
// Unparseable numeric fields are zero and absent ranks are Unranked.
type RawRecord struct {
	Date         Date   `json:"date" validate:"required"`
	Contract     string `json:"contract" validate:"required"`
	Broker       string `json:"broker" validate:"required"`
	InstrumentID string `json:"instrument_id,omitempty"`
	Volume       Metric `json:"volume"`
	Long         Metric `json:"long"`
	Short        Metric `json:"short"`
}

// Key returns the record's snapshot key.
func (r RawRecord) Key() SnapshotKey {
	return SnapshotKey{Date: r.Date, Contract: r.Contract, Broker: r.Broker}
}

// Metric returns the triple for kind.
func (r RawRecord) Metric(kind MetricKind) Metric {
	switch kind {
	case MetricLong:
		return r.Long
	case MetricShort:
		return r.Short
	default:
		return r.Volume
	}
}

// SnapshotKey identifies one broker's position on one contract and day.
type SnapshotKey struct {
	Date     Date   `json:"date"`
	Contract string `json:"contract"`
	Broker   string `json:"broker"`
}

// Snapshot is the canonical, deduplicated position of a broker for one key.
type Snapshot struct {
	SnapshotKey
	InstrumentID string `json:"instrument_id,omitempty"`
	Volume       Metric `json:"volume"`
	Long         Metric `json:"long"`
	Short        Metric `json:"short"`
}

// Metric returns the triple for kind.
func (s Snapshot) Metric(kind MetricKind) Metric {
	switch kind {
	case MetricLong:
		return s.Long
	case MetricShort:
		return s.Short
	default:
		return s.Volume
	}
}

// SetMetric replaces the triple for kind.
func (s *Snapshot) SetMetric(kind MetricKind, m Metric) {
	switch kind {
	case MetricLong:
		s.Long = m
	case MetricShort:
		s.Short = m
	default:
		s.Volume = m
	}
}

// Record returns the snapshot as a single raw record.
func (s Snapshot) Record() RawRecord {
	return RawRecord{
		Date:         s.Date,
		Contract:     s.Contract,
		Broker:       s.Broker,
		InstrumentID: s.InstrumentID,
		Volume:       s.Volume,
		Long:         s.Long,
		Short:        s.Short,
	}
}

// Net returns long minus short open interest.
func (s Snapshot) Net() int64 {
	return s.Long.Value - s.Short.Value
}

// NetLong returns the long excess floored at zero.
func (s Snapshot) NetLong() int64 {
	netLong, _ := NetSplit(s.Long.Value, s.Short.Value)
	return netLong
}

// NetShort returns the short excess floored at zero.
func (s Snapshot) NetShort() int64 {
	_, netShort := NetSplit(s.Long.Value, s.Short.Value)
	return netShort
}

// NetSplit splits long and short totals into mutually exclusive net long and
// net short amounts. At most one of the results is non-zero.
func NetSplit(long, short int64) (netLong, netShort int64) {
	switch {
	case long > short:
		return long - short, 0
	case short > long:
		return 0, short - long
	default:
		return 0, 0
	}
}
