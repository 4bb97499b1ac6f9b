package testutil

import (
	"fmt"
	"strings"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// RecordBuilder assembles raw records for tests.
type RecordBuilder struct {
	rec domain.RawRecord
}

// Record starts a record for date, contract and broker.
func Record(date, contract, broker string) *RecordBuilder {
	return &RecordBuilder{rec: domain.RawRecord{
		Date:     domain.MustParseDate(date),
		Contract: contract,
		Broker:   broker,
	}}
}

// WithVolume sets the volume triple. A rank of 0 is unranked.
func (b *RecordBuilder) WithVolume(value, change int64, rank int) *RecordBuilder {
	b.rec.Volume = domain.Metric{Value: value, Change: change, Rank: domain.RankOf(rank)}
	return b
}

// WithLong sets the long open interest triple.
func (b *RecordBuilder) WithLong(value, change int64, rank int) *RecordBuilder {
	b.rec.Long = domain.Metric{Value: value, Change: change, Rank: domain.RankOf(rank)}
	return b
}

// WithShort sets the short open interest triple.
func (b *RecordBuilder) WithShort(value, change int64, rank int) *RecordBuilder {
	b.rec.Short = domain.Metric{Value: value, Change: change, Rank: domain.RankOf(rank)}
	return b
}

// WithInstrument sets the instrument id.
func (b *RecordBuilder) WithInstrument(id string) *RecordBuilder {
	b.rec.InstrumentID = id
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() domain.RawRecord {
	return b.rec
}

// Snapshot returns the record as a canonical snapshot.
func (b *RecordBuilder) Snapshot() domain.Snapshot {
	r := b.rec
	return domain.Snapshot{
		SnapshotKey:  r.Key(),
		InstrumentID: r.InstrumentID,
		Volume:       r.Volume,
		Long:         r.Long,
		Short:        r.Short,
	}
}

// PositionCSVHeader is the column layout of the member ranking export.
const PositionCSVHeader = "datetime,symbol,broker,volume,volume_change,volume_ranking," +
	"long_oi,long_change,long_ranking,short_oi,short_change,short_ranking,instrument_id,ranking_type"

// PositionCSV renders records in the export layout.
func PositionCSV(records ...domain.RawRecord) string {
	var sb strings.Builder
	sb.WriteString(PositionCSVHeader)
	sb.WriteString("\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "%s,%s,%s,%d,%d,%s,%d,%d,%s,%d,%d,%s,%s,%s\n",
			r.Date, r.Contract, r.Broker,
			r.Volume.Value, r.Volume.Change, r.Volume.Rank,
			r.Long.Value, r.Long.Change, r.Long.Rank,
			r.Short.Value, r.Short.Change, r.Short.Rank,
			r.InstrumentID, "volume_ranking")
	}
	return sb.String()
}
