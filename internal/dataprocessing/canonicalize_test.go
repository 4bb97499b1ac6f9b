package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/shared/testutil"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

func TestCanonicalize_TripleTravelsTogether(t *testing.T) {
	records := []domain.RawRecord{
		testutil.Record("20250905", "SHFE.rb2605", "A").WithLong(100, 5, 2).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "A").WithLong(80, -3, 1).Build(),
	}

	snaps := Canonicalize(records)
	require.Equal(t, 1, snaps.Len())

	snap := snaps.All()[0]
	assert.Equal(t, domain.SnapshotKey{Date: "20250905", Contract: "SHFE.rb2605", Broker: "A"}, snap.SnapshotKey)
	assert.Equal(t, domain.Metric{Value: 100, Change: 5, Rank: domain.RankOf(2)}, snap.Long)
}

func TestCanonicalize_MetricsChosenIndependently(t *testing.T) {
	// One row per ranking type, as the exchange publishes them.
	records := []domain.RawRecord{
		testutil.Record("20250905", "SHFE.rb2605", "A").WithVolume(900, 50, 3).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "A").WithLong(400, 12, 1).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "A").WithShort(300, -7, 4).Build(),
	}

	snap := Canonicalize(records).All()[0]

	assert.Equal(t, domain.Metric{Value: 900, Change: 50, Rank: domain.RankOf(3)}, snap.Volume)
	assert.Equal(t, domain.Metric{Value: 400, Change: 12, Rank: domain.RankOf(1)}, snap.Long)
	assert.Equal(t, domain.Metric{Value: 300, Change: -7, Rank: domain.RankOf(4)}, snap.Short)
}

func TestCanonicalize_TiesKeepEarliestRow(t *testing.T) {
	records := []domain.RawRecord{
		testutil.Record("20250905", "SHFE.rb2605", "A").WithShort(50, 1, 7).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "A").WithShort(50, 9, 2).Build(),
	}

	snap := Canonicalize(records).All()[0]
	assert.Equal(t, int64(1), snap.Short.Change)
	assert.Equal(t, 7, snap.Short.Rank.Int())
}

func TestCanonicalize_KeysAndOrder(t *testing.T) {
	records := []domain.RawRecord{
		testutil.Record("20250905", "SHFE.rb2605", "B").WithLong(1, 0, 0).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "A").WithLong(2, 0, 0).Build(),
		testutil.Record("20250905", "SHFE.rb2610", "A").WithLong(3, 0, 0).Build(),
		testutil.Record("20250904", "SHFE.rb2605", "A").WithLong(4, 0, 0).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "B").WithLong(5, 0, 0).Build(),
	}

	snaps := Canonicalize(records)
	require.Equal(t, 4, snaps.Len())

	all := snaps.All()
	assert.Equal(t, "B", all[0].Broker)
	assert.Equal(t, int64(5), all[0].Long.Value)
	assert.Equal(t, "A", all[1].Broker)
	assert.Equal(t, "SHFE.rb2610", all[2].Contract)
	assert.Equal(t, domain.Date("20250904"), all[3].Date)

	onlyA := snaps.Filter(func(s domain.Snapshot) bool { return s.Broker == "A" })
	assert.Len(t, onlyA, 3)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	records := []domain.RawRecord{
		testutil.Record("20250905", "SHFE.rb2605", "A").WithVolume(900, 50, 3).WithLong(10, 1, 0).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "A").WithLong(400, 12, 1).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "B").WithShort(300, -7, 4).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "B").WithShort(200, -1, 9).WithVolume(5, 0, 0).Build(),
		testutil.Record("20250906", "SHFE.rb2605", "B").WithLong(7, 7, 7).Build(),
	}

	once := Canonicalize(records)
	twice := Canonicalize(once.Records())

	assert.Equal(t, once.All(), twice.All())
}

func TestCanonicalize_Empty(t *testing.T) {
	snaps := Canonicalize(nil)

	assert.Equal(t, 0, snaps.Len())
	assert.Empty(t, snaps.All())

	var nilSet *Snapshots
	assert.Equal(t, 0, nilSet.Len())
	assert.Nil(t, nilSet.All())
}
