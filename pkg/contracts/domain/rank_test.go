package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	r := RankOf(3)
	pos, ok := r.Position()
	assert.True(t, ok)
	assert.Equal(t, 3, pos)
	assert.Equal(t, "3", r.String())

	assert.False(t, RankOf(0).Ranked())
	assert.False(t, RankOf(-5).Ranked())
	assert.Equal(t, Unranked, Rank{})
	assert.Equal(t, "", Unranked.String())
}

func TestRankJSON(t *testing.T) {
	entry := RankingEntry{Broker: "中信期货", Value: 10, Rank: Unranked}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rank":null`)

	var decoded RankingEntry
	require.NoError(t, json.Unmarshal([]byte(`{"broker":"a","value":1,"change":0,"rank":7}`), &decoded))
	assert.Equal(t, RankOf(7), decoded.Rank)

	require.NoError(t, json.Unmarshal([]byte(`{"rank":null}`), &decoded))
	assert.False(t, decoded.Rank.Ranked())
}

func TestNetSplit(t *testing.T) {
	tests := []struct {
		name         string
		long, short  int64
		wantNetLong  int64
		wantNetShort int64
	}{
		{name: "long heavy", long: 100, short: 40, wantNetLong: 60},
		{name: "short heavy", long: 30, short: 90, wantNetShort: 60},
		{name: "flat", long: 50, short: 50},
		{name: "empty", long: 0, short: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			netLong, netShort := NetSplit(tt.long, tt.short)
			assert.Equal(t, tt.wantNetLong, netLong)
			assert.Equal(t, tt.wantNetShort, netShort)
			assert.False(t, netLong > 0 && netShort > 0)
		})
	}
}

func TestRankingListTotal(t *testing.T) {
	list := RankingList{{Value: 5}, {Value: 4}, {Value: 3}}

	assert.Equal(t, int64(9), list.Total(2))
	assert.Equal(t, int64(12), list.Total(20))
	assert.Equal(t, int64(0), RankingList(nil).Total(5))
}

func TestTrendSeriesDelta(t *testing.T) {
	s := TrendSeries{
		{Date: "20250901", TotalLong: 100, TotalShort: 80, TotalVolume: 50},
		{Date: "20250902", TotalLong: 120, TotalShort: 70, TotalVolume: 40},
	}

	_, ok := s.Delta(0)
	assert.False(t, ok)

	d, ok := s.Delta(1)
	require.True(t, ok)
	assert.Equal(t, TrendDelta{Long: 20, Short: -10, Volume: -10, Net: 30}, d)
}
