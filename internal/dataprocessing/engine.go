package dataprocessing

import (
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

const (
	// DefaultTopN is the leaderboard length.
	DefaultTopN = 20
	// DefaultTrendPointCap bounds the number of points in any trend series.
	DefaultTrendPointCap = 90
	// DefaultCrossPeriodTopBrokers bounds the stacked cross-period broker view.
	DefaultCrossPeriodTopBrokers = 20
	// DefaultShareSlices is the number of named slices in a share breakdown.
	DefaultShareSlices = 5
)

// EngineConfig holds the truncation limits of the aggregation passes.
type EngineConfig struct {
	TopN                  int
	TrendPointCap         int
	CrossPeriodTopBrokers int
	ShareSlices           int
}

// DefaultEngineConfig returns the standard leaderboard limits.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TopN:                  DefaultTopN,
		TrendPointCap:         DefaultTrendPointCap,
		CrossPeriodTopBrokers: DefaultCrossPeriodTopBrokers,
		ShareSlices:           DefaultShareSlices,
	}
}

// Engine runs the aggregation passes over canonical snapshots.
// It holds no state besides its limits and is safe for concurrent use.
type Engine struct {
	cfg EngineConfig
}

// NewEngine creates an engine. Non-positive limits fall back to defaults.
func NewEngine(cfg EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.TrendPointCap <= 0 {
		cfg.TrendPointCap = def.TrendPointCap
	}
	if cfg.CrossPeriodTopBrokers <= 0 {
		cfg.CrossPeriodTopBrokers = def.CrossPeriodTopBrokers
	}
	if cfg.ShareSlices <= 0 {
		cfg.ShareSlices = def.ShareSlices
	}
	return &Engine{cfg: cfg}
}

// Config returns the effective limits.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

var defaultEngine = NewEngine(DefaultEngineConfig())

// Rank builds the leaderboard for category with the default limits.
func Rank(snapshots []domain.Snapshot, category domain.Category) domain.RankingList {
	return defaultEngine.Rank(snapshots, category)
}

// Trend builds the all-broker trend series with the default limits.
func Trend(snapshots []domain.Snapshot, window domain.WindowKind, endDate domain.Date) domain.TrendSeries {
	return defaultEngine.Trend(snapshots, window, endDate)
}

// NetTopTrend builds the top-N signed net series with the default limits.
func NetTopTrend(snapshots []domain.Snapshot, window domain.WindowKind, endDate domain.Date) []domain.NetTopPoint {
	return defaultEngine.NetTopTrend(snapshots, window, endDate)
}

// CrossPeriod builds the inter-month view for date with the default limits.
func CrossPeriod(date domain.Date, snapshots []domain.Snapshot) domain.CrossPeriodResult {
	return defaultEngine.CrossPeriod(date, snapshots)
}

// ShareBreakdown splits a leaderboard into named slices plus an other bucket.
func ShareBreakdown(list domain.RankingList) []domain.ShareSlice {
	return defaultEngine.ShareBreakdown(list)
}

// BrokerTrend returns one broker's daily history with the default limits.
func BrokerTrend(snapshots []domain.Snapshot, broker string, window domain.WindowKind, endDate domain.Date) []domain.BrokerTrendRow {
	return defaultEngine.BrokerTrend(snapshots, broker, window, endDate)
}
