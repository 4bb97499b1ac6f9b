// Package dataprocessing turns exchange member ranking exports into
// leaderboards, summaries, trend series and cross-period aggregates.
//
// # Architecture
//
// The package is organized into the following passes:
//
// 1. Parser: reads CSV or xlsx exports into domain.RawRecord values
// 2. Canonicalize: collapses duplicate (date, contract, broker) rows
// 3. Rank and Summarize: the five category leaderboards for one day
// 4. Trend and NetTopTrend: calendar-window series for one contract
// 5. CrossPeriod: per contract month and per broker net positions for one day
//
// # Usage
//
//	result, err := dataprocessing.NewParser(logger).ParseFile(ctx, "rb.csv")
//	if err != nil {
//	    return err
//	}
//	snaps := dataprocessing.Canonicalize(result.Records)
//	day := snaps.Filter(func(s domain.Snapshot) bool { return s.Date == date })
//	list := dataprocessing.Rank(day, domain.CategoryLong)
//
// # Data Flow
//
//	export → Parser → RawRecords → Canonicalize → Snapshots → Rank / Trend / CrossPeriod
//
// Everything after parsing is a pure computation over in-memory slices. Empty
// inputs produce empty outputs rather than errors, and calls share no state,
// so concurrent queries over the same records need no locking.
package dataprocessing
