// Package shared holds helpers used across the member-rank packages.
//
// The testutil subpackage provides a buffered slog handler for asserting log
// output and builders for raw member ranking records:
//
//	logger, logs := testutil.NewTestLogger(t)
//	records := []domain.RawRecord{
//	    testutil.Record("20250905", "SHFE.rb2605", "中信期货").WithLong(100, 5, 1).Build(),
//	}
//
// Nothing in this package carries business logic.
package shared
