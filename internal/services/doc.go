// Package services implements the query layer of the member rank application.
// It owns the loaded position records and turns a domain.Query into the
// engine passes of package dataprocessing.
//
// # Services
//
//	- Loader: reads position sources in parallel; a failing source
//	  contributes no records instead of failing the load
//	- TradingCalendar: previous trading day lookup for summaries
//	- PositionService: leaderboard, trend, cross-period and broker queries
//
// # Error Handling
//
// Invalid queries are returned as validation AppErrors wrapping
// ErrInvalidQuery. Missing data for a date, contract or window is not an
// error; the affected result is simply empty.
package services
