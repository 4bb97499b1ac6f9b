package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/dataprocessing"
	apperrors "github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/infrastructure"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// PositionService answers queries over one loaded record collection.
// The collection is canonicalized once and never mutated, so the service is
// safe for concurrent queries.
type PositionService struct {
	snapshots     *dataprocessing.Snapshots
	engine        *dataprocessing.Engine
	calendar      *TradingCalendar
	validate      *validator.Validate
	defaultWindow domain.WindowKind
	logger        *slog.Logger
	tracer        trace.Tracer
	metrics       *infrastructure.RankMetrics

	contracts []string
	dates     map[string][]domain.Date
}

// Option configures a PositionService.
type Option func(*PositionService)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *PositionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCalendar sets the trading calendar used for previous-day lookups.
func WithCalendar(cal *TradingCalendar) Option {
	return func(s *PositionService) {
		if cal != nil {
			s.calendar = cal
		}
	}
}

// WithTelemetry traces and meters every query.
func WithTelemetry(tel *infrastructure.Telemetry) Option {
	return func(s *PositionService) {
		if tel == nil {
			return
		}
		s.tracer = tel.Tracer
		s.metrics = tel.Metrics
	}
}

// WithDefaultWindow sets the trend window used when a query names none.
func WithDefaultWindow(w domain.WindowKind) Option {
	return func(s *PositionService) {
		if w.Days() > 0 {
			s.defaultWindow = w
		}
	}
}

// NewPositionService canonicalizes records and indexes contracts and dates.
func NewPositionService(records []domain.RawRecord, engine *dataprocessing.Engine, opts ...Option) *PositionService {
	if engine == nil {
		engine = dataprocessing.NewEngine(dataprocessing.DefaultEngineConfig())
	}

	s := &PositionService{
		snapshots:     dataprocessing.Canonicalize(records),
		engine:        engine,
		calendar:      WeekdayCalendar(),
		validate:      NewQueryValidator(),
		defaultWindow: domain.WindowMonth,
		logger:        slog.Default(),
		tracer:        tracenoop.NewTracerProvider().Tracer("services"),
		dates:         make(map[string][]domain.Date),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = infrastructure.WithComponent(s.logger, "position_service")

	seen := make(map[domain.SnapshotKey]bool)
	for _, snap := range s.snapshots.All() {
		key := domain.SnapshotKey{Date: snap.Date, Contract: snap.Contract}
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := s.dates[snap.Contract]; !ok {
			s.contracts = append(s.contracts, snap.Contract)
		}
		s.dates[snap.Contract] = append(s.dates[snap.Contract], snap.Date)
	}
	sort.Strings(s.contracts)
	for _, ds := range s.dates {
		sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	}

	s.logger.Debug("Position service ready",
		slog.Int("records", len(records)),
		slog.Int("snapshots", s.snapshots.Len()),
		slog.Int("contracts", len(s.contracts)))

	return s
}

// Contracts returns the loaded contracts in lexical order.
func (s *PositionService) Contracts() []string {
	return append([]string(nil), s.contracts...)
}

// Dates returns the ascending trading dates of contract. An empty contract
// returns the dates of every contract.
func (s *PositionService) Dates(contract string) []domain.Date {
	if contract != "" {
		return append([]domain.Date(nil), s.dates[contract]...)
	}

	set := make(map[domain.Date]bool)
	var all []domain.Date
	for _, ds := range s.dates {
		for _, d := range ds {
			if !set[d] {
				set[d] = true
				all = append(all, d)
			}
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// LatestDate returns the most recent date of contract.
func (s *PositionService) LatestDate(contract string) (domain.Date, bool) {
	ds := s.Dates(contract)
	if len(ds) == 0 {
		return "", false
	}
	return ds[len(ds)-1], true
}

// Leaderboard ranks every category for one contract and date and compares
// each with the previous trading day.
func (s *PositionService) Leaderboard(ctx context.Context, q domain.Query) (lb *domain.Leaderboard, err error) {
	ctx, done := s.observe(ctx, "leaderboard", q)
	defer func() { done(err) }()

	if err := s.Validate(q); err != nil {
		return nil, err
	}
	contract, err := s.resolveContract(q.Contract)
	if err != nil {
		return nil, err
	}
	date := q.Date
	if date.IsZero() {
		date, _ = s.LatestDate(contract)
	}

	today := s.snapshotsOn(date, contract)
	prevDate := s.previousDate(contract, date)
	previous := s.snapshotsOn(prevDate, contract)
	infrastructure.SetSpanAttributes(ctx,
		attribute.String("resolved.contract", contract),
		attribute.String("resolved.date", date.String()),
		attribute.String("resolved.prev_date", prevDate.String()))

	lb = &domain.Leaderboard{
		Date:     date,
		Contract: contract,
		PrevDate: prevDate,
		Boards:   make([]domain.CategoryBoard, 0, len(domain.Categories)),
	}
	for _, c := range domain.Categories {
		list := s.engine.Rank(today, c)
		lb.Boards = append(lb.Boards, domain.CategoryBoard{
			Category: c,
			Entries:  list,
			Summary:  dataprocessing.Summarize(list, previous, c),
			Shares:   s.engine.ShareBreakdown(list),
		})
	}

	s.logger.DebugContext(ctx, "Leaderboard computed",
		slog.String("contract", contract),
		slog.String("date", date.String()),
		slog.String("prev_date", prevDate.String()),
		slog.Int("snapshots", len(today)))

	return lb, nil
}

// Trend builds the all-broker series and the top-N net series of one
// contract over the query window.
func (s *PositionService) Trend(ctx context.Context, q domain.Query) (report *domain.TrendReport, err error) {
	ctx, done := s.observe(ctx, "trend", q)
	defer func() { done(err) }()

	if err := s.Validate(q); err != nil {
		return nil, err
	}
	contract, err := s.resolveContract(q.Contract)
	if err != nil {
		return nil, err
	}

	window := s.window(q)
	end := s.endDate(q, contract)
	infrastructure.SetSpanAttributes(ctx,
		attribute.String("resolved.contract", contract),
		attribute.String("resolved.end_date", end.String()),
		attribute.String("resolved.window", string(window)))
	snaps := s.snapshots.Filter(func(snap domain.Snapshot) bool { return snap.Contract == contract })

	report = &domain.TrendReport{
		Contract: contract,
		Window:   window,
		End:      end,
		Points:   s.engine.Trend(snaps, window, end),
		NetTop:   s.engine.NetTopTrend(snaps, window, end),
	}
	if !end.IsZero() {
		report.Start = window.Start(end)
	}

	s.logger.DebugContext(ctx, "Trend computed",
		slog.String("contract", contract),
		slog.String("window", string(window)),
		slog.Int("points", len(report.Points)))

	return report, nil
}

// CrossPeriod aggregates every month of the queried contract's product on
// the query date, or on the product's latest date when none is given.
// Without a contract all loaded products are included.
func (s *PositionService) CrossPeriod(ctx context.Context, q domain.Query) (result *domain.CrossPeriodResult, err error) {
	ctx, done := s.observe(ctx, "cross_period", q)
	defer func() { done(err) }()

	if err := s.Validate(q); err != nil {
		return nil, err
	}

	product := dataprocessing.ProductOf(q.Contract)
	date := q.Date
	if date.IsZero() {
		date = s.latestProductDate(product)
	}
	infrastructure.SetSpanAttributes(ctx,
		attribute.String("resolved.product", product),
		attribute.String("resolved.date", date.String()))

	var snaps []domain.Snapshot
	if !date.IsZero() {
		snaps = s.snapshots.Filter(func(snap domain.Snapshot) bool {
			return snap.Date == date && (product == "" || dataprocessing.ProductOf(snap.Contract) == product)
		})
	}

	cp := s.engine.CrossPeriod(date, snaps)

	s.logger.DebugContext(ctx, "Cross period computed",
		slog.String("date", date.String()),
		slog.String("product", product),
		slog.Bool("has_data", cp.HasData),
		slog.Int("entries", len(cp.Entries)))

	return &cp, nil
}

// BrokerDetail returns one broker's trend on a contract and its spread
// against the other months held on the query date.
func (s *PositionService) BrokerDetail(ctx context.Context, q domain.Query) (detail *domain.BrokerDetail, err error) {
	ctx, done := s.observe(ctx, "broker_detail", q)
	defer func() { done(err) }()

	if err := s.Validate(q); err != nil {
		return nil, err
	}
	if q.Broker == "" {
		return nil, apperrors.NewValidationError("broker detail needs a broker", ErrBrokerRequired)
	}
	contract, err := s.resolveContract(q.Contract)
	if err != nil {
		return nil, err
	}

	end := s.endDate(q, contract)
	date := q.Date
	if date.IsZero() {
		date = end
	}
	product := dataprocessing.ProductOf(contract)

	trendSnaps := s.snapshots.Filter(func(snap domain.Snapshot) bool {
		return snap.Contract == contract && snap.Broker == q.Broker
	})
	daySnaps := s.snapshots.Filter(func(snap domain.Snapshot) bool {
		return snap.Date == date && snap.Broker == q.Broker && dataprocessing.ProductOf(snap.Contract) == product
	})

	detail = &domain.BrokerDetail{
		Broker:   q.Broker,
		Contract: contract,
		Trend:    s.engine.BrokerTrend(trendSnaps, q.Broker, s.window(q), end),
		Spread:   dataprocessing.BrokerSpread(daySnaps, date, q.Broker, contract),
	}

	s.logger.DebugContext(ctx, "Broker detail computed",
		slog.String("broker", q.Broker),
		slog.String("contract", contract),
		slog.Int("trend_rows", len(detail.Trend)),
		slog.Int("spread_pairs", len(detail.Spread)))

	return detail, nil
}

// resolveContract defaults an empty selection to the first contract in
// lexical order. An unknown contract is kept; its queries come back empty.
func (s *PositionService) resolveContract(contract string) (string, error) {
	if contract != "" {
		return contract, nil
	}
	if len(s.contracts) == 0 {
		return "", ErrNoData
	}
	return s.contracts[0], nil
}

// latestProductDate returns the most recent date of any contract of
// product. An empty product covers every contract.
func (s *PositionService) latestProductDate(product string) domain.Date {
	var latest domain.Date
	for _, contract := range s.contracts {
		if product != "" && dataprocessing.ProductOf(contract) != product {
			continue
		}
		ds := s.dates[contract]
		if len(ds) > 0 && latest.Before(ds[len(ds)-1]) {
			latest = ds[len(ds)-1]
		}
	}
	return latest
}

func (s *PositionService) window(q domain.Query) domain.WindowKind {
	if q.Window != "" {
		return q.Window
	}
	return s.defaultWindow
}

// endDate picks the trend end: the explicit end date, then the query date,
// then the latest date of contract.
func (s *PositionService) endDate(q domain.Query, contract string) domain.Date {
	switch {
	case !q.EndDate.IsZero():
		return q.EndDate
	case !q.Date.IsZero():
		return q.Date
	}
	latest, _ := s.LatestDate(contract)
	return latest
}

func (s *PositionService) snapshotsOn(date domain.Date, contract string) []domain.Snapshot {
	if date.IsZero() {
		return nil
	}
	return s.snapshots.Filter(func(snap domain.Snapshot) bool {
		return snap.Date == date && snap.Contract == contract
	})
}

// previousDate returns the previous trading day by calendar when contract
// has data on it, otherwise the latest earlier date with data.
func (s *PositionService) previousDate(contract string, date domain.Date) domain.Date {
	if date.IsZero() {
		return ""
	}

	dates := s.dates[contract]
	if prev := s.calendar.PreviousTradingDay(date); !prev.IsZero() {
		i := sort.Search(len(dates), func(i int) bool { return dates[i] >= prev })
		if i < len(dates) && dates[i] == prev {
			return prev
		}
	}

	i := sort.Search(len(dates), func(i int) bool { return dates[i] >= date })
	if i == 0 {
		return ""
	}
	return dates[i-1]
}

// observe opens a span for one query and returns the function that closes
// it and records the outcome.
func (s *PositionService) observe(ctx context.Context, operation string, q domain.Query) (context.Context, func(error)) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "position."+operation, trace.WithAttributes(
		attribute.String("query.contract", q.Contract),
		attribute.String("query.date", q.Date.String()),
		attribute.String("query.window", string(q.Window)),
	))
	start := time.Now()

	return ctx, func(err error) {
		if err != nil {
			infrastructure.RecordError(ctx, err)
			infrastructure.WithError(s.logger, err).WarnContext(ctx, "Query failed",
				slog.String("operation", operation),
				infrastructure.QueryAttrs(q))
		}
		s.metrics.RecordQuery(ctx, operation, time.Since(start), err)
		span.End()
	}
}

// Validate checks the query fields.
func (s *PositionService) Validate(q domain.Query) error {
	if err := s.validate.Struct(q); err != nil {
		return apperrors.NewValidationError("query validation failed", fmt.Errorf("%w: %v", ErrInvalidQuery, err))
	}
	return nil
}
