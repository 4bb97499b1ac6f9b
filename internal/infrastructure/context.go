package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// GenerateTraceID returns a random UUID v4 string.
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID returns ctx unchanged when it already carries a trace ID.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// WithComponent tags logger with the component name. A nil logger uses the
// global one.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With("component", component)
}

// WithSource tags logger with the position file being read.
func WithSource(logger *slog.Logger, path string) *slog.Logger {
	return logger.With(slog.String("source", path))
}

// QueryAttrs groups the non-empty query fields under "query".
func QueryAttrs(q domain.Query) slog.Attr {
	var attrs []any
	if q.Contract != "" {
		attrs = append(attrs, slog.String("contract", q.Contract))
	}
	if !q.Date.IsZero() {
		attrs = append(attrs, slog.String("date", q.Date.String()))
	}
	if !q.EndDate.IsZero() {
		attrs = append(attrs, slog.String("end_date", q.EndDate.String()))
	}
	if q.Window != "" {
		attrs = append(attrs, slog.String("window", string(q.Window)))
	}
	if q.Broker != "" {
		attrs = append(attrs, slog.String("broker", q.Broker))
	}
	return slog.Group("query", attrs...)
}

// WithError tags logger with err. A nil err returns logger unchanged.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
