package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("parsed source", slog.String("source", "rb.csv"), slog.Int("rows", 3))
		logger.Error("load failed")

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("parsed source"))
		assert.True(t, handler.ContainsAttr("source", "rb.csv"))
		assert.True(t, handler.ContainsAttr("rows", int64(3)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 0)
		AssertLogContains(t, handler, slog.LevelWarn, "warn")
		AssertNoErrors(t, handler)
	})

	t.Run("derived handlers share the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "loader")).Info("child")

		assert.Equal(t, 1, handler.Count())
		assert.True(t, handler.ContainsAttr("component", "loader"))
	})
}

func TestRecordBuilder(t *testing.T) {
	rec := Record("20250905", "SHFE.rb2605", "A").
		WithVolume(500, 20, 1).
		WithLong(100, 5, 2).
		WithShort(40, -3, 0).
		Build()

	assert.Equal(t, "SHFE.rb2605", rec.Contract)
	assert.Equal(t, int64(500), rec.Volume.Value)
	assert.Equal(t, 2, rec.Long.Rank.Int())
	assert.False(t, rec.Short.Rank.Ranked())
}
