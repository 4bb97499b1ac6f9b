package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/config"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/dataprocessing"
	apperrors "github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/infrastructure"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/validation"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// SourceStatus reports the outcome of loading one source.
type SourceStatus struct {
	Path    string
	Records int
	Rows    int
	Dropped int
	Err     error
}

// LoadResult holds the records of all sources in source order.
type LoadResult struct {
	Records []domain.RawRecord
	Sources []SourceStatus
}

// Failed returns the sources that could not be loaded.
func (r *LoadResult) Failed() []SourceStatus {
	var failed []SourceStatus
	for _, s := range r.Sources {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Loader reads position sources concurrently.
type Loader struct {
	parser      *dataprocessing.Parser
	concurrency int
	logger      *slog.Logger
	metrics     *infrastructure.RankMetrics
}

// NewLoader creates a loader. A nil logger uses the global logger.
func NewLoader(cfg config.LoaderConfig, logger *slog.Logger, metrics *infrastructure.RankMetrics) *Loader {
	logger = infrastructure.WithComponent(logger, "loader")
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultLoaderConcurrency
	}
	return &Loader{
		parser:      dataprocessing.NewParser(logger),
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// ExpandSources resolves files and directories into the list of source
// files. Directories contribute their csv and xlsx files in name order.
func ExpandSources(inputs []string) ([]string, error) {
	var sources []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			sources = append(sources, path)
		}
	}

	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		info, err := os.Stat(input)
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("source "+input).WithContext("path", input)
		}
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("cannot access %s", input), err)
		}
		if !info.IsDir() {
			add(input)
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("cannot read directory %s", input), err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !validation.IsSourceFile(entry.Name()) || strings.HasPrefix(entry.Name(), "~$") {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			add(filepath.Join(input, name))
		}
	}

	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return sources, nil
}

// Load parses every source in parallel. A source that fails to parse is
// logged and contributes no records; only cancellation of ctx fails the
// whole load.
func (l *Loader) Load(ctx context.Context, sources []string) (*LoadResult, error) {
	statuses := make([]SourceStatus, len(sources))
	records := make([][]domain.RawRecord, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			statuses[i].Path = source
			result, err := l.parser.ParseFile(gctx, source)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				statuses[i].Err = err
				infrastructure.WithError(infrastructure.WithSource(l.logger, source), err).
					WarnContext(gctx, "Position source skipped")
				kind := "UNKNOWN"
				if t, ok := apperrors.TypeOf(err); ok {
					kind = string(t)
				}
				l.metrics.RecordSourceFailure(gctx, kind)
				return nil
			}

			statuses[i].Records = len(result.Records)
			statuses[i].Rows = result.Rows
			statuses[i].Dropped = result.Dropped
			records[i] = result.Records
			l.metrics.RecordParse(gctx, result.Rows, result.Dropped)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &LoadResult{Sources: statuses}
	for _, recs := range records {
		out.Records = append(out.Records, recs...)
	}

	l.metrics.RecordLoaded(ctx, len(out.Records))
	l.logger.InfoContext(ctx, "Position sources loaded",
		slog.Int("sources", len(sources)),
		slog.Int("failed", len(out.Failed())),
		slog.Int("records", len(out.Records)))

	return out, nil
}
