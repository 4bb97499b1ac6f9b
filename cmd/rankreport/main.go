// Command rankreport loads member position exports and writes leaderboard,
// trend, cross-period and broker reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/config"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/dataprocessing"
	apperrors "github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/exporter"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/infrastructure"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/services"
	"github.com/shinnytech/caiwenqiang-member-rank/internal/validation"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// options holds the parsed command line
type options struct {
	inputs     []string
	date       string
	contract   string
	window     string
	broker     string
	format     string
	out        string
	configFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var inputs string

	fs := flag.NewFlagSet("rankreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&inputs, "input", "", "comma separated position files or directories (defaults to the data directory)")
	fs.StringVar(&opts.date, "date", "", "trading date, YYYYMMDD or YYYY-MM-DD (defaults to the latest date)")
	fs.StringVar(&opts.contract, "contract", "", "contract such as SHFE.rb2605 (defaults to the first loaded contract)")
	fs.StringVar(&opts.window, "window", "", "trend window: week, month or quarter")
	fs.StringVar(&opts.broker, "broker", "", "broker for the detail report")
	fs.StringVar(&opts.format, "format", "", "output format: csv, xlsx or json")
	fs.StringVar(&opts.out, "out", "", "output directory (defaults to the reports directory)")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	for _, in := range strings.Split(inputs, ",") {
		if in = strings.TrimSpace(in); in != "" {
			opts.inputs = append(opts.inputs, in)
		}
	}
	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// buildQuery turns the flags into a query. Dates are normalized so dashed
// input is accepted; the window must be week, month or quarter.
func buildQuery(opts options) (domain.Query, error) {
	q := domain.Query{
		Contract: strings.TrimSpace(opts.contract),
		Broker:   strings.TrimSpace(opts.broker),
	}
	if w := strings.ToLower(strings.TrimSpace(opts.window)); w != "" {
		window, err := domain.ParseWindowKind(w)
		if err != nil {
			return q, err
		}
		q.Window = window
	}
	if opts.date != "" {
		d, err := domain.ParseDate(opts.date)
		if err != nil {
			return q, err
		}
		q.Date = d
	}
	return q, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitFailure
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger error: %v\n", err)
		return exitFailure
	}
	defer infrastructure.CloseLogFile()

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, stderr, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx = infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())

	paths, err := cfg.ResolvePaths()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve paths", slog.String("error", err.Error()))
		return exitFailure
	}
	if opts.out != "" {
		if paths.ReportsDir, err = filepath.Abs(opts.out); err != nil {
			logger.ErrorContext(ctx, "Invalid output directory", slog.String("error", err.Error()))
			return exitFailure
		}
	}
	if len(opts.inputs) == 0 {
		opts.inputs = []string{paths.DataDir}
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputs(opts.inputs); err != nil {
		logger.ErrorContext(ctx, "Invalid input", slog.String("error", err.Error()))
		return exitFailure
	}
	if err := validator.ValidateOutputDirectory(paths.ReportsDir); err != nil {
		logger.ErrorContext(ctx, "Invalid output directory", slog.String("error", err.Error()))
		return exitFailure
	}

	query, err := buildQuery(opts)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid query", slog.String("error", err.Error()))
		return exitFailure
	}

	format := opts.format
	if format == "" {
		format = cfg.Export.Format
	}

	logger.InfoContext(ctx, "Starting member rank report",
		slog.Any("inputs", opts.inputs),
		slog.String("reports_dir", paths.ReportsDir),
		slog.String("format", format))

	if err := generate(ctx, cfg, paths, tel, logger, opts.inputs, query, format, stdout); err != nil {
		msg := "Report generation failed"
		if apperrors.IsType(err, apperrors.ErrTypeValidation) {
			msg = "Invalid query"
		}
		logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
		return exitFailure
	}

	if err := tel.WriteMetrics(""); err != nil {
		logger.WarnContext(ctx, "Failed to write metrics file", slog.String("error", err.Error()))
	}
	return exitOK
}

// generate loads the sources, runs the queries and writes the report files.
func generate(ctx context.Context, cfg *config.Config, paths *config.Paths, tel *infrastructure.Telemetry, logger *slog.Logger, inputs []string, query domain.Query, format string, stdout io.Writer) error {
	sources, err := services.ExpandSources(inputs)
	if err != nil {
		return err
	}

	loaded, err := services.NewLoader(cfg.Loader, logger, tel.Metrics).Load(ctx, sources)
	if err != nil {
		return err
	}

	engine := dataprocessing.NewEngine(dataprocessing.EngineConfig{
		TopN:                  cfg.Engine.TopN,
		TrendPointCap:         cfg.Engine.TrendPointCap,
		CrossPeriodTopBrokers: cfg.Engine.CrossPeriodTopBrokers,
		ShareSlices:           cfg.Engine.ShareSlices,
	})
	svc := services.NewPositionService(loaded.Records, engine,
		services.WithLogger(logger),
		services.WithCalendar(services.NewTradingCalendar(cfg.Calendar, logger)),
		services.WithTelemetry(tel),
		services.WithDefaultWindow(domain.WindowKind(cfg.Engine.DefaultWindow)),
	)

	if err := svc.Validate(query); err != nil {
		return err
	}

	lb, err := svc.Leaderboard(ctx, query)
	if err != nil {
		return err
	}

	// later queries follow the resolved contract and date
	query.Contract = lb.Contract
	query.Date = lb.Date

	trend, err := svc.Trend(ctx, query)
	if err != nil {
		return err
	}

	report := &exporter.Report{
		Product:     dataprocessing.ProductOf(lb.Contract),
		Date:        lb.Date,
		Leaderboard: lb,
		Trend:       trend,
	}

	cp, err := svc.CrossPeriod(ctx, query)
	if err != nil {
		return err
	}
	report.CrossPeriod = cp

	if query.Broker != "" {
		detail, err := svc.BrokerDetail(ctx, query)
		if err != nil {
			return err
		}
		report.BrokerDetail = detail
	}

	files, err := exporter.NewExporter(paths, cfg.Export, logger).Export(ctx, report, format)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(stdout, f)
	}
	return nil
}
