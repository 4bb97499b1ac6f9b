package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/shared/testutil"
	"github.com/shinnytech/caiwenqiang-member-rank/pkg/contracts/domain"
)

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "SHFE_rb.csv")
	content := testutil.PositionCSV(
		testutil.Record("20250904", "SHFE.rb2605", "A").WithLong(90, 0, 1).WithShort(30, 0, 2).Build(),
		testutil.Record("20250904", "SHFE.rb2605", "B").WithLong(20, 0, 2).WithShort(80, 0, 1).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "A").WithLong(100, 10, 1).WithShort(40, 10, 2).WithVolume(500, 20, 1).Build(),
		testutil.Record("20250905", "SHFE.rb2605", "B").WithLong(30, 10, 2).WithShort(90, 10, 1).WithVolume(300, 5, 2).Build(),
		testutil.Record("20250905", "SHFE.rb2610", "A").WithLong(7, 2, 1).WithShort(3, 2, 1).Build(),
	)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// isolate keeps config discovery and log files inside a temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("MEMBERRANK_CONFIG_FILE", "")
	t.Setenv("MEMBERRANK_LOGGING_OUTPUT", "stdout")
	return dir
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-input", "a.csv, data/ ,", "-date", "2025-09-05", "-contract", "SHFE.rb2605",
		"-window", "week", "-broker", "A", "-format", "xlsx", "-out", "out", "-config", "c.yaml",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, options{
		inputs:     []string{"a.csv", "data/"},
		date:       "2025-09-05",
		contract:   "SHFE.rb2605",
		window:     "week",
		broker:     "A",
		format:     "xlsx",
		out:        "out",
		configFile: "c.yaml",
	}, opts)

	_, err = parseFlags([]string{"-unknown"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	q, err := buildQuery(options{date: "2025-09-05", window: " WEEK ", contract: " SHFE.rb2605 "})
	require.NoError(t, err)
	assert.Equal(t, domain.Query{Date: "20250905", Window: domain.WindowWeek, Contract: "SHFE.rb2605"}, q)

	_, err = buildQuery(options{date: "someday"})
	assert.Error(t, err)

	_, err = buildQuery(options{window: "year"})
	assert.Error(t, err)

	q, err = buildQuery(options{})
	require.NoError(t, err)
	assert.Empty(t, q.Window)
}

func TestRun_CSVReports(t *testing.T) {
	dir := isolate(t)
	source := writeSource(t, dir)
	out := filepath.Join(dir, "reports-out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-input", source, "-out", out, "-broker", "A", "-window", "week"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	files := strings.Fields(stdout.String())
	require.NotEmpty(t, files)
	assert.Contains(t, files, filepath.Join(out, "SHFE.rb_20250905_summary.csv"))
	assert.Contains(t, files, filepath.Join(out, "SHFE.rb_20250905_cross_period.csv"))
	assert.Contains(t, files, filepath.Join(out, "SHFE.rb_20250905_broker_spread.csv"))

	content, err := os.ReadFile(filepath.Join(out, "SHFE.rb_20250905_rank_long.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "1,A,100,10")
	assert.Contains(t, stderr.String(), "Report exported")
}

func TestRun_JSONReport(t *testing.T) {
	dir := isolate(t)
	writeSource(t, dir)
	out := filepath.Join(dir, "json-out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-input", dir, "-out", out, "-format", "json", "-date", "20250904"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.Equal(t, filepath.Join(out, "SHFE.rb_20250904_report.json"), strings.TrimSpace(stdout.String()))
}

func TestRun_Failures(t *testing.T) {
	dir := isolate(t)
	source := writeSource(t, dir)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bad flag", []string{"-nope"}, exitUsage},
		{"missing input", []string{"-input", filepath.Join(dir, "missing.csv")}, exitFailure},
		{"bad date", []string{"-input", source, "-date", "tomorrow"}, exitFailure},
		{"bad window", []string{"-input", source, "-window", "year"}, exitFailure},
		{"bad format", []string{"-input", source, "-format", "pdf", "-out", filepath.Join(dir, "o")}, exitFailure},
		{"missing config file", []string{"-input", source, "-config", filepath.Join(dir, "none.yaml")}, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(context.Background(), tt.args, &stdout, &stderr))
		})
	}
}

func TestRun_InvalidQueryLogged(t *testing.T) {
	dir := isolate(t)
	source := writeSource(t, dir)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-input", source, "-out", filepath.Join(dir, "o"), "-contract", strings.Repeat("x", 65)}, &stdout, &stderr)

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "Invalid query")
	assert.NotContains(t, stderr.String(), "Report generation failed")
	assert.Empty(t, stdout.String())
}
