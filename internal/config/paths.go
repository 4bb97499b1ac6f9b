package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved application directories
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// ResolvePaths resolves the configured directories against the base
// directory, which defaults to the working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(c.Paths.DataDir, DefaultDataDir),
		ReportsDir: resolve(c.Paths.ReportsDir, DefaultReportsDir),
		LogsDir:    resolve(c.Paths.LogsDir, DefaultLogsDir),
	}, nil
}

// ReportPath returns the report file for a product, date and report kind,
// named <product>_<date>_<report>.<ext>.
func (p *Paths) ReportPath(product, date, report, ext string) string {
	parts := []string{sanitize(product)}
	if date != "" {
		parts = append(parts, date)
	}
	parts = append(parts, report)
	return filepath.Join(p.ReportsDir, strings.Join(parts, "_")+"."+strings.TrimPrefix(ext, "."))
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "all"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '-'
		}
		return r
	}, name)
}
