package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
)

// SourcePatterns are the position source file patterns.
var SourcePatterns = []string{"*.csv", "*.xlsx", "*.xlsm"}

// FileValidator provides common file validation functions for the CLI
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputs checks every input path: files must be readable position
// sources, directories must hold at least one.
func (v *FileValidator) ValidateInputs(inputs []string) error {
	if len(inputs) == 0 {
		return apperrors.NewValidationError("no input given", nil)
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if os.IsNotExist(err) {
			v.logger.Error("Input does not exist",
				slog.String("path", input))
			return apperrors.NewValidationError(fmt.Sprintf("input %s does not exist", input), err)
		}
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", input), err)
		}

		if info.IsDir() {
			if err := v.ValidateInputDirectory(input); err != nil {
				return err
			}
			continue
		}
		if err := v.ValidateSourceFile(input); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInputDirectory validates that the directory holds position sources
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	count, err := v.CountSources(dir)
	if err != nil {
		return err
	}
	if count == 0 {
		v.logger.Error("No position sources found",
			slog.String("directory", dir))
		return apperrors.NewValidationError(fmt.Sprintf("directory %s holds no csv or xlsx files", dir), nil)
	}

	v.logger.Debug("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", count))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apperrors.NewValidationError(fmt.Sprintf("file %s does not exist", path), err)
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateSourceFile checks that path is a readable csv or xlsx source
func (v *FileValidator) ValidateSourceFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !IsSourceFile(path) {
		v.logger.Error("File is not a position source",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewValidationError(fmt.Sprintf("file %s is not a csv or xlsx file (extension: %s)", path, ext), nil)
	}

	// Check it's not an Excel lock file
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return apperrors.NewValidationError(fmt.Sprintf("file %s is a temporary Excel file", path), nil)
	}

	return nil
}

// CountSources counts position source files in a directory
func (v *FileValidator) CountSources(dir string) (int, error) {
	fileCount := 0
	for _, pattern := range SourcePatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, fmt.Errorf("failed to count files: %w", err)
		}

		// Filter out directories and lock files
		for _, match := range matches {
			info, err := os.Stat(match)
			if err == nil && !info.IsDir() && !strings.HasPrefix(filepath.Base(match), "~$") {
				fileCount++
			}
		}
	}

	v.logger.Debug("Files counted",
		slog.String("directory", dir),
		slog.Int("count", fileCount))
	return fileCount, nil
}

// IsSourceFile reports whether the extension is a supported source type
func IsSourceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}
