package validation

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "edacli/internal/errors"
)

// DatasetFormat identifies how a dataset file is read.
type DatasetFormat string

const (
	FormatDelimited DatasetFormat = "delimited"
	FormatExcel     DatasetFormat = "excel"
)

// SupportedExtensions lists the extensions recognized as datasets when a
// directory is searched. Any other file is still loaded as delimited text.
var SupportedExtensions = map[string]DatasetFormat{
	".csv":  FormatDelimited,
	".tsv":  FormatDelimited,
	".txt":  FormatDelimited,
	".xlsx": FormatExcel,
}

// FormatFor reports how path is read: .xlsx workbooks with excelize,
// everything else as delimited text.
func FormatFor(path string) DatasetFormat {
	if format, ok := SupportedExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return FormatDelimited
}

// FileValidator checks dataset and output paths before they are used
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

// ValidateDatasetFile checks that path is a readable regular file and
// reports how it should be read. Content problems, including a workbook that
// is not one, surface later as PARSING errors.
func (v *FileValidator) ValidateDatasetFile(path string) (DatasetFormat, error) {
	if err := v.ValidateFile(path); err != nil {
		return "", err
	}

	format := FormatFor(path)
	if _, known := SupportedExtensions[strings.ToLower(filepath.Ext(path))]; !known {
		v.logger.Debug("Reading file with unrecognized extension as delimited text",
			slog.String("file", path))
	}
	return format, nil
}

// ValidateFile checks that path exists, is not a directory and can be opened.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		v.logger.Debug("File does not exist",
			slog.String("file", path))
		return apperrors.NewFileNotFoundError(path, err)
	}
	if stderrors.Is(err, fs.ErrPermission) {
		v.logger.Debug("Permission denied",
			slog.String("file", path))
		return apperrors.NewPermissionError(fmt.Sprintf("cannot access %s", path)).
			WithContext("path", path)
	}
	if err != nil {
		v.logger.Debug("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Debug("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path)).
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Debug("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		if stderrors.Is(err, fs.ErrPermission) {
			return apperrors.NewPermissionError(fmt.Sprintf("file %s is not readable", path)).
				WithContext("path", path)
		}
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile ensures the parent directory of path exists or can be
// created and accepts new files.
func (v *FileValidator) ValidateOutputFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Debug("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Debug("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return nil
}
