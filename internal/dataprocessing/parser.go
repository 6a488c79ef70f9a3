package dataprocessing

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "edacli/internal/errors"
	"edacli/internal/validation"
)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1024

// LoadOption configures a Loader
type LoadOption func(*loadOptions)

type loadOptions struct {
	naValues      []string
	keepDefaultNA bool
	delimiter     rune
	sheet         string
	logger        *slog.Logger
}

// WithNAValues adds tokens recognized as missing on top of the defaults.
func WithNAValues(tokens ...string) LoadOption {
	return func(o *loadOptions) {
		o.naValues = append(o.naValues, tokens...)
	}
}

// WithDefaultNA toggles the DefaultNAValues list.
func WithDefaultNA(keep bool) LoadOption {
	return func(o *loadOptions) {
		o.keepDefaultNA = keep
	}
}

// WithDelimiter sets the field delimiter for delimited files. Zero picks
// tab for .tsv files and comma otherwise.
func WithDelimiter(r rune) LoadOption {
	return func(o *loadOptions) {
		o.delimiter = r
	}
}

// WithSheet selects the worksheet read from .xlsx files.
func WithSheet(name string) LoadOption {
	return func(o *loadOptions) {
		o.sheet = name
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Loader reads dataset files into Tables.
type Loader struct {
	opts      loadOptions
	validator *validation.FileValidator
}

// NewLoader creates a loader with the given options
func NewLoader(opts ...LoadOption) *Loader {
	o := loadOptions{
		keepDefaultNA: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader{
		opts:      o,
		validator: validation.NewFileValidator(o.logger),
	}
}

// Load reads the dataset at path with a one-off Loader.
func Load(ctx context.Context, path string, opts ...LoadOption) (*Table, error) {
	return NewLoader(opts...).Load(ctx, path)
}

// Load reads the file at path into a Table. A missing file is a NOT_FOUND
// error; malformed content, including rows whose field count differs from
// the header's, is a PARSING error.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	start := time.Now()
	logger := l.opts.logger.With(slog.String("path", path))

	format, err := l.validator.ValidateDatasetFile(path)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case validation.FormatExcel:
		records, err = l.readWorkbook(ctx, path)
	default:
		records, err = l.readDelimited(ctx, path)
	}
	if err != nil {
		logger.DebugContext(ctx, "Failed to read dataset", slog.String("error", err.Error()))
		return nil, err
	}

	table, err := newTable(path, records, newNASet(l.opts.keepDefaultNA, l.opts.naValues))
	if err != nil {
		return nil, err
	}

	rows, cols := table.Shape()
	logger.InfoContext(ctx, "Dataset loaded",
		slog.String("format", string(format)),
		slog.Int("rows", rows),
		slog.Int("columns", cols),
		slog.Duration("duration", time.Since(start)))

	return table, nil
}

func (l *Loader) delimiterFor(path string) rune {
	if l.opts.delimiter != 0 {
		return l.opts.delimiter
	}
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// readDelimited reads every record of a delimited text file. The header
// fixes the field count; any other count fails with the offending line.
func (l *Loader) readDelimited(ctx context.Context, path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewFileNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = l.delimiterFor(path)
	reader.FieldsPerRecord = 0

	var records [][]string
	for {
		if len(records)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(path, err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("no columns to parse from %s", path), nil).
			WithContext("path", path)
	}

	// A UTF-8 byte order mark sticks to the first header name.
	records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")

	return records, nil
}

// parseError converts a csv reader error into a PARSING AppError carrying
// the line number.
func parseError(path string, err error) error {
	var perr *csv.ParseError
	if !stderrors.As(err, &perr) {
		return apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}

	msg := fmt.Sprintf("malformed CSV in %s at line %d", path, perr.Line)
	if stderrors.Is(perr.Err, csv.ErrFieldCount) {
		msg = fmt.Sprintf("%s: row has a different number of fields than the header at line %d", path, perr.Line)
	}
	return apperrors.NewParsingError(msg, err).
		WithContext("path", path).
		WithContext("line", perr.Line)
}

// readWorkbook reads the configured sheet, or the first one, of an .xlsx
// file. Trailing empty cells are trimmed by excelize, so short rows are
// padded back to the header width; completely empty rows are skipped.
func (l *Loader) readWorkbook(ctx context.Context, path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err).
			WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("workbook %s has no sheets", path), nil).
			WithContext("path", path)
	}

	sheet := l.opts.sheet
	if sheet == "" {
		sheet = sheets[0]
	} else if !containsString(sheets, sheet) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q in %s", sheet, path)).
			WithContext("path", path).
			WithContext("sheets", sheets)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q of %s", sheet, path), err).
			WithContext("path", path)
	}

	var (
		records [][]string
		width   int
	)
	for i, row := range rows {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlankRow(row) {
			continue
		}

		if records == nil {
			width = len(row)
			records = append(records, row)
			continue
		}

		if len(row) > width {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s: row has a different number of fields than the header at row %d of sheet %q", path, i+1, sheet), nil).
				WithContext("path", path).
				WithContext("line", i+1)
		}
		for len(row) < width {
			row = append(row, "")
		}
		records = append(records, row)
	}

	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("no columns to parse from sheet %q of %s", sheet, path), nil).
			WithContext("path", path)
	}

	l.opts.logger.DebugContext(ctx, "Workbook sheet read",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(records)))

	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
