package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"edacli/internal/dataprocessing"
)

// Block labels, in the order WriteSummary prints them.
const (
	ShapeLabel    = "Dataset Shape:"
	PreviewLabel  = "First few rows:"
	MissingLabel  = "Missing Values:"
	DescribeLabel = "Summary Statistics:"
)

const (
	columnSep = "  "
	seriesSep = "    "
)

// SummaryOptions selects what WriteSummary prints.
type SummaryOptions struct {
	PreviewRows int
	Describe    bool
}

// DefaultSummaryOptions prints the shape, a five row preview and the
// missing value counts.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{PreviewRows: dataprocessing.DefaultPreviewRows}
}

// Report writes summary blocks as plain text.
type Report struct {
	w   io.Writer
	err error
}

// NewReport creates a report writing to w
func NewReport(w io.Writer) *Report {
	return &Report{w: w}
}

func (r *Report) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *Report) lines(lines []string) {
	for _, line := range lines {
		r.printf("%s\n", line)
	}
}

// WriteSummary writes every enabled block for table, separated by blank
// lines.
func (r *Report) WriteSummary(table *dataprocessing.Table, opts SummaryOptions) error {
	rows, cols := table.Shape()
	if err := r.WriteShape(rows, cols); err != nil {
		return err
	}

	r.printf("\n")
	if err := r.WritePreview(table.Names(), table.Types(), table.Preview(opts.PreviewRows)); err != nil {
		return err
	}

	r.printf("\n")
	if err := r.WriteMissing(table.CountMissing()); err != nil {
		return err
	}

	if opts.Describe {
		stats, err := table.Describe()
		if err != nil {
			return err
		}
		r.printf("\n")
		if err := r.WriteDescribe(stats); err != nil {
			return err
		}
	}

	return r.err
}

// WriteShape writes "Dataset Shape: (rows, cols)".
func (r *Report) WriteShape(rows, cols int) error {
	r.printf("%s %s\n", ShapeLabel, formatShape(rows, cols))
	return r.err
}

// WritePreview writes the records as an aligned table with a leading index
// column. Missing cells print as NaN.
func (r *Report) WritePreview(names []string, types []series.Type, records []dataprocessing.Record) error {
	r.printf("%s\n", PreviewLabel)

	if len(records) == 0 {
		r.printf("Empty DataFrame\n")
		r.printf("Columns: [%s]\n", strings.Join(names, ", "))
		r.printf("Index: []\n")
		return r.err
	}

	columns := make([][]string, len(names))
	for j := range names {
		columns[j] = formatColumn(types[j], records, j)
	}

	grid := make([][]string, 0, len(records)+1)
	grid = append(grid, append([]string{""}, names...))
	for i, rec := range records {
		row := make([]string, 0, len(names)+1)
		row = append(row, strconv.Itoa(rec.Index))
		for j := range names {
			row = append(row, columns[j][i])
		}
		grid = append(grid, row)
	}

	align := make([]alignment, len(names)+1)
	align[0] = alignLeft
	r.lines(renderGrid(grid, align, columnSep))
	return r.err
}

// formatColumn renders column j of records according to its type.
func formatColumn(t series.Type, records []dataprocessing.Record, j int) []string {
	out := make([]string, len(records))

	if t == series.Float {
		values := make([]float64, len(records))
		for i, rec := range records {
			cell := rec.Cells[j]
			if cell.Missing {
				values[i] = nanValue()
				continue
			}
			v, err := strconv.ParseFloat(cell.Value, 64)
			if err != nil {
				v = nanValue()
			}
			values[i] = v
		}
		return formatFloats(values)
	}

	for i, rec := range records {
		cell := rec.Cells[j]
		switch {
		case cell.Missing:
			out[i] = naText
		case t == series.Int:
			out[i] = formatInt(cell.Value)
		case t == series.Bool:
			out[i] = formatBool(cell.Value)
		default:
			out[i] = cell.Value
		}
	}
	return out
}

// WriteMissing writes one "column  count" line per column in the given
// order, followed by the dtype footer.
func (r *Report) WriteMissing(counts []dataprocessing.MissingCount) error {
	r.printf("%s\n", MissingLabel)

	grid := make([][]string, len(counts))
	for i, mc := range counts {
		grid[i] = []string{mc.Column, strconv.Itoa(mc.Count)}
	}
	r.lines(renderGrid(grid, []alignment{alignLeft, alignRight}, seriesSep))
	r.printf("dtype: int64\n")
	return r.err
}

// WriteDescribe writes the statistics with one row per statistic and one
// column per numeric column. Nothing but the label is printed when there
// are no numeric columns.
func (r *Report) WriteDescribe(stats []dataprocessing.ColumnStats) error {
	r.printf("%s\n", DescribeLabel)
	if len(stats) == 0 {
		r.printf("(no numeric columns)\n")
		return r.err
	}

	labels := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	columns := make([][]string, len(stats))
	for j, cs := range stats {
		columns[j] = formatFloats([]float64{
			float64(cs.Count), cs.Mean, cs.Std, cs.Min, cs.P25, cs.P50, cs.P75, cs.Max,
		})
	}

	header := make([]string, 0, len(stats)+1)
	header = append(header, "")
	for _, cs := range stats {
		header = append(header, cs.Column)
	}

	grid := [][]string{header}
	for i, label := range labels {
		row := make([]string, 0, len(stats)+1)
		row = append(row, label)
		for j := range stats {
			row = append(row, columns[j][i])
		}
		grid = append(grid, row)
	}

	align := make([]alignment, len(stats)+1)
	align[0] = alignLeft
	r.lines(renderGrid(grid, align, columnSep))
	return r.err
}
