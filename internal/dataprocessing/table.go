package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "edacli/internal/errors"
)

// DefaultPreviewRows is the number of records returned by Head.
const DefaultPreviewRows = 5

// Cell is one field of a Record. Value is the text as it appeared in the
// file; Missing reports whether it matched a missing-value token.
type Cell struct {
	Column  string
	Value   string
	Missing bool
}

// Record is one data row, with cells in header order.
type Record struct {
	Index int
	Cells []Cell
}

// Values returns the raw cell texts in header order.
func (r Record) Values() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Value
	}
	return out
}

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Column string
	Count  int
}

// Table is a loaded dataset. It is never modified after Load returns.
type Table struct {
	source string
	names  []string
	types  []series.Type
	rows   [][]string
	frame  dataframe.DataFrame
}

// newTable builds a Table from raw records whose first entry is the header.
// Column types are inferred here and handed to gota so that no present
// value is coerced to NA by its own detection.
func newTable(source string, records [][]string, na naSet) (*Table, error) {
	header := normalizeHeader(records[0])
	body := records[1:]

	types := make([]series.Type, len(header))
	typeMap := make(map[string]series.Type, len(header))
	for j, name := range header {
		types[j] = inferColumnType(body, j, na)
		typeMap[name] = types[j]
	}

	t := &Table{
		source: source,
		names:  header,
		types:  types,
		rows:   body,
	}

	// gota refuses a frame without rows; a header-only file is still a
	// valid (0, k) table.
	if len(body) == 0 {
		return t, nil
	}

	loadRecords := make([][]string, 0, len(records))
	loadRecords = append(loadRecords, header)
	loadRecords = append(loadRecords, body...)

	t.frame = dataframe.LoadRecords(loadRecords,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(typeMap),
		dataframe.NaNValues(na.tokens()),
	)
	if t.frame.Err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to build table from %s", source), t.frame.Err).
			WithContext("path", source)
	}

	return t, nil
}

// normalizeHeader names blank columns "Unnamed: j" and suffixes repeated
// names with ".1", ".2", ... so every column has a unique name.
func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	repeats := make(map[string]int)
	for j, name := range raw {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		candidate := name
		for used[candidate] {
			repeats[name]++
			candidate = fmt.Sprintf("%s.%d", name, repeats[name])
		}
		used[candidate] = true
		header[j] = candidate
	}
	return header
}

// inferColumnType picks the narrowest type that holds every present value
// of column j: int, then float, then bool, else string. A column with no
// present values is a string column.
func inferColumnType(rows [][]string, j int, na naSet) series.Type {
	var hasInt, hasFloat, hasBool, present bool
	for _, row := range rows {
		v := row[j]
		if na.contains(v) {
			continue
		}
		present = true
		if _, err := strconv.Atoi(v); err == nil {
			hasInt = true
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil && !isHexLiteral(v) {
			hasFloat = true
			continue
		}
		if lv := strings.ToLower(v); lv == "true" || lv == "false" {
			hasBool = true
			continue
		}
		return series.String
	}

	switch {
	case !present:
		return series.String
	case hasBool && (hasInt || hasFloat):
		return series.String
	case hasBool:
		return series.Bool
	case hasFloat:
		return series.Float
	default:
		return series.Int
	}
}

// isHexLiteral reports whether v uses Go's hexadecimal float syntax, which
// strconv.ParseFloat accepts but a data file means as text.
func isHexLiteral(v string) bool {
	v = strings.TrimLeft(v, "+-")
	return len(v) > 1 && v[0] == '0' && (v[1] == 'x' || v[1] == 'X')
}

// Source returns the path the table was loaded from.
func (t *Table) Source() string {
	return t.source
}

// Shape returns the number of data rows and columns.
func (t *Table) Shape() (int, int) {
	return len(t.rows), len(t.names)
}

// Names returns the column names in header order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Types returns the inferred column types in header order.
func (t *Table) Types() []series.Type {
	out := make([]series.Type, len(t.types))
	copy(out, t.types)
	return out
}

func (t *Table) isMissing(i, j int) bool {
	return t.frame.Elem(i, j).IsNA()
}

// Preview returns the first min(n, rows) records in file order. n <= 0
// returns none.
func (t *Table) Preview(n int) []Record {
	if n <= 0 {
		return []Record{}
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}

	records := make([]Record, n)
	for i := 0; i < n; i++ {
		cells := make([]Cell, len(t.names))
		for j, name := range t.names {
			cells[j] = Cell{
				Column:  name,
				Value:   t.rows[i][j],
				Missing: t.isMissing(i, j),
			}
		}
		records[i] = Record{Index: i, Cells: cells}
	}
	return records
}

// Head returns the first DefaultPreviewRows records.
func (t *Table) Head() []Record {
	return t.Preview(DefaultPreviewRows)
}

// CountMissing returns the number of missing cells per column, in header
// order. Columns without missing cells report zero.
func (t *Table) CountMissing() []MissingCount {
	counts := make([]MissingCount, len(t.names))
	for j, name := range t.names {
		counts[j].Column = name
		for i := range t.rows {
			if t.isMissing(i, j) {
				counts[j].Count++
			}
		}
	}
	return counts
}

// MissingMap returns CountMissing keyed by column name.
func (t *Table) MissingMap() map[string]int {
	out := make(map[string]int, len(t.names))
	for _, mc := range t.CountMissing() {
		out[mc.Column] = mc.Count
	}
	return out
}

// TotalMissing returns the number of missing cells in the table.
func (t *Table) TotalMissing() int {
	total := 0
	for _, mc := range t.CountMissing() {
		total += mc.Count
	}
	return total
}
