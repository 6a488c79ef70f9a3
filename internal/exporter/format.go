package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxFloatPrecision caps the decimals shown for float cells.
const maxFloatPrecision = 6

// naText is shown for missing cells.
const naText = "NaN"

// floatPrecision returns the smallest number of decimals, between 1 and
// maxFloatPrecision, that shows every value without losing digits at that
// cap.
func floatPrecision(values []float64) int {
	precision := 1
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s := strconv.FormatFloat(v, 'f', maxFloatPrecision, 64)
		s = strings.TrimRight(s, "0")
		if dot := strings.IndexByte(s, '.'); dot >= 0 {
			if d := len(s) - dot - 1; d > precision {
				precision = d
			}
		}
	}
	return precision
}

// formatFloats renders values with a shared precision.
func formatFloats(values []float64) []string {
	precision := floatPrecision(values)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = formatFloat(v, precision)
	}
	return out
}

func formatFloat(v float64, precision int) string {
	switch {
	case math.IsNaN(v):
		return naText
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// formatInt normalizes an integer cell ("+7" and "007" both print as 7).
func formatInt(raw string) string {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}
	return strconv.Itoa(i)
}

// formatBool prints booleans capitalized.
func formatBool(raw string) string {
	switch strings.ToLower(raw) {
	case "true":
		return "True"
	case "false":
		return "False"
	}
	return raw
}

// alignment of a grid column
type alignment int

const (
	alignRight alignment = iota
	alignLeft
)

// renderGrid lays rows out in columns separated by sep. Every column is as
// wide as its widest cell.
func renderGrid(rows [][]string, align []alignment, sep string) []string {
	if len(rows) == 0 {
		return nil
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for j, cell := range row {
			if w := displayWidth(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for j, cell := range row {
			if j > 0 {
				b.WriteString(sep)
			}
			pad := strings.Repeat(" ", widths[j]-displayWidth(cell))
			if j < len(align) && align[j] == alignLeft {
				b.WriteString(cell)
				b.WriteString(pad)
			} else {
				b.WriteString(pad)
				b.WriteString(cell)
			}
		}
		lines[i] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

func displayWidth(s string) int {
	return len([]rune(s))
}

func nanValue() float64 {
	return math.NaN()
}

func formatShape(rows, cols int) string {
	return fmt.Sprintf("(%d, %d)", rows, cols)
}
