// Package exporter renders dataset summaries as plain text.
//
// A Report writes the blocks produced for a dataprocessing.Table in a fixed
// order: the shape, a preview of the first rows, the missing value counts
// and, when enabled, summary statistics. Tables are right-aligned with a
// left-aligned index, float columns share one precision and missing cells
// print as NaN.
//
//	report := exporter.NewReport(os.Stdout)
//	if err := report.WriteSummary(table, exporter.DefaultSummaryOptions()); err != nil {
//	    return err
//	}
package exporter
