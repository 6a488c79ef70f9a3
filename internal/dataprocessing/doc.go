// Package dataprocessing loads tabular datasets and answers the summary
// questions asked of them: shape, a preview of the first rows, missing
// values per column and basic statistics for numeric columns.
//
// Delimited text files (.csv, .tsv, .txt) are read with encoding/csv and
// .xlsx workbooks with excelize. Either way the rows end up in a gota
// DataFrame wrapped by Table, whose column order always follows the header.
//
// # Usage
//
//	table, err := dataprocessing.Load(ctx, "data/raw/Concrete_Data_Yeh.csv",
//	    dataprocessing.WithNAValues("?"),
//	)
//	if err != nil {
//	    return err
//	}
//	rows, cols := table.Shape()
//	head := table.Head()
//	missing := table.CountMissing()
//
// # Missing Values
//
// A cell is missing when its text is empty or equals one of DefaultNAValues
// (plus any WithNAValues tokens). WithDefaultNA(false) keeps only the
// empty string and NaN. The same rule drives type inference, Preview and
// CountMissing.
//
// # Errors
//
// Load returns *errors.AppError values: NOT_FOUND when the path does not
// exist, PARSING for malformed content or ragged rows (the line number is
// in the error context) and VALIDATION for directories or unsupported
// extensions.
package dataprocessing
