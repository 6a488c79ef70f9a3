// Package shared holds code used by more than one internal package without
// belonging to any of them.
//
// The testutil subpackage provides dataset fixtures (CSV and XLSX files
// written under t.TempDir) and a buffered slog handler for asserting on log
// records.
package shared
