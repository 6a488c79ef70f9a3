package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edacli/internal/errors"
	"edacli/internal/shared/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Success(t *testing.T) {
	path := testutil.WriteCSV(t, "abc.csv", "a,b,c\n1,2,3\n4,,6\n7,8,9\n")

	code, stdout, stderr := runCLI(t, "-data", path)

	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Equal(t, "Dataset Shape: (3, 3)\n"+
		"\n"+
		"First few rows:\n"+
		"   a    b  c\n"+
		"0  1    2  3\n"+
		"1  4  NaN  6\n"+
		"2  7    8  9\n"+
		"\n"+
		"Missing Values:\n"+
		"a    0\n"+
		"b    1\n"+
		"c    0\n"+
		"dtype: int64\n", stdout)
	assert.Empty(t, stderr, "warn level keeps stderr quiet on success")
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantCode int
		wantErr  string
	}{
		{
			name: "missing dataset",
			args: func(t *testing.T) []string {
				return []string{"-data", filepath.Join(t.TempDir(), "Concrete_Data_Yeh.csv")}
			},
			wantCode: apperrors.ExitNoInput,
			wantErr:  "not found",
		},
		{
			name: "ragged row",
			args: func(t *testing.T) []string {
				return []string{"-data", testutil.WriteCSV(t, "bad.csv", "a,b\n1,2\n3\n")}
			},
			wantCode: apperrors.ExitDataErr,
			wantErr:  "line 3",
		},
		{
			name: "directory without datasets",
			args: func(t *testing.T) []string {
				return []string{"-data", t.TempDir()}
			},
			wantCode: apperrors.ExitNoInput,
			wantErr:  "dataset file in directory",
		},
		{
			name: "ragged row without extension",
			args: func(t *testing.T) []string {
				return []string{"-data", testutil.WriteCSV(t, "export", "a,b\n1,2,3\n")}
			},
			wantCode: apperrors.ExitDataErr,
			wantErr:  "line 2",
		},
		{
			name: "negative preview",
			args: func(t *testing.T) []string {
				return []string{"-data", testutil.WriteCSV(t, "ok.csv", "a\n1\n"), "-preview", "-1"}
			},
			wantCode: apperrors.ExitConfigError,
			wantErr:  "PreviewRows",
		},
		{
			name: "quote delimiter",
			args: func(t *testing.T) []string {
				return []string{"-data", testutil.WriteCSV(t, "ok.csv", "a\n1\n"), "-delimiter", `"`}
			},
			wantCode: apperrors.ExitConfigError,
			wantErr:  "Delimiter",
		},
		{
			name: "unknown flag",
			args: func(t *testing.T) []string {
				return []string{"-bogus"}
			},
			wantCode: apperrors.ExitUsage,
			wantErr:  "flag provided but not defined",
		},
		{
			name: "positional argument",
			args: func(t *testing.T) []string {
				return []string{"data.csv"}
			},
			wantCode: apperrors.ExitUsage,
			wantErr:  "unexpected arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args(t)...)

			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, stdout, "nothing is printed to stdout on failure")
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRun_DatasetDirectory(t *testing.T) {
	path := testutil.WriteCSV(t, "concrete.csv", "a,b\n1,2\n")

	code, stdout, stderr := runCLI(t, "-data", filepath.Dir(path))

	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "Dataset Shape: (1, 2)\n"), stdout)
}

func TestRun_FailureLoggedOnce(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	code, _, stderr := runCLI(t, "-data", missing, "-log-level", "debug")
	require.Equal(t, apperrors.ExitNoInput, code)

	var errorLines []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, `"level":"ERROR"`) {
			errorLines = append(errorLines, line)
		}
	}
	require.Len(t, errorLines, 1, stderr)
	assert.Contains(t, errorLines[0], `"msg":"Summary failed"`)
	assert.Contains(t, errorLines[0], `"trace_id"`)
	assert.Contains(t, stderr, `"msg":"File does not exist"`)
}

func TestRun_ErrorLineOnStderr(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	_, _, stderr := runCLI(t, "-data", missing)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "error: [NOT_FOUND]"), last)
	assert.Contains(t, last, missing)
}

func TestRun_HelpAndVersion(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, apperrors.ExitOK, code)
	assert.Contains(t, stderr, "Usage: summarize")

	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, apperrors.ExitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "summarize "))
}

func TestRun_Describe(t *testing.T) {
	path := testutil.WriteCSV(t, "concrete.csv", testutil.ConcreteSampleCSV)

	code, stdout, stderr := runCLI(t, "-data", path, "-describe", "-preview", "2")
	require.Equal(t, apperrors.ExitOK, code, stderr)

	assert.Contains(t, stdout, "Dataset Shape: (7, 9)")
	assert.Contains(t, stdout, "\nSummary Statistics:\n")
	assert.NotContains(t, stdout, "\n2  ", "only two preview rows")
}

func TestRun_NAFlags(t *testing.T) {
	path := testutil.WriteCSV(t, "na.csv", "x,y\n?,NA\n1,2\n")

	_, stdout, _ := runCLI(t, "-data", path, "-na", "?")
	assert.Contains(t, stdout, "x    1\ny    1\n")

	_, stdout, _ = runCLI(t, "-data", path, "-na", "?", "-no-default-na")
	assert.Contains(t, stdout, "x    1\ny    0\n")
}

func TestRun_DelimiterAndSheet(t *testing.T) {
	semicolon := testutil.WriteCSV(t, "semi.txt", "a;b\n1;2\n")
	code, stdout, stderr := runCLI(t, "-data", semicolon, "-delimiter", ";")
	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Contains(t, stdout, "Dataset Shape: (1, 2)")

	workbook := testutil.WriteXLSX(t, "data.xlsx", "Data", [][]string{{"a", "b"}, {"1", "2"}, {"3"}})
	code, stdout, stderr = runCLI(t, "-data", workbook, "-sheet", "Data")
	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Contains(t, stdout, "Dataset Shape: (2, 2)")
	assert.Contains(t, stdout, "b    1\n")
}

func TestRun_EnvironmentConfig(t *testing.T) {
	path := testutil.WriteCSV(t, "env.csv", "a\n1\n2\n3\n")
	t.Setenv("EDA_DATASET_PATH", path)
	t.Setenv("EDA_REPORT_PREVIEW_ROWS", "1")

	code, stdout, stderr := runCLI(t)
	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Contains(t, stdout, "Dataset Shape: (3, 1)")
	assert.Contains(t, stdout, "0  1\n\nMissing Values:")
}

func TestRun_ConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteFile(t, dir, "first.csv", "a\n1\n")
	second := testutil.WriteFile(t, dir, "second.csv", "a\n1\n2\n")
	cfgPath := testutil.WriteFile(t, dir, "eda.yaml", "dataset:\n  path: "+first+"\n")

	_, stdout, _ := runCLI(t, "-config", cfgPath)
	assert.Contains(t, stdout, "Dataset Shape: (1, 1)")

	_, stdout, _ = runCLI(t, "-config", cfgPath, "-data", second)
	assert.Contains(t, stdout, "Dataset Shape: (2, 1)")
}

func TestRun_TracingAndMetrics(t *testing.T) {
	path := testutil.WriteCSV(t, "data.csv", "a,b\n1,\n")
	metricsPath := filepath.Join(t.TempDir(), "textfile", "edacli.prom")

	code, stdout, stderr := runCLI(t, "-data", path, "-trace", "-metrics-textfile", metricsPath)
	require.Equal(t, apperrors.ExitOK, code, stderr)

	assert.Contains(t, stderr, "dataset.load")
	assert.Contains(t, stderr, "report.render")
	assert.NotContains(t, stdout, "dataset.load", "spans never reach stdout")

	content, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "eda_rows_loaded")
	assert.Contains(t, string(content), "eda_missing_cells")
	assert.Contains(t, string(content), `dataset="`+path+`"`)
}

func TestRun_LogLevelFlag(t *testing.T) {
	path := testutil.WriteCSV(t, "data.csv", "a\n1\n")

	code, _, stderr := runCLI(t, "-data", path, "-log-level", "info")
	require.Equal(t, apperrors.ExitOK, code)
	assert.Contains(t, stderr, `"msg":"Dataset loaded"`)
	assert.Contains(t, stderr, `"trace_id"`)
	assert.Contains(t, stderr, `"component":"loader"`)
}
