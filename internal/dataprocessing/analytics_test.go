package dataprocessing

import (
	"math"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edacli/internal/shared/testutil"
)

func TestTable_Describe(t *testing.T) {
	table := loadString(t, "label,age,strength\nx,28,79.99\ny,28,61.89\nz,270,\nw,365,41.05\n")

	got, err := table.Describe()
	require.NoError(t, err)
	require.Len(t, got, 2, "non-numeric columns are skipped")

	age := got[0]
	assert.Equal(t, "age", age.Column)
	assert.Equal(t, series.Int, age.Type)
	assert.Equal(t, 4, age.Count)
	assert.InDelta(t, 172.75, age.Mean, 1e-9)
	assert.InDelta(t, 28, age.Min, 1e-9)
	assert.InDelta(t, 28, age.P25, 1e-9)
	assert.InDelta(t, 149, age.P50, 1e-9)
	assert.InDelta(t, 293.75, age.P75, 1e-9)
	assert.InDelta(t, 365, age.Max, 1e-9)
	assert.InDelta(t, 171.5836, age.Std, 1e-3)

	strength := got[1]
	assert.Equal(t, "strength", strength.Column)
	assert.Equal(t, series.Float, strength.Type)
	assert.Equal(t, 3, strength.Count, "missing cells are excluded")
	assert.InDelta(t, 61.89, strength.P50, 1e-9)
}

func TestTable_DescribeSingleValue(t *testing.T) {
	table := loadString(t, "v\n5\n")

	got, err := table.Describe()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
	assert.True(t, math.IsNaN(got[0].Std))
	assert.InDelta(t, 5, got[0].P25, 1e-9)
	assert.InDelta(t, 5, got[0].P75, 1e-9)
}

func TestTable_DescribeConcreteSample(t *testing.T) {
	table := loadString(t, testutil.ConcreteSampleCSV)

	got, err := table.Describe()
	require.NoError(t, err)
	assert.Len(t, got, len(testutil.ConcreteHeader))
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 4, quantile(sorted, 1), 1e-9)
}
