package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/ingest"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func parsedFixture(rows map[int64][]string) *ingest.ParsedFile {
	return &ingest.ParsedFile{
		Header: []string{"timestamp", "colA"},
		Rows:   rows,
	}
}

func ptr(v float64) *float64 { return &v }

func TestBuild_UniformGrid(t *testing.T) {
	parsed := parsedFixture(map[int64][]string{
		0:   {"t0", "1"},
		60:  {"t1", "2"},
		120: {"t2", "3"},
	})
	specs := map[string]config.ColumnSpec{
		"flow": {Columns: "colA*2", Units: "cfs"},
	}

	built, err := Build(parsed, 60, specs)
	require.NoError(t, err)
	require.Len(t, built, 1)
	assert.Equal(t, "flow", built[0].Name)
	assert.Equal(t, "cfs", built[0].Units)
	assert.Equal(t, []client.TimeSeriesValue{
		{EpochMillis: 0, Value: ptr(2.0), Quality: QualityGood},
		{EpochMillis: 60000, Value: ptr(4.0), Quality: QualityGood},
		{EpochMillis: 120000, Value: ptr(6.0), Quality: QualityGood},
	}, built[0].Values)
}

func TestBuild_GapEmitsNullMissing(t *testing.T) {
	parsed := parsedFixture(map[int64][]string{
		0:   {"t0", "1"},
		120: {"t2", "3"},
	})
	specs := map[string]config.ColumnSpec{
		"flow": {Columns: "colA*2", Units: "cfs"},
	}

	built, err := Build(parsed, 60, specs)
	require.NoError(t, err)
	assert.Equal(t, []client.TimeSeriesValue{
		{EpochMillis: 0, Value: ptr(2.0), Quality: QualityGood},
		{EpochMillis: 60000, Value: nil, Quality: QualityMissing},
		{EpochMillis: 120000, Value: ptr(6.0), Quality: QualityGood},
	}, built[0].Values)
}

func TestBuild_UnevaluableRowIsMissing(t *testing.T) {
	parsed := parsedFixture(map[int64][]string{
		0:  {"t0", "1"},
		60: {"t1", "oops"},
	})
	specs := map[string]config.ColumnSpec{
		"flow": {Columns: "colA*2"},
	}

	built, err := Build(parsed, 60, specs)
	require.NoError(t, err)
	assert.Nil(t, built[0].Values[1].Value)
	assert.Equal(t, QualityMissing, built[0].Values[1].Quality)
}

func TestBuild_GridCompleteness(t *testing.T) {
	parsed := parsedFixture(map[int64][]string{
		0:    {"t", "1"},
		3600: {"t", "2"},
		9000: {"t", "3"},
	})
	specs := map[string]config.ColumnSpec{"s": {Columns: "colA"}}

	built, err := Build(parsed, 900, specs)
	require.NoError(t, err)

	values := built[0].Values
	assert.Len(t, values, int((9000-0)/900)+1)
	for i := 1; i < len(values); i++ {
		assert.Equal(t, values[i-1].EpochMillis+900*1000, values[i].EpochMillis,
			"epochs must be strictly increasing by one interval")
	}
}

func TestBuild_RoundsHalfToEven(t *testing.T) {
	parsed := parsedFixture(map[int64][]string{
		0: {"t", "0.125"},
	})
	one := 1
	specs := map[string]config.ColumnSpec{
		"default_precision": {Columns: "colA"},
		"one_place":         {Columns: "colA", Precision: &one},
	}

	built, err := Build(parsed, 60, specs)
	require.NoError(t, err)
	require.Len(t, built, 2)

	// Sorted by name: default_precision first.
	assert.InDelta(t, 0.12, *built[0].Values[0].Value, 1e-9)
	assert.InDelta(t, 0.1, *built[1].Values[0].Value, 1e-9)
}

func TestBuild_MultipleSeriesSortedByName(t *testing.T) {
	parsed := parsedFixture(map[int64][]string{0: {"t", "2"}})
	specs := map[string]config.ColumnSpec{
		"zeta":  {Columns: "colA"},
		"alpha": {Columns: "colA*2"},
	}

	built, err := Build(parsed, 60, specs)
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, "alpha", built[0].Name)
	assert.Equal(t, "zeta", built[1].Name)
}

func TestBuild_Errors(t *testing.T) {
	parsed := parsedFixture(map[int64][]string{0: {"t", "1"}})
	specs := map[string]config.ColumnSpec{"s": {Columns: "colA"}}

	_, err := Build(parsed, 0, specs)
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindBuilder))

	_, err = Build(parsedFixture(map[int64][]string{}), 60, specs)
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindBuilder))

	_, err = Build(nil, 60, specs)
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindBuilder))
}
