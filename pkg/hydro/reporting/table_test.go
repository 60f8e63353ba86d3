package reporting

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tsValues    map[string]*float64
	levelValues map[string]*float64
	names       map[string]string
	failFor     map[string]bool
}

func (f *fakeSource) LatestTimeSeriesValue(_ context.Context, _, tsid, _ string, _, _ time.Time) (*float64, error) {
	if f.failFor[tsid] {
		return nil, errors.New("boom")
	}
	return f.tsValues[tsid], nil
}

func (f *fakeSource) LatestLevelValue(_ context.Context, _, levelID, _ string, _, _ time.Time) (*float64, error) {
	if f.failFor[levelID] {
		return nil, errors.New("boom")
	}
	return f.levelValues[levelID], nil
}

func (f *fakeSource) LocationName(_ context.Context, _, locationID string) string {
	return f.names[locationID]
}

func ptr(v float64) *float64 { return &v }

func reportWindow() (time.Time, time.Time) {
	end := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	return end.Add(-24 * time.Hour), end
}

func TestBuildTableExpandsTemplatesPerProject(t *testing.T) {
	one := 1
	cfg := &Config{
		Office:   "SWT",
		Projects: []ProjectSpec{{LocationID: "KEYS"}, {LocationID: "PENS"}},
		Columns: []ColumnSpec{
			{
				Title: "Elev", TSID: "{project}.Elev.Inst.1Hour.0.Ccp-Rev",
				Office: "SWT", Precision: &one,
				Missing: DefaultMissing, Undefined: DefaultUndefined,
			},
			{
				Title: "Top of Flood", Level: "{project}.Elev.Inst.0.Top of Flood",
				Office: "SWT", Precision: &one,
				Missing: DefaultMissing, Undefined: DefaultUndefined,
			},
		},
	}
	src := &fakeSource{
		tsValues: map[string]*float64{
			"KEYS.Elev.Inst.1Hour.0.Ccp-Rev": ptr(723.46),
			"PENS.Elev.Inst.1Hour.0.Ccp-Rev": ptr(612.0),
		},
		levelValues: map[string]*float64{
			"KEYS.Elev.Inst.0.Top of Flood": ptr(754.0),
		},
		names: map[string]string{"KEYS": "Keystone Lake"},
	}

	begin, end := reportWindow()
	table, err := BuildTable(context.Background(), cfg, src, begin, end)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Keystone Lake", table.Rows[0].DisplayName)
	assert.Equal(t, "PENS", table.Rows[1].DisplayName)
	assert.Equal(t, "723.5", table.Rows[0].Cells[0].Text)
	assert.Equal(t, "754.0", table.Rows[0].Cells[1].Text)
	assert.Equal(t, "612.0", table.Rows[1].Cells[0].Text)
	assert.Equal(t, DefaultMissing, table.Rows[1].Cells[1].Text)
}

func TestBuildTableFetchFailureDegradesToMissing(t *testing.T) {
	cfg := &Config{
		Office:   "SWT",
		Projects: []ProjectSpec{{LocationID: "KEYS"}},
		Columns: []ColumnSpec{{
			Title: "Elev", TSID: "{project}.Elev.Inst.1Hour.0.Ccp-Rev",
			Office: "SWT", Missing: DefaultMissing, Undefined: DefaultUndefined,
		}},
	}
	src := &fakeSource{
		failFor: map[string]bool{"KEYS.Elev.Inst.1Hour.0.Ccp-Rev": true},
		names:   map[string]string{},
	}

	begin, end := reportWindow()
	table, err := BuildTable(context.Background(), cfg, src, begin, end)
	require.NoError(t, err)
	assert.Equal(t, DefaultMissing, table.Rows[0].Cells[0].Text)
}

func TestBuildTableCellHrefExpansion(t *testing.T) {
	cfg := &Config{
		Office:   "SWT",
		Projects: []ProjectSpec{{LocationID: "KEYS", Href: "https://example.com/KEYS"}},
		Columns: []ColumnSpec{{
			Title: "Elev", TSID: "{project}.Elev.Inst.1Hour.0.Ccp-Rev",
			Office: "SWT", Href: "https://example.com/plot/{project}",
			Missing: DefaultMissing, Undefined: DefaultUndefined,
		}},
	}
	src := &fakeSource{
		tsValues: map[string]*float64{"KEYS.Elev.Inst.1Hour.0.Ccp-Rev": ptr(1.0)},
		names:    map[string]string{},
	}

	begin, end := reportWindow()
	table, err := BuildTable(context.Background(), cfg, src, begin, end)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/KEYS", table.Rows[0].Href)
	assert.Equal(t, "https://example.com/plot/KEYS", table.Rows[0].Cells[0].Href)
}

func TestFormatValue(t *testing.T) {
	two := 2
	tests := []struct {
		name      string
		value     *float64
		precision *int
		want      string
	}{
		{"nil is missing", nil, &two, DefaultMissing},
		{"nan is undefined", ptr(math.NaN()), &two, DefaultUndefined},
		{"inf is undefined", ptr(math.Inf(1)), &two, DefaultUndefined},
		{"fixed precision", ptr(723.456), &two, "723.46"},
		{"no precision keeps shortest form", ptr(723.5), nil, "723.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value, tt.precision, DefaultMissing, DefaultUndefined))
		})
	}
}

func TestRenderProducesHTMLTable(t *testing.T) {
	begin, end := reportWindow()
	table := &Table{
		Report: ReportSpec{District: "Tulsa District", Name: "Lake Report"},
		Columns: []ColumnSpec{
			{Title: "Elev"},
			{Title: "Flow"},
		},
		Rows: []Row{{
			Project:     "KEYS",
			DisplayName: "Keystone Lake",
			Href:        "https://example.com/KEYS",
			Cells:       []Cell{{Text: "723.5"}, {Text: DefaultMissing}},
		}},
		Office:    "SWT",
		Begin:     begin,
		End:       end,
		Generated: end,
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, table))
	html := buf.String()

	assert.Contains(t, html, "Tulsa District Lake Report")
	assert.Contains(t, html, "Keystone Lake")
	assert.Contains(t, html, "723.5")
	assert.Contains(t, html, DefaultMissing)
	assert.Contains(t, html, `href="https://example.com/KEYS"`)
	// no custom header, so the fallback row names the columns
	assert.Contains(t, html, "<th>Elev</th>")
	assert.Contains(t, html, "<th>Flow</th>")
}

func TestRenderCustomHeaderSpans(t *testing.T) {
	begin, end := reportWindow()
	table := &Table{
		Report: ReportSpec{District: "SWT", Name: "Daily Report"},
		Header: &TableHeaderSpec{
			Project: HeaderCellSpec{Text: "Project"},
			Rows: [][]HeaderCellSpec{
				{{Text: "Elevation", Colspan: 2}},
				{{Text: "Current"}, {Text: "Top of Flood"}},
			},
		},
		Columns:   []ColumnSpec{{Title: "Current"}, {Title: "Top of Flood"}},
		Office:    "SWT",
		Begin:     begin,
		End:       end,
		Generated: end,
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, table))
	html := buf.String()

	assert.Contains(t, html, `colspan="2"`)
	assert.Contains(t, html, `rowspan="2"`) // project column spans both header rows
	assert.Contains(t, html, "Elevation")
	assert.Equal(t, 1, strings.Count(html, "Top of Flood"))
}
