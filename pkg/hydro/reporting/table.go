package reporting

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

// ValueSource supplies the latest values a report needs. *client.Session
// satisfies it through SessionSource.
type ValueSource interface {
	LatestTimeSeriesValue(ctx context.Context, office, tsid, unit string, begin, end time.Time) (*float64, error)
	LatestLevelValue(ctx context.Context, office, levelID, unit string, begin, end time.Time) (*float64, error)
	LocationName(ctx context.Context, office, locationID string) string
}

// Cell is one rendered table cell.
type Cell struct {
	Text string
	Href string
}

// Row is one project line of the report.
type Row struct {
	Project     string
	DisplayName string
	Href        string
	Cells       []Cell
}

// Table is the fully resolved report payload handed to the renderer.
type Table struct {
	Report    ReportSpec
	Header    *TableHeaderSpec
	Columns   []ColumnSpec
	Rows      []Row
	Office    string
	Begin     time.Time
	End       time.Time
	Generated time.Time
}

// BuildTable resolves every project/column pair to its latest value inside
// [begin, end]. Fetch failures degrade to the column's missing placeholder;
// the report always renders.
func BuildTable(ctx context.Context, cfg *Config, src ValueSource, begin, end time.Time) (*Table, error) {
	table := &Table{
		Report:    cfg.Report,
		Header:    cfg.Header,
		Columns:   cfg.Columns,
		Office:    cfg.Office,
		Begin:     begin,
		End:       end,
		Generated: time.Now().UTC(),
	}

	for _, project := range cfg.Projects {
		office := project.Office
		if office == "" {
			office = cfg.Office
		}
		row := Row{
			Project:     project.LocationID,
			DisplayName: src.LocationName(ctx, office, project.LocationID),
			Href:        project.Href,
		}
		if row.DisplayName == "" {
			row.DisplayName = project.LocationID
		}

		for _, col := range cfg.Columns {
			row.Cells = append(row.Cells, buildCell(ctx, src, col, project.LocationID, begin, end))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func buildCell(ctx context.Context, src ValueSource, col ColumnSpec, project string, begin, end time.Time) Cell {
	var (
		value *float64
		err   error
		ref   string
	)
	if col.TSID != "" {
		ref = expandTemplate(col.TSID, project)
		value, err = src.LatestTimeSeriesValue(ctx, col.Office, ref, col.Unit, begin, end)
	} else {
		ref = expandTemplate(col.Level, project)
		value, err = src.LatestLevelValue(ctx, col.Office, ref, col.Unit, begin, end)
	}
	if err != nil {
		logger.Warnf("could not fetch %s: %v", ref, err)
		value = nil
	}

	cell := Cell{Text: formatValue(value, col.Precision, col.Missing, col.Undefined)}
	if col.Href != "" {
		cell.Href = expandTemplate(col.Href, project)
	}
	return cell
}

// formatValue renders a value with the column's precision. nil becomes the
// missing placeholder, NaN and infinities the undefined one.
func formatValue(v *float64, precision *int, missing, undefined string) string {
	if v == nil {
		return missing
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return undefined
	}
	if precision == nil {
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return fmt.Sprintf("%.*f", *precision, *v)
}

// SessionSource adapts a client.Session to the ValueSource interface.
type SessionSource struct {
	Session *client.Session
}

// LatestTimeSeriesValue returns the last non-null value of a series in the
// window, or nil when the series has none.
func (s SessionSource) LatestTimeSeriesValue(ctx context.Context, office, tsid, unit string, begin, end time.Time) (*float64, error) {
	ts, err := s.Session.GetTimeSeries(ctx, office, tsid, unit, begin, end)
	if err != nil {
		return nil, err
	}
	var latest *float64
	for _, v := range ts.Values {
		if v.Value != nil {
			latest = v.Value
		}
	}
	return latest, nil
}

// LatestLevelValue returns the last value of a location level in the window.
func (s SessionSource) LatestLevelValue(ctx context.Context, office, levelID, unit string, begin, end time.Time) (*float64, error) {
	return s.Session.GetLevelLatest(ctx, office, levelID, unit, begin, end)
}

// LocationName resolves a location's public name, falling back to the bare
// ID when the lookup fails.
func (s SessionSource) LocationName(ctx context.Context, office, locationID string) string {
	loc, err := s.Session.GetLocation(ctx, office, locationID)
	if err != nil {
		return locationID
	}
	if name := loc.Name(); name != "" {
		return name
	}
	return locationID
}
