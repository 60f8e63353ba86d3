package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

// Store rules governing how a submitted series merges with existing data.
const (
	StoreRuleReplaceAll         = "REPLACE_ALL"
	StoreRuleDoNotReplace       = "DO_NOT_REPLACE"
	StoreRuleReplaceMissingOnly = "REPLACE_MISSING_VALUES_ONLY"
	StoreRuleReplaceWithNonMiss = "REPLACE_WITH_NON_MISSING"
	StoreRuleDeleteInsert       = "DELETE_INSERT"
)

// TimeSeriesValue is one (time, value, quality) triple on the wire.
// It marshals to the service's positional array form: [epochMillis, value, quality].
// Value is nil for missing points.
type TimeSeriesValue struct {
	EpochMillis int64
	Value       *float64
	Quality     int
}

// MarshalJSON encodes the triple as a three-element JSON array.
func (v TimeSeriesValue) MarshalJSON() ([]byte, error) {
	arr := [3]interface{}{v.EpochMillis, v.Value, v.Quality}
	return json.Marshal(arr)
}

// UnmarshalJSON decodes the service's positional array form.
// The value slot may be null for missing points, so the array is decoded
// loosely before picking fields apart.
func (v *TimeSeriesValue) UnmarshalJSON(data []byte) error {
	var loose []interface{}
	if err := json.Unmarshal(data, &loose); err != nil {
		return err
	}
	if len(loose) > 0 {
		if millis, ok := loose[0].(float64); ok {
			v.EpochMillis = int64(millis)
		}
	}
	if len(loose) > 1 && loose[1] != nil {
		if val, ok := loose[1].(float64); ok {
			f := val
			v.Value = &f
		}
	}
	if len(loose) > 2 {
		if q, ok := loose[2].(float64); ok {
			v.Quality = int(q)
		}
	}
	return nil
}

// TimeSeries is a time-series payload as stored or retrieved.
type TimeSeries struct {
	OfficeID string            `json:"office-id"`
	Name     string            `json:"name"`
	Units    string            `json:"units,omitempty"`
	Values   []TimeSeriesValue `json:"values"`
}

// StoreTimeSeries stores a time-series payload with the given store rule.
// An empty storeRule defaults to REPLACE_ALL, a full overwrite of the
// addressed range.
func (s *Session) StoreTimeSeries(ctx context.Context, ts TimeSeries, storeRule string) error {
	if ts.Name == "" {
		return exception.Newf(exception.KindSubmission, moduleName, "time-series payload has no name")
	}
	if storeRule == "" {
		storeRule = StoreRuleReplaceAll
	}
	q := url.Values{}
	q.Set("store-rule", storeRule)
	if err := s.do(ctx, http.MethodPost, "timeseries", q, ts, nil); err != nil {
		return exception.New(exception.KindSubmission, moduleName, "failed to store time-series "+ts.Name, err)
	}
	return nil
}

// GetTimeSeries retrieves one time-series over [begin, end].
func (s *Session) GetTimeSeries(ctx context.Context, office, name, unit string, begin, end time.Time) (*TimeSeries, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("office", office)
	if unit != "" {
		q.Set("unit", unit)
	}
	q.Set("begin", begin.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))

	var ts TimeSeries
	if err := s.do(ctx, http.MethodGet, "timeseries", q, nil, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

// GetLevelLatest retrieves a location level as a time-series over [begin, end]
// and returns its most recent value, or nil when the window holds none.
func (s *Session) GetLevelLatest(ctx context.Context, office, levelID, unit string, begin, end time.Time) (*float64, error) {
	q := url.Values{}
	q.Set("office", office)
	if unit != "" {
		q.Set("unit", unit)
	}
	q.Set("begin", begin.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))

	var ts TimeSeries
	if err := s.do(ctx, http.MethodGet, "levels/"+url.PathEscape(levelID)+"/timeseries", q, nil, &ts); err != nil {
		return nil, err
	}
	for i := len(ts.Values) - 1; i >= 0; i-- {
		if ts.Values[i].Value != nil {
			return ts.Values[i].Value, nil
		}
	}
	return nil, nil
}
