package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// TimeSeriesIdentifier is the registration record for a time-series ID.
type TimeSeriesIdentifier struct {
	OfficeID              string  `json:"office-id"`
	TimeSeriesID          string  `json:"time-series-id"`
	TimezoneName          string  `json:"timezone-name,omitempty"`
	IntervalOffsetMinutes float64 `json:"interval-offset-minutes,omitempty"`
	Active                bool    `json:"active"`
}

// LocationID returns the location segment of the six-part time-series ID
// (Location.Param.Type.Interval.Duration.Version), or the whole ID when it
// has no dot.
func (t TimeSeriesIdentifier) LocationID() string {
	for i := 0; i < len(t.TimeSeriesID); i++ {
		if t.TimeSeriesID[i] == '.' {
			return t.TimeSeriesID[:i]
		}
	}
	return t.TimeSeriesID
}

type identifierPage struct {
	Descriptors []TimeSeriesIdentifier `json:"time-series-identifiers"`
}

// GetTimeSeriesIdentifiers lists registered time-series identifiers for an
// office, optionally filtered by a regex on the full six-part ID.
func (s *Session) GetTimeSeriesIdentifiers(ctx context.Context, office, idRegex string) ([]TimeSeriesIdentifier, error) {
	q := url.Values{}
	q.Set("office", office)
	if idRegex != "" {
		q.Set("timeseries-id-regex", idRegex)
	}
	var page identifierPage
	if err := s.do(ctx, http.MethodGet, "timeseries/identifier-descriptor", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Descriptors, nil
}

// StoreTimeSeriesIdentifier registers a time-series identifier at this
// session's instance.
func (s *Session) StoreTimeSeriesIdentifier(ctx context.Context, id TimeSeriesIdentifier, failIfExists bool) error {
	q := url.Values{}
	q.Set("fail-if-exists", strconv.FormatBool(failIfExists))
	return s.do(ctx, http.MethodPost, "timeseries/identifier-descriptor", q, id, nil)
}
