package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// GroupAssignment binds one time-series ID into a group, optionally under an
// alias used by downstream file processors.
type GroupAssignment struct {
	TimeSeriesID string `json:"timeseries-id"`
	Alias        string `json:"alias-id,omitempty"`
	OfficeID     string `json:"office-id,omitempty"`
}

// TimeSeriesGroup is a named grouping of time-series IDs under a category.
type TimeSeriesGroup struct {
	OfficeID         string            `json:"office-id"`
	ID               string            `json:"id"`
	Description      string            `json:"description,omitempty"`
	CategoryID       string            `json:"category-id,omitempty"`
	CategoryOfficeID string            `json:"category-office-id,omitempty"`
	AssignedSeries   []GroupAssignment `json:"assigned-time-series,omitempty"`
}

// GetTimeSeriesGroup retrieves one time-series group with its assignments.
func (s *Session) GetTimeSeriesGroup(ctx context.Context, office, categoryID, groupID string) (*TimeSeriesGroup, error) {
	q := url.Values{}
	q.Set("office", office)
	if categoryID != "" {
		q.Set("category-id", categoryID)
	}
	var group TimeSeriesGroup
	if err := s.do(ctx, http.MethodGet, "timeseries/group/"+url.PathEscape(groupID), q, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListTimeSeriesGroups lists the time-series groups visible to an office.
func (s *Session) ListTimeSeriesGroups(ctx context.Context, office string) ([]TimeSeriesGroup, error) {
	q := url.Values{}
	q.Set("office", office)
	var groups []TimeSeriesGroup
	if err := s.do(ctx, http.MethodGet, "timeseries/group", q, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// StoreTimeSeriesGroup stores a time-series group, replacing its assignment
// list when the group already exists and failIfExists is false.
func (s *Session) StoreTimeSeriesGroup(ctx context.Context, group TimeSeriesGroup, failIfExists bool) error {
	q := url.Values{}
	q.Set("fail-if-exists", strconv.FormatBool(failIfExists))
	return s.do(ctx, http.MethodPost, "timeseries/group", q, group, nil)
}
