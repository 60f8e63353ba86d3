package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CatalogEntry is one row of a locations catalog listing.
type CatalogEntry struct {
	Name   string `json:"name"`
	Office string `json:"office"`
	Kind   string `json:"kind,omitempty"`
}

type locationsCatalogPage struct {
	Entries []CatalogEntry `json:"entries"`
}

// Location payloads are passed through untyped: the copy commands move
// whatever the source instance returns without interpreting project-specific
// fields, so a map round-trips unknown attributes losslessly.
type Location map[string]interface{}

// Name returns the location's name attribute, or "" when absent.
func (l Location) Name() string {
	if v, ok := l["name"].(string); ok {
		return v
	}
	return ""
}

// Active reports whether the location is marked active. Locations with no
// active attribute are treated as active.
func (l Location) Active() bool {
	if v, ok := l["active"].(bool); ok {
		return v
	}
	return true
}

// GetLocationsCatalog lists locations for an office, optionally filtered by
// name pattern and location kind pattern.
func (s *Session) GetLocationsCatalog(ctx context.Context, office, like, kindLike string) ([]CatalogEntry, error) {
	q := url.Values{}
	q.Set("office", office)
	if like != "" {
		q.Set("like", like)
	}
	if kindLike != "" {
		q.Set("location-kind-like", kindLike)
	}
	var page locationsCatalogPage
	if err := s.do(ctx, http.MethodGet, "catalog/locations", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Entries, nil
}

// GetLocations retrieves full location payloads by name. An empty names slice
// retrieves every location for the office.
func (s *Session) GetLocations(ctx context.Context, office string, names []string) ([]Location, error) {
	q := url.Values{}
	q.Set("office", office)
	if len(names) > 0 {
		q.Set("names", strings.Join(names, "|"))
	}
	var page struct {
		Locations []Location `json:"locations"`
	}
	if err := s.do(ctx, http.MethodGet, "locations", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Locations, nil
}

// GetLocation retrieves one location payload by name.
func (s *Session) GetLocation(ctx context.Context, office, name string) (Location, error) {
	q := url.Values{}
	q.Set("office", office)
	var loc Location
	if err := s.do(ctx, http.MethodGet, "locations/"+url.PathEscape(name), q, nil, &loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// StoreLocation stores a location payload at this session's instance.
func (s *Session) StoreLocation(ctx context.Context, loc Location, failIfExists bool) error {
	q := url.Values{}
	q.Set("fail-if-exists", strconv.FormatBool(failIfExists))
	return s.do(ctx, http.MethodPost, "locations", q, loc, nil)
}

// LocationGroup is a named grouping of locations, passed through untyped like
// Location payloads.
type LocationGroup map[string]interface{}

// GetLocationGroups lists location groups for an office.
func (s *Session) GetLocationGroups(ctx context.Context, office string) ([]LocationGroup, error) {
	q := url.Values{}
	q.Set("office", office)
	q.Set("include-assigned", "true")
	var groups []LocationGroup
	if err := s.do(ctx, http.MethodGet, "location/group", q, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetLocationGroup retrieves one location group with its assigned locations.
func (s *Session) GetLocationGroup(ctx context.Context, office, categoryID, groupID string) (LocationGroup, error) {
	q := url.Values{}
	q.Set("office", office)
	q.Set("category-id", categoryID)
	var group LocationGroup
	if err := s.do(ctx, http.MethodGet, "location/group/"+url.PathEscape(groupID), q, nil, &group); err != nil {
		return nil, err
	}
	return group, nil
}

// StoreLocationGroup stores a location group at this session's instance.
func (s *Session) StoreLocationGroup(ctx context.Context, group LocationGroup, failIfExists bool) error {
	q := url.Values{}
	q.Set("fail-if-exists", strconv.FormatBool(failIfExists))
	return s.do(ctx, http.MethodPost, "location/group", q, group, nil)
}
