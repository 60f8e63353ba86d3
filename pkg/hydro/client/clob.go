package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Clob is a text artifact stored under an office.
type Clob struct {
	OfficeID    string `json:"office-id"`
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
}

type clobPage struct {
	Clobs []Clob `json:"clobs"`
}

// StoreClob uploads a clob. When failIfExists is true the service rejects the
// store if a clob with the same ID already exists.
func (s *Session) StoreClob(ctx context.Context, clob Clob, failIfExists bool) error {
	q := url.Values{}
	q.Set("fail-if-exists", strconv.FormatBool(failIfExists))
	return s.do(ctx, http.MethodPost, "clobs", q, clob, nil)
}

// GetClob retrieves one clob by ID, value included.
func (s *Session) GetClob(ctx context.Context, office, clobID string) (*Clob, error) {
	q := url.Values{}
	q.Set("office", office)
	var clob Clob
	if err := s.do(ctx, http.MethodGet, "clobs/"+url.PathEscape(clobID), q, nil, &clob); err != nil {
		return nil, err
	}
	return &clob, nil
}

// UpdateClob patches an existing clob. Only non-empty fields of the payload
// are applied when ignoreNulls is true.
func (s *Session) UpdateClob(ctx context.Context, clob Clob, ignoreNulls bool) error {
	q := url.Values{}
	q.Set("ignore-nulls", strconv.FormatBool(ignoreNulls))
	return s.do(ctx, http.MethodPatch, "clobs/"+url.PathEscape(clob.ID), q, clob, nil)
}

// DeleteClob removes one clob by ID.
func (s *Session) DeleteClob(ctx context.Context, office, clobID string) error {
	q := url.Values{}
	q.Set("office", office)
	return s.do(ctx, http.MethodDelete, "clobs/"+url.PathEscape(clobID), q, nil, nil)
}

// GetClobs lists clobs for an office, optionally filtered by an id-like
// pattern. Values are not included in catalog responses.
func (s *Session) GetClobs(ctx context.Context, office, clobIDLike string) ([]Clob, error) {
	q := url.Values{}
	if office != "" {
		q.Set("office", office)
	}
	if clobIDLike != "" {
		q.Set("like", clobIDLike)
	}
	var page clobPage
	if err := s.do(ctx, http.MethodGet, "clobs", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Clobs, nil
}
