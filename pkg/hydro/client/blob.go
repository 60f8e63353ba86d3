package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Blob is a binary artifact stored under an office. Value is base64-encoded
// on the wire.
type Blob struct {
	OfficeID    string `json:"office-id"`
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	MediaTypeID string `json:"media-type-id,omitempty"`
	Value       string `json:"value,omitempty"`
}

// blobPage is the paged list response shape for blob catalogs.
type blobPage struct {
	Blobs []Blob `json:"blobs"`
}

// StoreBlob uploads a blob. When failIfExists is true the service rejects the
// store if a blob with the same ID already exists.
func (s *Session) StoreBlob(ctx context.Context, blob Blob, failIfExists bool) error {
	q := url.Values{}
	q.Set("fail-if-exists", strconv.FormatBool(failIfExists))
	return s.do(ctx, http.MethodPost, "blobs", q, blob, nil)
}

// GetBlob retrieves one blob's base64 value by ID.
func (s *Session) GetBlob(ctx context.Context, office, blobID string) (string, error) {
	q := url.Values{}
	q.Set("office", office)
	var blob Blob
	if err := s.do(ctx, http.MethodGet, "blobs/"+url.PathEscape(blobID), q, nil, &blob); err != nil {
		return "", err
	}
	return blob.Value, nil
}

// GetBlobs lists blobs for an office, optionally filtered by an id-like
// pattern. Values are not included in catalog responses.
func (s *Session) GetBlobs(ctx context.Context, office, blobIDLike string) ([]Blob, error) {
	q := url.Values{}
	if office != "" {
		q.Set("office", office)
	}
	if blobIDLike != "" {
		q.Set("like", blobIDLike)
	}
	var page blobPage
	if err := s.do(ctx, http.MethodGet, "blobs", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Blobs, nil
}
