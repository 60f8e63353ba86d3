// Package client is a typed REST client for the hydrologic data service
// ("CDA"). It covers the operations hydrocli needs: time-series storage and
// retrieval, blobs, clobs, locations, location groups, time-series
// identifiers, and time-series groups.
//
// The client is deliberately thin: one HTTP request per operation, no retries,
// no pagination. Callers own containment of failures.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "client"

// Session holds an initialized connection to one data-service instance.
// A Session is safe for sequential reuse across commands; hydrocli never
// issues concurrent calls on one Session.
type Session struct {
	apiRoot string
	apiKey  string
	office  string
	httpc   *http.Client
}

// NewSession creates a Session from the given session settings.
// The API root is required; the API key may be empty for read-only use.
func NewSession(cfg config.SessionConfig) (*Session, error) {
	if cfg.APIRoot == "" {
		return nil, exception.Newf(exception.KindConfig, moduleName,
			"data-service API root is not configured (set session.api_root or %s)", config.EnvAPIRoot)
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		logger.Warnf("TLS certificate verification is DISABLED. Use for testing only.")
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}

	return &Session{
		apiRoot: strings.TrimRight(cfg.APIRoot, "/"),
		apiKey:  cfg.APIKey,
		office:  cfg.Office,
		httpc: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Office returns the configured default office identifier.
func (s *Session) Office() string {
	return s.office
}

// APIRoot returns the root URL this session talks to.
func (s *Session) APIRoot() string {
	return s.apiRoot
}

// ViewURL builds a browser-friendly URL for the given resource path and query.
// Used in log output after successful stores.
func (s *Session) ViewURL(path string, query url.Values) string {
	u := s.apiRoot + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes one request against the data service. body (when non-nil) is
// JSON-encoded; out (when non-nil) receives the decoded JSON response.
func (s *Session) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	u := s.apiRoot + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return exception.New(exception.KindClient, moduleName, "failed to encode request payload", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return exception.New(exception.KindClient, moduleName, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" && method != http.MethodGet {
		req.Header.Set("Authorization", "apikey "+s.apiKey)
	}

	logger.Debugf("%s %s", method, u)
	resp, err := s.httpc.Do(req)
	if err != nil {
		return exception.New(exception.KindClient, moduleName, fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = resp.Status
		}
		return exception.Newf(exception.KindClient, moduleName,
			"%s %s returned status %d: %s", method, path, resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return exception.New(exception.KindClient, moduleName, "failed to decode response", err)
		}
	} else {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return nil
}
