package load

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func TestEndpointsValidateRejectsIdenticalEndpoints(t *testing.T) {
	e := Endpoints{
		SourceAPIRoot: "https://cda.example.com/cwms-data",
		SourceOffice:  "SWT",
		TargetAPIRoot: "https://cda.example.com/cwms-data",
		TargetOffice:  "SWT",
	}
	err := e.Validate()
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestEndpointsValidateNormalizesBeforeComparing(t *testing.T) {
	// Case and trailing-slash differences still address the same endpoint.
	e := Endpoints{
		SourceAPIRoot: "HTTPS://CDA.Example.com/cwms-data/",
		SourceOffice:  "swt",
		TargetAPIRoot: "https://cda.example.com/cwms-data",
		TargetOffice:  "SWT",
	}
	err := e.Validate()
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestEndpointsValidateSameRootDifferentOffice(t *testing.T) {
	e := Endpoints{
		SourceAPIRoot: "https://cda.example.com/cwms-data",
		SourceOffice:  "SWT",
		TargetAPIRoot: "https://cda.example.com/cwms-data",
		TargetOffice:  "SWL",
	}
	assert.NoError(t, e.Validate())
}

func TestEndpointsValidateDistinctRoots(t *testing.T) {
	e := Endpoints{
		SourceAPIRoot: "https://cda.example.com/cwms-data",
		SourceOffice:  "SWT",
		TargetAPIRoot: "https://localhost:8444/cwms-data",
		TargetOffice:  "SWT",
	}
	assert.NoError(t, e.Validate())
}

func newCopySession(t *testing.T, office string, handler http.HandlerFunc) *client.Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := client.NewSession(config.SessionConfig{APIRoot: srv.URL, Office: office})
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	_ = json.NewEncoder(w).Encode(v)
}

func TestCopyTimeSeriesIdentifiersFiltersByTargetCatalog(t *testing.T) {
	source := newCopySession(t, "SWT", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/timeseries/identifier-descriptor":
			writeJSON(w, map[string]interface{}{
				"time-series-identifiers": []map[string]interface{}{
					{"office-id": "SWT", "time-series-id": "KEYS.Elev.Inst.1Hour.0.Ccp-Rev", "active": true},
					{"office-id": "SWT", "time-series-id": "PENS.Elev.Inst.1Hour.0.Ccp-Rev", "active": true},
				},
			})
		case "/catalog/locations":
			// The source knows both locations; its catalog must not drive
			// what gets stored.
			writeJSON(w, map[string]interface{}{
				"entries": []map[string]string{{"name": "KEYS"}, {"name": "PENS"}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	var stored []string
	target := newCopySession(t, "SWT", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/catalog/locations":
			writeJSON(w, map[string]interface{}{
				"entries": []map[string]string{{"name": "PENS"}},
			})
		case r.URL.Path == "/timeseries/identifier-descriptor" && r.Method == http.MethodPost:
			var id client.TimeSeriesIdentifier
			if err := json.NewDecoder(r.Body).Decode(&id); err != nil {
				t.Errorf("bad identifier payload: %v", err)
			}
			stored = append(stored, id.TimeSeriesID)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})

	res, err := NewRunner(source, target).CopyTimeSeriesIdentifiers(context.Background(), "", false)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Fetched)
	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, []string{"PENS.Elev.Inst.1Hour.0.Ccp-Rev"}, stored)
}

func TestCopyTimeSeriesIdentifiersEmptyTargetCatalogStoresNothing(t *testing.T) {
	source := newCopySession(t, "SWT", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/timeseries/identifier-descriptor":
			writeJSON(w, map[string]interface{}{
				"time-series-identifiers": []map[string]interface{}{
					{"office-id": "SWT", "time-series-id": "KEYS.Elev.Inst.1Hour.0.Ccp-Rev", "active": true},
				},
			})
		default:
			http.NotFound(w, r)
		}
	})

	posts := 0
	target := newCopySession(t, "SWT", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/catalog/locations":
			writeJSON(w, map[string]interface{}{"entries": []map[string]string{}})
		case r.Method == http.MethodPost:
			posts++
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})

	res, err := NewRunner(source, target).CopyTimeSeriesIdentifiers(context.Background(), "", false)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Fetched)
	assert.Equal(t, 0, res.Stored)
	assert.Equal(t, 0, posts)
}

func TestNormalizeRoot(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://cda.example.com/cwms-data/", "https://cda.example.com/cwms-data"},
		{"HTTPS://CDA.EXAMPLE.COM/cwms-data", "https://cda.example.com/cwms-data"},
		{"https://cda.example.com/CWMS-Data", "https://cda.example.com/CWMS-Data"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeRoot(tt.raw), tt.raw)
	}
}
