package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

// newTestSession points a session at a test server and captures each request.
func newTestSession(t *testing.T, handler http.HandlerFunc) (*Session, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewSession(config.SessionConfig{
		APIRoot: srv.URL + "/",
		APIKey:  "test-key",
		Office:  "SWT",
	})
	require.NoError(t, err)
	return s, srv
}

func TestNewSessionRequiresAPIRoot(t *testing.T) {
	_, err := NewSession(config.SessionConfig{})
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestStoreTimeSeriesRequest(t *testing.T) {
	var (
		gotPath  string
		gotQuery url.Values
		gotAuth  string
		gotBody  []byte
	)
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	v := 2.0
	ts := TimeSeries{
		OfficeID: "SWT",
		Name:     "KEYS.Elev.Inst.1Hour.0.Ccp-Rev",
		Units:    "ft",
		Values: []TimeSeriesValue{
			{EpochMillis: 0, Value: &v, Quality: 3},
			{EpochMillis: 60000, Value: nil, Quality: 5},
		},
	}
	require.NoError(t, s.StoreTimeSeries(context.Background(), ts, ""))

	assert.Equal(t, "/timeseries", gotPath)
	assert.Equal(t, StoreRuleReplaceAll, gotQuery.Get("store-rule"))
	assert.Equal(t, "apikey test-key", gotAuth)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "SWT", payload["office-id"])
	values, ok := payload["values"].([]interface{})
	require.True(t, ok)
	require.Len(t, values, 2)
	assert.Equal(t, []interface{}{float64(0), 2.0, float64(3)}, values[0])
	assert.Equal(t, []interface{}{float64(60000), nil, float64(5)}, values[1])
}

func TestStoreTimeSeriesExplicitRule(t *testing.T) {
	var gotRule string
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotRule = r.URL.Query().Get("store-rule")
		w.WriteHeader(http.StatusOK)
	})

	ts := TimeSeries{OfficeID: "SWT", Name: "KEYS.Flow.Inst.1Hour.0.Ccp-Rev"}
	require.NoError(t, s.StoreTimeSeries(context.Background(), ts, StoreRuleDoNotReplace))
	assert.Equal(t, StoreRuleDoNotReplace, gotRule)
}

func TestStoreTimeSeriesRejectsUnnamedPayload(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	err := s.StoreTimeSeries(context.Background(), TimeSeries{OfficeID: "SWT"}, "")
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindSubmission))
}

func TestGetRequestsCarryNoAuthHeader(t *testing.T) {
	var gotAuth string
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"name":"X","values":[]}`))
	})

	_, err := s.GetTimeSeries(context.Background(), "SWT", "X", "",
		time.Unix(0, 0), time.Unix(3600, 0))
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestGetTimeSeriesDecodesPositionalValues(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"office-id": "SWT",
			"name": "KEYS.Elev.Inst.1Hour.0.Ccp-Rev",
			"units": "ft",
			"values": [[0, 723.5, 3], [60000, null, 5]]
		}`))
	})

	ts, err := s.GetTimeSeries(context.Background(), "SWT", "KEYS.Elev.Inst.1Hour.0.Ccp-Rev", "ft",
		time.Unix(0, 0), time.Unix(3600, 0))
	require.NoError(t, err)

	require.Len(t, ts.Values, 2)
	require.NotNil(t, ts.Values[0].Value)
	assert.Equal(t, 723.5, *ts.Values[0].Value)
	assert.Equal(t, 3, ts.Values[0].Quality)
	assert.Nil(t, ts.Values[1].Value)
	assert.Equal(t, 5, ts.Values[1].Quality)
	assert.Equal(t, int64(60000), ts.Values[1].EpochMillis)
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("series already exists"))
	})

	ts := TimeSeries{OfficeID: "SWT", Name: "KEYS.Elev.Inst.1Hour.0.Ccp-Rev"}
	err := s.StoreTimeSeries(context.Background(), ts, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
	assert.Contains(t, err.Error(), "series already exists")
}

func TestGetLevelLatestPicksLastNonNull(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/levels/")
		_, _ = w.Write([]byte(`{"values": [[0, 754.0, 3], [60000, 755.0, 3], [120000, null, 5]]}`))
	})

	v, err := s.GetLevelLatest(context.Background(), "SWT", "KEYS.Elev.Inst.0.Top of Flood", "ft",
		time.Unix(0, 0), time.Unix(3600, 0))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 755.0, *v)
}

func TestViewURL(t *testing.T) {
	s, err := NewSession(config.SessionConfig{APIRoot: "https://cda.example.com/cwms-data/"})
	require.NoError(t, err)

	assert.Equal(t, "https://cda.example.com/cwms-data/blobs/LOGO.PNG?office=SWT",
		s.ViewURL("blobs/LOGO.PNG", url.Values{"office": {"SWT"}}))
	assert.Equal(t, "https://cda.example.com/cwms-data/timeseries",
		s.ViewURL("/timeseries", nil))
}
