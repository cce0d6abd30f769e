package sentinel

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubAPI stands in for the Copernicus endpoints, serving tokens itself
// and pointing the client env vars at the test server.
func newStubAPI(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("COPERNICUS_CLIENT_ID", "id")
	t.Setenv("COPERNICUS_CLIENT_SECRET", "secret")
	t.Setenv("COPERNICUS_TOKEN_URL", srv.URL+"/token")
	t.Setenv("COPERNICUS_CATALOG_URL", srv.URL+"/search")
	t.Setenv("COPERNICUS_PROCESS_URL", srv.URL+"/process")
	return srv
}

func TestSearchSceneDatesFiltersAndCollapses(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
		  "features": [
		    {"id": "S2A_1", "properties": {"datetime": "2017-12-10T14:48:31Z", "eo:cloud_cover": 12.5}},
		    {"id": "S2B_2", "properties": {"datetime": "2017-12-10T14:58:02Z", "eo:cloud_cover": 8.0}},
		    {"id": "S2A_3", "properties": {"datetime": "2017-12-15T14:48:31Z", "eo:cloud_cover": 80.1}},
		    {"id": "S2B_4", "properties": {"datetime": "2017-12-20T14:48:31Z", "eo:cloud_cover": 20.0}}
		  ]
		}`)
	})
	newStubAPI(t, mux)

	bound := orb.Bound{Min: orb.Point{-72.802, -36.320}, Max: orb.Point{-72.030, -35.653}}
	from := time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2017, 12, 31, 0, 0, 0, 0, time.UTC)

	dates, err := SearchSceneDates(bound, from, to, 30)
	require.NoError(t, err)

	// the cloudy Dec 15 pass is dropped and Dec 10 collapses to its clearest pass
	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2017, 12, 10, 0, 0, 0, 0, time.UTC), dates[0].Date)
	assert.Equal(t, 8.0, dates[0].CloudCover)
	assert.Equal(t, time.Date(2017, 12, 20, 0, 0, 0, 0, time.UTC), dates[1].Date)
	assert.Equal(t, 20.0, dates[1].CloudCover)

	// a second identical search is served from the disk cache
	again, err := SearchSceneDates(bound, from, to, 30)
	require.NoError(t, err)
	assert.Equal(t, dates, again)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSearchSceneDatesServerError(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad bbox")
	})
	newStubAPI(t, mux)

	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	_, err := SearchSceneDates(bound, time.Now().AddDate(0, -1, 0), time.Now(), 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "bad bbox")
}
