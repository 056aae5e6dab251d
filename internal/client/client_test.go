package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/justsurfingit/jobdash/internal/apierr"
	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newStore(t *testing.T, access, refresh string) *AuthStore {
	t.Helper()
	store, err := LoadAuthStore(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, store.Login("ada@example.com", access, refresh))
	return store
}

func countsHandler(want string, refreshes *int32) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/UserJobs/status-counts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+want {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, dtos.StatusCountsResponse{Counts: map[string]int64{"New": 2}, Total: 2, NewCount: 2})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(refreshes, 1)
		var req dtos.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "r1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, auth.TokenPair{AccessToken: "fresh", RefreshToken: "r2"})
	})
	return mux
}

func TestClientSendsBearerToken(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(countsHandler("good", &refreshes))
	defer srv.Close()

	c := New(srv.URL, newStore(t, "good", ""), nil)
	res, err := c.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.NewCount)
	assert.Zero(t, atomic.LoadInt32(&refreshes))
}

func TestClientRefreshesOnceOn401(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(countsHandler("fresh", &refreshes))
	defer srv.Close()

	store := newStore(t, "stale", "r1")
	c := New(srv.URL, store, nil)
	_, err := c.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, "fresh", store.Model().AccessToken)
	assert.Equal(t, "r2", store.Model().RefreshToken)

	reloaded, err := LoadAuthStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "fresh", reloaded.Model().AccessToken)
}

func TestClientWithoutRefreshTokenReportsAuthError(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(countsHandler("fresh", &refreshes))
	defer srv.Close()

	c := New(srv.URL, newStore(t, "stale", ""), nil)
	_, err := c.StatusCounts(context.Background())
	require.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&refreshes))

	var httpErr *apierr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, "invalid or expired token", httpErr.Message)

	n := apierr.Classify(err)
	assert.Equal(t, apierr.CategoryAuth, n.Category)
	assert.Equal(t, apierr.ActionLogin, n.Action)
}

func TestClientFailedRefreshKeepsOriginalError(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(countsHandler("fresh", &refreshes))
	defer srv.Close()

	c := New(srv.URL, newStore(t, "stale", "revoked"), nil)
	_, err := c.StatusCounts(context.Background())
	var httpErr *apierr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "invalid or expired token", httpErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, newStore(t, "tok", ""), nil)
	_, err := c.GetJob(context.Background(), "j1")
	require.Error(t, err)
	assert.Equal(t, apierr.CategoryNetwork, apierr.Classify(err).Category)
}

func TestClientListQuery(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Path + "?" + r.URL.RawQuery
		writeJSON(w, http.StatusOK, dtos.PagedResponse[dtos.JobResponse]{Items: []dtos.JobResponse{}})
	}))
	defer srv.Close()

	c := New(srv.URL, newStore(t, "tok", ""), nil)
	_, err := c.ListJobs(context.Background(), EndpointMyJobs, dtos.ListQuery{Page: 2, PageSize: 25, SortColumn: "title", SortDescending: true, SearchTerm: "go dev"})
	require.NoError(t, err)
	assert.Equal(t, "/UserJobs/my?page=2&pageSize=25&searchTerm=go+dev&sortColumn=title&sortDescending=true", <-got)
}
