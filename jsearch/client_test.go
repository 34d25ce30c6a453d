package jsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(serverURL string) *Client {
	c := NewClient("test-key", "test-host")
	c.BaseURL = serverURL
	c.Backoff = time.Millisecond
	return c
}

func writeJobs(w http.ResponseWriter, jobs []map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": jobs})
}

func TestSearchRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJobs(w, []map[string]any{{"job_id": "J1"}, {"job_id": "J2"}})
	}))
	defer server.Close()

	jobs := testClient(server.URL).Search(context.Background(), "warehouse", 1, 1, "today", "us")
	assert.Len(t, jobs, 2)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSearchReturnsEmptyAfterExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := testClient(server.URL)
	c.MaxAttempts = 3
	jobs := c.Search(context.Background(), "warehouse", 1, 1, "today", "us")
	assert.Empty(t, jobs)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSearchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	jobs := testClient(server.URL).Search(context.Background(), "warehouse", 1, 1, "today", "us")
	assert.Empty(t, jobs)
	assert.EqualValues(t, 1, calls.Load(), "403 must fail immediately")
}

func TestSearchHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJobs(w, []map[string]any{{"job_id": "J1"}})
	}))
	defer server.Close()

	start := time.Now()
	c := testClient(server.URL)
	c.Backoff = 30 * time.Second // would blow the test budget if not overridden
	jobs := c.Search(context.Background(), "warehouse", 1, 1, "today", "us")
	require.Len(t, jobs, 1)
	assert.Less(t, time.Since(start), 5*time.Second, "Retry-After: 0 should override backoff")
}

func TestSearchSendsAuthHeadersAndParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "test-host", r.Header.Get("X-RapidAPI-Host"))
		q := r.URL.Query()
		assert.Equal(t, "forklift operator", q.Get("query"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "2", q.Get("num_pages"))
		assert.Equal(t, "today", q.Get("date_posted"))
		assert.Equal(t, "us", q.Get("country"))
		writeJobs(w, nil)
	}))
	defer server.Close()

	testClient(server.URL).Search(context.Background(), "forklift operator", 1, 2, "today", "us")
}

func TestOpenJobIDs(t *testing.T) {
	page1 := []map[string]any{
		{"job_id": "A", "employer_name": "Acme Inc."},
		{"job_id": "B", "employer_name": "ACME, INC"},
		{"job_id": "X", "employer_name": "Other Corp"}, // wrong employer
		{"job_id": "R", "employer_name": "Acme"},       // rejected by region filter
	}
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("page") {
		case "1":
			writeJobs(w, page1)
		default:
			// Same records again: zero new identifiers.
			writeJobs(w, page1)
		}
	}))
	defer server.Close()

	inRegion := func(j RawJob) bool { return j.ID() != "R" }
	ids := testClient(server.URL).OpenJobIDs(context.Background(), "Acme Inc.", inRegion)

	assert.ElementsMatch(t, []string{"A", "B"}, ids.ToSlice())
	assert.EqualValues(t, 2, calls.Load(), "a repeat page after the first must stop the walk")
}

func TestOpenJobIDsEmptyPageStops(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJobs(w, nil)
	}))
	defer server.Close()

	ids := testClient(server.URL).OpenJobIDs(context.Background(), "Acme", nil)
	assert.Zero(t, ids.Cardinality())
	assert.EqualValues(t, 1, calls.Load())
}
