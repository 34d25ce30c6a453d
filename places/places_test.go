package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopMatchParsesFirstCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Acme Inc. Montgomery County Maryland", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"place_id": "p1", "formatted_address": "123 Main St, Rockville, MD",
			 "geometry": {"location": {"lat": 39.08, "lng": -77.15}}},
			{"place_id": "p2", "formatted_address": "elsewhere"}
		]}`))
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.BaseURL = server.URL

	p := c.TopMatch(context.Background(), "Acme Inc. Montgomery County Maryland")
	require.NotNil(t, p)
	assert.Equal(t, "p1", p.PlaceID)
	assert.Equal(t, "123 Main St, Rockville, MD", p.Address)
	require.NotNil(t, p.Lat)
	assert.InDelta(t, 39.08, *p.Lat, 1e-9)
}

func TestTopMatchWithoutKeyIsDisabled(t *testing.T) {
	c := NewClient("")
	assert.False(t, c.Enabled())
	assert.Nil(t, c.TopMatch(context.Background(), "anything"))
}

func TestTopMatchSwallowsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.BaseURL = server.URL
	assert.Nil(t, c.TopMatch(context.Background(), "Acme"))

	c.BaseURL = server.URL
	server.Close()
	assert.Nil(t, c.TopMatch(context.Background(), "Acme"), "network errors degrade to no match")
}

func TestTopMatchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.BaseURL = server.URL
	assert.Nil(t, c.TopMatch(context.Background(), "Acme"))
}
