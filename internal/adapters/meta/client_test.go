package meta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/s-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "s-1",
			"hostId": "host-1",
			"title": "Algebra II",
			"waitingRoomEnabled": true,
			"participants": [{"id": "u-1", "name": "Ann"}],
			"settings": {"quiz": "enabled"}
		}`))
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL + "/api").Lookup(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "host-1", string(s.HostID))
	assert.True(t, s.WaitingRoomEnabled)
	assert.Len(t, s.Participants, 1)
	assert.Equal(t, "enabled", s.Settings["quiz"])
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Lookup(context.Background(), "s-404")
	assert.Error(t, err)
}

func TestLookupIncompleteMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "s-1"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Lookup(context.Background(), "s-1")
	assert.Error(t, err)
}
