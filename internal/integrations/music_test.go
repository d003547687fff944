package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMusicSearchMapsResults(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"term":  r.URL.Query().Get("term"),
			"media": r.URL.Query().Get("media"),
			"limit": r.URL.Query().Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"resultCount": 1,
			"results": [{
				"trackName": "Yellow",
				"artistName": "Coldplay",
				"collectionName": "Parachutes",
				"previewUrl": "https://example.com/preview.m4a",
				"artworkUrl100": "https://example.com/art.jpg",
				"trackViewUrl": "https://example.com/track"
			}]
		}`))
	}))
	defer srv.Close()

	m := NewMusicSearch()
	m.baseURL = srv.URL

	tracks, err := m.Search(context.Background(), "yellow", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Yellow", tracks[0].Title)
	assert.Equal(t, "Coldplay", tracks[0].Artist)
	assert.Equal(t, "Parachutes", tracks[0].Album)
	assert.Equal(t, "https://example.com/preview.m4a", tracks[0].PreviewURL)

	assert.Equal(t, "yellow", gotQuery["term"])
	assert.Equal(t, "music", gotQuery["media"])
	assert.Equal(t, "5", gotQuery["limit"])
}

func TestMusicSearchLimitClamped(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer srv.Close()

	m := NewMusicSearch()
	m.baseURL = srv.URL

	_, err := m.Search(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Equal(t, "10", gotLimit)

	_, err = m.Search(context.Background(), "x", 100)
	require.NoError(t, err)
	assert.Equal(t, "10", gotLimit)
}

func TestMusicSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	m := NewMusicSearch()
	m.baseURL = srv.URL

	_, err := m.Search(context.Background(), "x", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itunes search returned")
}
