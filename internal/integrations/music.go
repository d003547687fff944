package integrations

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"together-backend/internal/models"
)

const itunesSearchURL = "https://itunes.apple.com/search"

// defaultSearchLimit matches the iTunes result window the dashboard shows.
const defaultSearchLimit = 10

// MusicSearch looks up songs in the public iTunes catalog. The API is
// unauthenticated and rate-limited upstream, so our handler sits behind a
// per-client limiter as well.
type MusicSearch struct {
	client  *resty.Client
	baseURL string
}

// NewMusicSearch creates the iTunes search client.
func NewMusicSearch() *MusicSearch {
	return &MusicSearch{client: resty.New(), baseURL: itunesSearchURL}
}

type itunesResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		TrackName      string `json:"trackName"`
		ArtistName     string `json:"artistName"`
		CollectionName string `json:"collectionName"`
		PreviewURL     string `json:"previewUrl"`
		ArtworkURL100  string `json:"artworkUrl100"`
		TrackViewURL   string `json:"trackViewUrl"`
	} `json:"results"`
}

// Search returns up to limit tracks matching the query.
func (m *MusicSearch) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 || limit > 25 {
		limit = defaultSearchLimit
	}

	var body itunesResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term":  query,
			"media": "music",
			"limit": fmt.Sprintf("%d", limit),
		}).
		SetResult(&body).
		Get(m.baseURL)
	if err != nil {
		return nil, fmt.Errorf("itunes search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("itunes search returned %s", resp.Status())
	}

	tracks := make([]models.Track, 0, len(body.Results))
	for _, r := range body.Results {
		tracks = append(tracks, models.Track{
			Title:      r.TrackName,
			Artist:     r.ArtistName,
			Album:      r.CollectionName,
			PreviewURL: r.PreviewURL,
			ArtworkURL: r.ArtworkURL100,
			ITunesURL:  r.TrackViewURL,
		})
	}
	return tracks, nil
}
