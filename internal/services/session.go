package services

import (
	"context"
	"errors"
	"fmt"

	"together-backend/internal/entity"
	"together-backend/internal/store"
)

// ErrTitleRequired is returned when a session is started without a track.
var ErrTitleRequired = errors.New("title is required")

// SessionService manages the couple's shared listening session. The store
// guarantees at most one session is active at a time, even when both
// partners press play at once.
type SessionService struct {
	sessions *entity.Accessor
}

// NewSessionService creates a new listening session service
func NewSessionService(reg *entity.Registry) *SessionService {
	return &SessionService{sessions: reg.Accessor(entity.ListeningSessions)}
}

// StartRequest describes the track a session is started with.
type StartRequest struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	PreviewURL string `json:"preview_url,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	StartedBy  string `json:"started_by"`
}

// Start deactivates any running session and creates the new one in a single
// atomic step.
func (s *SessionService) Start(ctx context.Context, req StartRequest) (store.Document, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}

	data := map[string]any{
		"title":      req.Title,
		"artist":     req.Artist,
		"started_by": req.StartedBy,
		"is_playing": true,
	}
	if req.PreviewURL != "" {
		data["preview_url"] = req.PreviewURL
	}
	if req.ArtworkURL != "" {
		data["artwork_url"] = req.ArtworkURL
	}

	doc, err := s.sessions.CreateExclusive(ctx, "is_active", data)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return doc, nil
}

// Stop deactivates a session by id.
func (s *SessionService) Stop(ctx context.Context, id string) error {
	_, err := s.sessions.Update(ctx, id, map[string]any{
		"is_active":  false,
		"is_playing": false,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to stop session: %w", err)
	}
	return nil
}

// Active returns the currently active session, or nil when nothing plays.
func (s *SessionService) Active(ctx context.Context) (store.Document, error) {
	docs, err := s.sessions.Find(ctx, store.Filter{"is_active": true}, "-created_date", 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}
