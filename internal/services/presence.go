package services

import (
	"context"
	"fmt"
	"time"

	"together-backend/internal/entity"
	"together-backend/internal/models"
	"together-backend/internal/presence"
	"together-backend/internal/store"
)

// PresenceService maintains user_presence documents and derives the
// online/away/offline status on every read. Status is never stored: a client
// that crashes simply ages out of the online window.
type PresenceService struct {
	presences *entity.Accessor
}

// NewPresenceService creates a new presence service
func NewPresenceService(reg *entity.Registry) *PresenceService {
	return &PresenceService{presences: reg.Accessor(entity.UserPresence)}
}

// Heartbeat records that the named user was seen just now. One document
// exists per user_name; concurrent heartbeats collapse into it.
func (s *PresenceService) Heartbeat(ctx context.Context, userName string) (*models.PresenceView, error) {
	now := store.Now()
	doc, err := s.presences.Upsert(ctx,
		store.Filter{"user_name": userName},
		map[string]any{"last_seen": now.Format(time.RFC3339Nano)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return viewFromDoc(doc, now), nil
}

// List returns every presence record with the derived status injected,
// newest heartbeat first.
func (s *PresenceService) List(ctx context.Context) ([]*models.PresenceView, error) {
	docs, err := s.presences.List(ctx, "-last_seen", 0)
	if err != nil {
		return nil, err
	}

	now := store.Now()
	views := make([]*models.PresenceView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, viewFromDoc(doc, now))
	}
	return views, nil
}

func viewFromDoc(doc store.Document, now time.Time) *models.PresenceView {
	lastSeenStr, _ := doc["last_seen"].(string)
	lastSeen, _ := time.Parse(time.RFC3339Nano, lastSeenStr)
	userName, _ := doc["user_name"].(string)

	return &models.PresenceView{
		ID:       doc.ID(),
		UserName: userName,
		Status:   string(presence.Classify(lastSeen, now)),
		LastSeen: lastSeen,
	}
}
