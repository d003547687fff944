package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"together-backend/internal/entity"
	"together-backend/internal/models"
	"together-backend/internal/store"
)

// ErrInvalidDate marks a check-in date that is not yyyy-mm-dd.
var ErrInvalidDate = errors.New("invalid date")

// CheckInService records one mood check-in per partner per day. The
// create-or-update decision happens in the store, not in the client, so two
// submits for the same day cannot produce duplicates.
type CheckInService struct {
	checkins *entity.Accessor
}

// NewCheckInService creates a new check-in service
func NewCheckInService(reg *entity.Registry) *CheckInService {
	return &CheckInService{checkins: reg.Accessor(entity.DailyCheckIns)}
}

// Submit upserts today's check-in for the user. An empty date defaults to
// today (UTC).
func (s *CheckInService) Submit(ctx context.Context, in models.CheckIn) (store.Document, error) {
	if in.UserName == "" {
		return nil, fmt.Errorf("user_name is required")
	}
	if in.Date == "" {
		in.Date = store.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, fmt.Errorf("%w %q", ErrInvalidDate, in.Date)
	}

	doc, err := s.checkins.Upsert(ctx,
		store.Filter{"user_name": in.UserName, "date": in.Date},
		map[string]any{
			"emotion":       in.Emotion,
			"energy_level":  in.EnergyLevel,
			"love_language": in.LoveLanguage,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to submit check-in: %w", err)
	}
	return doc, nil
}

// Today returns the user's check-in for the given date, or nil.
func (s *CheckInService) Today(ctx context.Context, userName, date string) (store.Document, error) {
	if date == "" {
		date = store.Now().Format("2006-01-02")
	}
	docs, err := s.checkins.Find(ctx, store.Filter{"user_name": userName, "date": date}, "", 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}
