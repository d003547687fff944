package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"together-backend/internal/entity"
	"together-backend/internal/models"
	"together-backend/internal/store"
)

// PairRepository persists pairs in the document store.
type PairRepository struct {
	pairs *entity.Accessor
}

// NewPairRepository creates a new pair repository
func NewPairRepository(reg *entity.Registry) *PairRepository {
	return &PairRepository{pairs: reg.Accessor(entity.Pairs)}
}

// Create creates a new pair and fills in the store-assigned ID.
func (r *PairRepository) Create(ctx context.Context, pair *models.Pair) error {
	doc, err := r.pairs.Create(ctx, map[string]any{
		"user_a_id":  pair.UserAID,
		"user_b_id":  pair.UserBID,
		"created_at": pair.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to create pair: %w", err)
	}
	pair.ID = doc.ID()
	return nil
}

// GetByID retrieves a pair by ID
func (r *PairRepository) GetByID(ctx context.Context, id string) (*models.Pair, error) {
	doc, err := r.pairs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("pair not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pair: %w", err)
	}
	return pairFromDoc(doc), nil
}

// GetByUserID retrieves the pair a user belongs to
func (r *PairRepository) GetByUserID(ctx context.Context, userID string) (*models.Pair, error) {
	for _, side := range []string{"user_a_id", "user_b_id"} {
		docs, err := r.pairs.Find(ctx, store.Filter{side: userID}, "", 1)
		if err != nil {
			return nil, fmt.Errorf("failed to get pair by user id: %w", err)
		}
		if len(docs) > 0 {
			return pairFromDoc(docs[0]), nil
		}
	}
	return nil, fmt.Errorf("pair not found: %w", ErrNotFound)
}

// Delete deletes a pair by ID
func (r *PairRepository) Delete(ctx context.Context, id string) error {
	if err := r.pairs.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pair: %w", err)
	}
	return nil
}

// UserHasPair checks if a user is already in a pair
func (r *PairRepository) UserHasPair(ctx context.Context, userID string) (bool, error) {
	_, err := r.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func pairFromDoc(doc store.Document) *models.Pair {
	return &models.Pair{
		ID:        doc.ID(),
		UserAID:   docString(doc, "user_a_id"),
		UserBID:   docString(doc, "user_b_id"),
		CreatedAt: docTime(doc, "created_at"),
	}
}
