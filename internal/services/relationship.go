package services

import (
	"context"
	"fmt"

	"together-backend/internal/entity"
	"together-backend/internal/store"
)

// RelationshipService owns the relationship_data singleton: anniversary
// date, partner names and the shared savings goal.
type RelationshipService struct {
	data *entity.Accessor
}

// NewRelationshipService creates a new relationship service
func NewRelationshipService(reg *entity.Registry) *RelationshipService {
	return &RelationshipService{data: reg.Accessor(entity.RelationshipData)}
}

// singletonFilter is the constant identity of the one relationship_data
// document; every access upserts on it, so concurrent first reads collapse
// into a single row.
var singletonFilter = store.Filter{"singleton": true}

// Get returns the singleton document, creating it on first read. The savings
// defaults are filled on the way out, never written, so Get cannot clobber
// stored values.
func (s *RelationshipService) Get(ctx context.Context) (store.Document, error) {
	doc, err := s.data.Upsert(ctx, singletonFilter, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationship data: %w", err)
	}
	for k, v := range map[string]any{"savings_goal": 0, "savings_current": 0} {
		if _, ok := doc[k]; !ok {
			doc[k] = v
		}
	}
	return doc, nil
}

// Update applies a partial patch to the singleton, creating it if needed.
func (s *RelationshipService) Update(ctx context.Context, patch map[string]any) (store.Document, error) {
	clean := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" || k == "singleton" {
			continue
		}
		clean[k] = v
	}
	return s.data.Upsert(ctx, singletonFilter, clean)
}
