package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"together-backend/internal/entity"
)

func TestRelationshipGetCreatesSingleton(t *testing.T) {
	reg := newTestRegistry()
	svc := NewRelationshipService(reg)
	ctx := context.Background()

	doc, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID())
	assert.Equal(t, 0, doc["savings_goal"])
	assert.Equal(t, 0, doc["savings_current"])

	again, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc.ID(), again.ID())
}

func TestRelationshipGetConcurrentFirstReads(t *testing.T) {
	reg := newTestRegistry()
	svc := NewRelationshipService(reg)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Get(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Racing first reads must all land on the same document.
	docs, err := reg.Accessor(entity.RelationshipData).List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestRelationshipUpdatePatchesSingleton(t *testing.T) {
	reg := newTestRegistry()
	svc := NewRelationshipService(reg)
	ctx := context.Background()

	updated, err := svc.Update(ctx, map[string]any{
		"anniversary_date": "2020-02-14",
		"savings_goal":     5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "2020-02-14", updated["anniversary_date"])

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated.ID(), got.ID())
	assert.Equal(t, "2020-02-14", got["anniversary_date"])
	// Get fills savings defaults only when the field is absent.
	assert.Equal(t, 5000, got["savings_goal"])

	docs, err := reg.Accessor(entity.RelationshipData).List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestRelationshipUpdateIgnoresIdentityFields(t *testing.T) {
	svc := NewRelationshipService(newTestRegistry())
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, map[string]any{
		"id":        "forged",
		"singleton": false,
		"partner_1": "ada",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID(), updated.ID())
	assert.Equal(t, true, updated["singleton"])
	assert.Equal(t, "ada", updated["partner_1"])
}
