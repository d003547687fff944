package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"together-backend/internal/entity"
	"together-backend/internal/store"
)

func newTestRegistry() *entity.Registry {
	return entity.NewRegistry(store.NewMemoryStore())
}

func TestSessionStartRequiresTitle(t *testing.T) {
	svc := NewSessionService(newTestRegistry())

	_, err := svc.Start(context.Background(), StartRequest{Artist: "someone"})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestSessionStartReplacesActive(t *testing.T) {
	reg := newTestRegistry()
	svc := NewSessionService(reg)
	ctx := context.Background()

	first, err := svc.Start(ctx, StartRequest{Title: "Song A", Artist: "A", StartedBy: "ada"})
	require.NoError(t, err)
	assert.Equal(t, true, first["is_active"])
	assert.Equal(t, true, first["is_playing"])

	second, err := svc.Start(ctx, StartRequest{Title: "Song B", Artist: "B", StartedBy: "grace"})
	require.NoError(t, err)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID(), active.ID())
	assert.Equal(t, "Song B", active["title"])

	// The first session still exists in history but is no longer active.
	old, err := reg.Accessor(entity.ListeningSessions).Get(ctx, first.ID())
	require.NoError(t, err)
	assert.Equal(t, false, old["is_active"])
}

func TestSessionStopDeactivates(t *testing.T) {
	svc := NewSessionService(newTestRegistry())
	ctx := context.Background()

	started, err := svc.Start(ctx, StartRequest{Title: "Song A", StartedBy: "ada"})
	require.NoError(t, err)

	require.NoError(t, svc.Stop(ctx, started.ID()))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestSessionStopMissingReturnsNotFound(t *testing.T) {
	svc := NewSessionService(newTestRegistry())

	err := svc.Stop(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionActiveNoneReturnsNil(t *testing.T) {
	svc := NewSessionService(newTestRegistry())

	active, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Nil(t, active)
}
