package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/repository"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := entity.NewSession("sess-1", []string{"a.com", "b.com"})
	session.Tasks[0].Status = entity.TaskSuccess
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Tasks, loaded.Tasks)
	assert.NotNil(t, loaded.Results)
}

func TestSessionStoreSnapshotsAreIsolated(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := entity.NewSession("sess-1", []string{"a.com"})
	require.NoError(t, store.Save(ctx, session))

	// Mutating the original after Save must not leak into the stored copy.
	session.Tasks[0].Status = entity.TaskFailed

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskPending, loaded.Tasks[0].Status)
}

func TestSessionStoreNotFound(t *testing.T) {
	store := NewSessionStore()
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := entity.NewSession("sess-1", []string{"a.com"})
	require.NoError(t, store.Save(ctx, session))
	require.NoError(t, store.Delete(ctx, "sess-1"))

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, "sess-1"))
}
