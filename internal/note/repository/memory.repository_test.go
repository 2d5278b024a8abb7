package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryScopesByOwner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	mine, err := repo.Create(ctx, "alice", "A", "a")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "bob", "B", "b")
	require.NoError(t, err)

	got, err := repo.Get(ctx, mine.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, *mine, *got)

	_, err = repo.Get(ctx, mine.ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, mine.ID, "bob", "hijack", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, mine.ID, "bob"))
	_, err = repo.Get(ctx, mine.ID, "alice")
	assert.NoError(t, err, "delete by another user must not remove the note")

	notes, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "A", notes[0].Title)
}

func TestMemoryRepositoryOrdersNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := repo.Create(ctx, "alice", title, "body")
		require.NoError(t, err)
	}

	notes, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	titles := []string{notes[0].Title, notes[1].Title, notes[2].Title}
	assert.Equal(t, []string{"three", "two", "one"}, titles)
}

func TestMemoryRepositoryUpdateKeepsOwnerAndCreatedAt(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	n, err := repo.Create(ctx, "alice", "A", "a")
	require.NoError(t, err)

	updated, err := repo.Update(ctx, n.ID, "alice", "A2", "a2")
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.UserID)
	assert.Equal(t, n.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "A2", updated.Title)
	assert.False(t, updated.UpdatedAt.Before(n.UpdatedAt))
}

func TestMemoryRepositoryDeleteIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	n, err := repo.Create(ctx, "alice", "A", "a")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, n.ID, "alice"))
	require.NoError(t, repo.Delete(ctx, n.ID, "alice"))

	notes, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, notes)
}
