package services

import (
	"context"
	"errors"
	"testing"

	"github.com/arzan03/FileShare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerStats(t *testing.T) {
	svc, store, _ := newTestFileService()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		upload(t, svc, ownerA, "a.txt", "text/plain", "")
	}
	upload(t, svc, ownerB, "b.txt", "text/plain", "")

	stats, err := NewStatsService(store, newMemUserStore()).OwnerStats(ctx, ownerA)
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.Files, "stats are not capped like the recent list")
	assert.Equal(t, int64(12*len("contents of a.txt")), stats.TotalStorage)

	stats, err = NewStatsService(store, newMemUserStore()).OwnerStats(ctx, "665f1c2b9d1e8a00000000ff")
	require.NoError(t, err)
	assert.Equal(t, OwnerStats{}, stats)
}

func TestSystemStats(t *testing.T) {
	svc, store, _ := newTestFileService()
	users := newMemUserStore()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@example.com", Status: models.UserStatusActive}))
	require.NoError(t, users.Create(ctx, &models.User{Email: "b@example.com", Status: models.UserStatusActive}))
	require.NoError(t, users.Create(ctx, &models.User{Email: "c@example.com", Status: "disabled"}))

	upload(t, svc, ownerA, "a.txt", "text/plain", "")
	upload(t, svc, ownerB, "bb.txt", "text/plain", "")

	stats, err := NewStatsService(store, users).SystemStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, SystemStats{
		Users:        3,
		Files:        2,
		TotalStorage: int64(len("contents of a.txt") + len("contents of bb.txt")),
		ActiveUsers:  2,
	}, stats)
}

func TestSystemStatsFailure(t *testing.T) {
	users := newMemUserStore()
	users.err = errors.New("socket closed")

	_, err := NewStatsService(newMemFileStore(), users).SystemStats(context.Background())
	requireKind(t, err, KindInternal)
}
