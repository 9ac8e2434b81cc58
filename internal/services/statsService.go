package services

import (
	"context"

	"github.com/arzan03/FileShare/internal/models"
	"golang.org/x/sync/errgroup"
)

// UserCounter is the part of the user store the aggregator needs.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type OwnerStats struct {
	Files        int64 `json:"files"`
	TotalStorage int64 `json:"totalStorage"`
}

type SystemStats struct {
	Users        int64 `json:"users"`
	Files        int64 `json:"files"`
	TotalStorage int64 `json:"totalStorage"`
	ActiveUsers  int64 `json:"activeUsers"`
}

type StatsService struct {
	files FileStore
	users UserCounter
}

func NewStatsService(files FileStore, users UserCounter) *StatsService {
	return &StatsService{files: files, users: users}
}

// OwnerStats counts the owner's files and sums their sizes.
func (s *StatsService) OwnerStats(ctx context.Context, owner string) (OwnerStats, error) {
	files, err := s.files.ListByOwner(ctx, owner, 0)
	if err != nil {
		return OwnerStats{}, newError(KindInternal, "Failed to fetch user stats", err)
	}
	return summarize(files), nil
}

func summarize(files []models.File) OwnerStats {
	var stats OwnerStats
	for _, f := range files {
		stats.Files++
		stats.TotalStorage += f.Size
	}
	return stats
}

// SystemStats runs the four counts concurrently.
func (s *StatsService) SystemStats(ctx context.Context) (SystemStats, error) {
	var stats SystemStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Users, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Files, err = s.files.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalStorage, err = s.files.SumSize(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUsers, err = s.users.CountActive(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return SystemStats{}, newError(KindInternal, "Failed to fetch stats", err)
	}
	return stats, nil
}
