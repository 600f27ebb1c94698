package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type CleanupRepo interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Cleanup struct {
	repo CleanupRepo
}

func NewCleanup(repo CleanupRepo) Cleanup {
	return Cleanup{
		repo: repo,
	}
}

// Do prunes counters for days strictly before yesterday (UTC). Keeping one
// extra day is enough: same-day counters must survive and yesterday's ones
// expire on their own.
func (s Cleanup) Do(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -1)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, errors.WithMessage(err, "delete older than")
	}
	return deleted, nil
}
