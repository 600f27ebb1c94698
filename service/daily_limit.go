package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"workout-gate-service/conf"
	"workout-gate-service/domain"
)

// GlobalIdentity is the counter identity shared by all users when a global
// daily ceiling is configured.
const GlobalIdentity = "global"

type DailyLimitRepo interface {
	Increment(ctx context.Context, identity string, today time.Time) (int64, error)
}

type DailyLimit struct {
	repo        DailyLimitRepo
	userLimit   int64
	globalLimit int64
}

func NewDailyLimit(repo DailyLimitRepo, config conf.DailyLimit) DailyLimit {
	return DailyLimit{
		repo:        repo,
		userLimit:   config.RequestsPerDay,
		globalLimit: config.GlobalRequestsPerDay,
	}
}

// Check counts the attempt and decides whether it may proceed. It always
// increments, even when the decision is a rejection, so callers must not
// call it speculatively. When a global ceiling is configured the global
// counter is incremented too, before the decision is made: an identity
// already over its own ceiling still consumes global budget.
func (s DailyLimit) Check(ctx context.Context, identity string) (domain.Decision, error) {
	today := time.Now().UTC()

	identityCount, err := s.repo.Increment(ctx, identity, today)
	if err != nil {
		return domain.Admitted, errors.WithMessage(err, "increment identity counter")
	}

	globalCount := int64(0)
	if s.globalLimit > 0 {
		globalCount, err = s.repo.Increment(ctx, GlobalIdentity, today)
		if err != nil {
			return domain.Admitted, errors.WithMessage(err, "increment global counter")
		}
	}

	if identityCount > s.userLimit {
		return domain.RejectedIdentityLimit, nil
	}
	if s.globalLimit > 0 && globalCount > s.globalLimit {
		return domain.RejectedGlobalLimit, nil
	}

	return domain.Admitted, nil
}
