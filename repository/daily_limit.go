package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	dailyLimitKeyPrefix = "rate_limit:"
	dayLayout           = "2006-01-02"

	scanBatchSize = 100
)

type DailyLimit struct {
	cli redis.UniversalClient
}

func NewDailyLimit(cli redis.UniversalClient) DailyLimit {
	return DailyLimit{
		cli: cli,
	}
}

// Increment atomically increments the counter for (identity, day) and returns
// the new value. The key is created with value 1 on the first call; a 24h
// lifetime is attached exactly once via ExpireNX, so concurrent first calls
// can't extend it.
func (r DailyLimit) Increment(ctx context.Context, identity string, today time.Time) (int64, error) {
	key := r.key(identity, today)
	value, err := r.cli.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.WithMessage(err, "incr")
	}

	if value == 1 {
		err := r.cli.ExpireNX(ctx, key, 24*time.Hour).Err() //nolint:mnd
		if err != nil {
			return 0, errors.WithMessage(err, "expire nx")
		}
	}

	return value, nil
}

// DeleteOlderThan removes all counters whose day is strictly before cutoff
// and returns the number of removed keys. Counters for the cutoff day and
// later, today's included, are never touched, so it is safe to run
// concurrently with Increment.
func (r DailyLimit) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffDay := cutoff.UTC().Format(dayLayout)

	deleted := int64(0)
	cursor := uint64(0)
	for {
		keys, next, err := r.cli.Scan(ctx, cursor, dailyLimitKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return deleted, errors.WithMessage(err, "scan")
		}

		expired := make([]string, 0, len(keys))
		for _, key := range keys {
			day, ok := r.dayFromKey(key)
			if !ok {
				continue
			}
			if day < cutoffDay {
				expired = append(expired, key)
			}
		}
		if len(expired) > 0 {
			count, err := r.cli.Unlink(ctx, expired...).Result()
			if err != nil {
				return deleted, errors.WithMessage(err, "unlink")
			}
			deleted += count
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

func (r DailyLimit) Ping(ctx context.Context) error {
	err := r.cli.Ping(ctx).Err()
	if err != nil {
		return errors.WithMessage(err, "ping")
	}
	return nil
}

func (r DailyLimit) key(identity string, today time.Time) string {
	return fmt.Sprintf("%s%s:%s", dailyLimitKeyPrefix, identity, today.UTC().Format(dayLayout))
}

func (r DailyLimit) dayFromKey(key string) (string, bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return "", false
	}
	day := key[idx+1:]
	_, err := time.Parse(dayLayout, day)
	if err != nil {
		return "", false
	}
	return day, true
}
