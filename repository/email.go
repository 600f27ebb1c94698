package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Email struct {
	cli redis.UniversalClient
}

func NewEmail(cli redis.UniversalClient) Email {
	return Email{
		cli: cli,
	}
}

// Store keeps the submitted email keyed by submission time.
func (r Email) Store(ctx context.Context, email string, at time.Time) error {
	key := fmt.Sprintf("email:%s", at.UTC().Format(time.RFC3339Nano))
	err := r.cli.Set(ctx, key, email, 0).Err()
	if err != nil {
		return errors.WithMessage(err, "set")
	}
	return nil
}
