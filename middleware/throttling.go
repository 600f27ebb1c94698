package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"workout-gate-service/httperrors"
	"workout-gate-service/request"
)

type Throttler interface {
	Allow() bool
}

func Throttling(throttler Throttler) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			if !throttler.Allow() {
				return httperrors.New(
					http.StatusTooManyRequests,
					"Too many requests, try again in a second.",
					errors.New("throttling: rate limit has been reached"),
				)
			}

			return next.Handle(ctx)
		})
	}
}
