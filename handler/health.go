package handler

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"workout-gate-service/httperrors"
	"workout-gate-service/request"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the counter store is reachable. Replaces the
// connection probe the original ran as a load-time side effect.
type Health struct {
	pinger Pinger
}

func NewHealth(pinger Pinger) Health {
	return Health{
		pinger: pinger,
	}
}

func (h Health) Handle(ctx *request.Context) error {
	err := h.pinger.Ping(ctx.Context())
	if err != nil {
		return httperrors.New(
			http.StatusServiceUnavailable,
			"counter store is not available",
			errors.WithMessage(err, "health: ping counter store"),
		)
	}

	return writeJson(ctx.ResponseWriter(), http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
