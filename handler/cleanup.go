package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/pkg/errors"
	"workout-gate-service/httperrors"
	"workout-gate-service/request"
)

type CleanupService interface {
	Do(ctx context.Context) (int64, error)
}

// Cleanup is the on-demand maintenance trigger guarded by a shared secret.
type Cleanup struct {
	service   CleanupService
	secretKey string
}

func NewCleanup(service CleanupService, secretKey string) Cleanup {
	return Cleanup{
		service:   service,
		secretKey: secretKey,
	}
}

func (h Cleanup) Handle(ctx *request.Context) error {
	key := ctx.Param("key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.secretKey)) != 1 {
		return httperrors.New(
			http.StatusUnauthorized,
			"Unauthorized",
			errors.New("cleanup: secret key mismatch"),
		)
	}

	_, err := h.service.Do(ctx.Context())
	if err != nil {
		return httperrors.New(
			http.StatusInternalServerError,
			"Cleanup failed",
			errors.WithMessage(err, "cleanup: do"),
		)
	}

	return writeJson(ctx.ResponseWriter(), http.StatusOK, map[string]interface{}{
		"message": "Cleanup successful",
	})
}
