package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/validator"
	"workout-gate-service/domain"
	"workout-gate-service/httperrors"
	"workout-gate-service/request"
)

type EmailRepo interface {
	Store(ctx context.Context, email string, at time.Time) error
}

type StoreEmail struct {
	repo EmailRepo
}

func NewStoreEmail(repo EmailRepo) StoreEmail {
	return StoreEmail{
		repo: repo,
	}
}

func (h StoreEmail) Handle(ctx *request.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return httperrors.New(
			http.StatusBadRequest,
			"unable to read request body",
			errors.WithMessage(err, "store email: read request body"),
		)
	}

	req := domain.StoreEmailRequest{}
	err = json.Unmarshal(body, &req)
	if err != nil {
		return httperrors.New(
			http.StatusBadRequest,
			"invalid request body",
			errors.WithMessage(err, "store email: unmarshal request"),
		)
	}
	err = validator.Default.ValidateToError(req)
	if err != nil {
		return httperrors.New(
			http.StatusBadRequest,
			"Email is required",
			errors.WithMessage(err, "store email: validate request"),
		)
	}

	err = h.repo.Store(ctx.Context(), req.Email, time.Now())
	if err != nil {
		return httperrors.New(
			http.StatusInternalServerError,
			"Error storing email",
			errors.WithMessage(err, "store email: store"),
		)
	}

	return writeJson(ctx.ResponseWriter(), http.StatusOK, map[string]interface{}{
		"message": "Email stored successfully",
	})
}
