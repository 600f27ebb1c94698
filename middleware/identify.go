package middleware

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/validator"
	"workout-gate-service/domain"
	"workout-gate-service/httperrors"
	"workout-gate-service/request"
)

// Identify decodes and validates the workout profile and attaches it to the
// request. Rate limiting downstream keys on the profile's email, so the
// email must be present and well-formed before any counter is touched.
func Identify() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			body, err := io.ReadAll(ctx.Request().Body)
			if err != nil {
				return httperrors.New(
					http.StatusBadRequest,
					"unable to read request body",
					errors.WithMessage(err, "identify: read request body"),
				)
			}

			profile := domain.WorkoutProfile{}
			err = json.Unmarshal(body, &profile)
			if err != nil {
				return httperrors.New(
					http.StatusBadRequest,
					"invalid request body",
					errors.WithMessage(err, "identify: unmarshal profile"),
				)
			}

			err = validator.Default.ValidateToError(profile)
			if err != nil {
				return httperrors.New(
					http.StatusBadRequest,
					err.Error(),
					errors.WithMessage(err, "identify: validate profile"),
				)
			}

			ctx.Identify(profile)
			return next.Handle(ctx)
		})
	}
}
