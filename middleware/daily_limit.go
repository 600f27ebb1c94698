package middleware

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"workout-gate-service/domain"
	"workout-gate-service/httperrors"
	"workout-gate-service/request"
)

type DailyLimitChecker interface {
	Check(ctx context.Context, identity string) (domain.Decision, error)
}

func DailyLimit(checker DailyLimitChecker) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			identity := ctx.Identity()
			if identity == "" {
				return errors.New("daily limit: request is not identified")
			}

			decision, err := checker.Check(ctx.Context(), identity)
			if err != nil {
				return errors.WithMessage(err, "daily limit: check")
			}

			switch decision {
			case domain.Admitted:
				return next.Handle(ctx)
			case domain.RejectedIdentityLimit:
				return httperrors.New(
					http.StatusTooManyRequests,
					"Daily limit reached. Please try again tomorrow.",
					errors.Errorf("daily limit: daily requests limit has been reached for '%s'", identity),
				)
			case domain.RejectedGlobalLimit:
				return httperrors.New(
					http.StatusTooManyRequests,
					"Our system is currently experiencing high demand. Please try again later.",
					errors.New("daily limit: global daily requests limit has been reached"),
				)
			default:
				return errors.Errorf("daily limit: unexpected decision %d", decision)
			}
		})
	}
}
