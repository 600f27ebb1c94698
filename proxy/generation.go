package proxy

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
	"golang.org/x/net/context"
	"workout-gate-service/httperrors"
	"workout-gate-service/request"
)

// Generation forwards an admitted profile to the external generation service
// with a single synchronous call and relays the response verbatim. No
// retries: the upstream outcome, whatever it is, is the request outcome.
type Generation struct {
	cli     *httpcli.Client
	url     string
	timeout time.Duration
}

func NewGeneration(cli *httpcli.Client, url string, timeout time.Duration) Generation {
	return Generation{
		cli:     cli,
		url:     url,
		timeout: timeout,
	}
}

func (p Generation) Handle(ctx *request.Context) error {
	if p.url == "" {
		return httperrors.New(
			http.StatusInternalServerError,
			"Workout generation endpoint is not configured.",
			errors.New("generation: endpoint url is not configured"),
		)
	}

	profile, err := ctx.Profile()
	if err != nil {
		return errors.WithMessage(err, "generation: get profile")
	}

	context, cancel := context.WithTimeout(ctx.Context(), p.timeout)
	defer cancel()

	resp, err := p.cli.Post(p.url).
		JsonRequestBody(profile).
		Do(context)
	if err != nil {
		return httperrors.New(
			http.StatusServiceUnavailable,
			"Workout generation service is not available.",
			errors.WithMessagef(err, "generation: post to %s", p.url),
		)
	}
	defer resp.Close()

	body, err := resp.UnsafeBody()
	if err != nil {
		return httperrors.New(
			http.StatusServiceUnavailable,
			"Workout generation service is not available.",
			errors.WithMessage(err, "generation: read response body"),
		)
	}

	writer := ctx.ResponseWriter()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(resp.StatusCode())
	_, err = writer.Write(body)
	if err != nil {
		return errors.WithMessage(err, "generation: write response")
	}

	return nil
}
