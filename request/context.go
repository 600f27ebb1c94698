package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"workout-gate-service/domain"
)

var (
	ErrNotIdentified = errors.New("not identified")
)

type Context struct {
	request        *http.Request
	responseWriter http.ResponseWriter

	endpoint string

	identified bool
	profile    *domain.WorkoutProfile

	queryParams map[string]string
}

func NewContext(request *http.Request, response http.ResponseWriter, endpoint string) *Context {
	return &Context{
		request:        request,
		responseWriter: response,
		endpoint:       endpoint,
	}
}

func (c *Context) Request() *http.Request {
	return c.request
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.responseWriter
}

func (c *Context) SetResponseWriter(writer http.ResponseWriter) {
	c.responseWriter = writer
}

func (c *Context) Endpoint() string {
	return c.endpoint
}

// Identify attaches the validated profile to the request. Identity for rate
// limiting is the profile's email.
func (c *Context) Identify(profile domain.WorkoutProfile) {
	c.identified = true
	c.profile = &profile
}

func (c *Context) Profile() (domain.WorkoutProfile, error) {
	if !c.identified {
		return domain.WorkoutProfile{}, ErrNotIdentified
	}
	return *c.profile, nil
}

func (c *Context) Identity() string {
	if !c.identified {
		return ""
	}
	return c.profile.Email
}

func (c *Context) Context() context.Context {
	return c.request.Context()
}

func (c *Context) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *Context) Param(name string) string {
	value := c.request.Header.Get(name)
	if value != "" {
		return strings.TrimSpace(value)
	}

	if c.queryParams == nil {
		query := c.request.URL.Query()
		c.queryParams = map[string]string{}
		for key, values := range query {
			if len(values) == 0 {
				continue
			}
			c.queryParams[strings.ToLower(key)] = values[0]
		}
	}
	value = c.queryParams[strings.ToLower(name)]

	return strings.TrimSpace(value)
}
