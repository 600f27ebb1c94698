package tests

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/test"
	"github.com/txix-open/isp-kit/test/httpt"
	"workout-gate-service/assembly"
	"workout-gate-service/conf"
	"workout-gate-service/domain"
)

type generatedProgram struct {
	Program struct {
		ProgramName string `json:"programName"`
	} `json:"program"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type AcceptanceTestSuite struct {
	suite.Suite
}

func TestAcceptanceSuite(t *testing.T) {
	suite.Run(t, &AcceptanceTestSuite{})
}

func (s *AcceptanceTestSuite) TestGenerateHappyPath() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	srv := s.server(test, redisCli, s.config(redisCli, upstreamUrl, 3, 0))

	resp := generatedProgram{}
	_, err := httpcli.New().Post(srv.URL+"/generate").
		JsonRequestBody(validProfile()).
		JsonResponseBody(&resp).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues("Progressive Strength", resp.Program.ProgramName)
	require.EqualValues(1, atomic.LoadInt64(&upstreamCalls))
}

func (s *AcceptanceTestSuite) TestDailyLimitExceeded() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	srv := s.server(test, redisCli, s.config(redisCli, upstreamUrl, 3, 0))

	cli := httpcli.New()
	profile := validProfile()
	for i := 0; i < 3; i++ {
		resp, err := cli.Post(srv.URL+"/generate").
			JsonRequestBody(profile).
			Do(context.Background())
		require.NoError(err)
		require.EqualValues(http.StatusOK, resp.StatusCode())
		resp.Close()
	}

	resp, err := cli.Post(srv.URL+"/generate").
		JsonRequestBody(profile).
		Do(context.Background())
	require.NoError(err)
	defer resp.Close()
	require.EqualValues(http.StatusTooManyRequests, resp.StatusCode())
	require.EqualValues("Daily limit reached. Please try again tomorrow.", errorMessage(require, resp))

	// the rejected request never reached the generation service
	require.EqualValues(3, atomic.LoadInt64(&upstreamCalls))
}

func (s *AcceptanceTestSuite) TestGlobalLimitExceeded() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	srv := s.server(test, redisCli, s.config(redisCli, upstreamUrl, 5, 2))

	// the global counter is shared, reset it so reruns on the same day are deterministic
	err := redisCli.Del(context.Background(), dailyLimitKey("global", time.Now().UTC())).Err()
	require.NoError(err)

	cli := httpcli.New()
	for i := 0; i < 2; i++ {
		profile := validProfile()
		resp, err := cli.Post(srv.URL+"/generate").
			JsonRequestBody(profile).
			Do(context.Background())
		require.NoError(err)
		require.EqualValues(http.StatusOK, resp.StatusCode())
		resp.Close()
	}

	resp, err := cli.Post(srv.URL+"/generate").
		JsonRequestBody(validProfile()).
		Do(context.Background())
	require.NoError(err)
	defer resp.Close()
	require.EqualValues(http.StatusTooManyRequests, resp.StatusCode())
	require.EqualValues("Our system is currently experiencing high demand. Please try again later.", errorMessage(require, resp))
	require.EqualValues(2, atomic.LoadInt64(&upstreamCalls))
}

func (s *AcceptanceTestSuite) TestInvalidProfile() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	srv := s.server(test, redisCli, s.config(redisCli, upstreamUrl, 3, 0))

	profile := validProfile()
	profile.Email = "not-an-email"
	resp, err := httpcli.New().Post(srv.URL+"/generate").
		JsonRequestBody(profile).
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusBadRequest, resp.StatusCode())
	require.EqualValues(0, atomic.LoadInt64(&upstreamCalls))
}

func (s *AcceptanceTestSuite) TestUpstreamErrorIsRelayedVerbatim() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstream := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusBadGateway)
		_, _ = writer.Write([]byte(`{"error":"generator overloaded"}`))
	}))
	s.T().Cleanup(upstream.Close)
	srv := s.server(test, redisCli, s.config(redisCli, upstream.URL, 3, 0))

	resp, err := httpcli.New().Post(srv.URL+"/generate").
		JsonRequestBody(validProfile()).
		Do(context.Background())
	require.NoError(err)
	defer resp.Close()
	require.EqualValues(http.StatusBadGateway, resp.StatusCode())
	require.EqualValues("generator overloaded", errorMessage(require, resp))
}

func (s *AcceptanceTestSuite) TestUpstreamNotConfigured() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	srv := s.server(test, redisCli, s.config(redisCli, "", 3, 0))

	resp, err := httpcli.New().Post(srv.URL+"/generate").
		JsonRequestBody(validProfile()).
		Do(context.Background())
	require.NoError(err)
	defer resp.Close()
	require.EqualValues(http.StatusInternalServerError, resp.StatusCode())
	require.EqualValues("Workout generation endpoint is not configured.", errorMessage(require, resp))
}

func (s *AcceptanceTestSuite) TestUpstreamUnreachable() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstream := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {}))
	upstream.Close()
	srv := s.server(test, redisCli, s.config(redisCli, upstream.URL, 3, 0))

	resp, err := httpcli.New().Post(srv.URL+"/generate").
		JsonRequestBody(validProfile()).
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusServiceUnavailable, resp.StatusCode())
}

func (s *AcceptanceTestSuite) TestThrottling() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	config := s.config(redisCli, upstreamUrl, 100, 0)
	config.Throttling = &conf.Throttling{RequestsPerSecond: 1, Burst: 1}
	srv := s.server(test, redisCli, config)

	cli := httpcli.New()
	resp, err := cli.Post(srv.URL+"/generate").
		JsonRequestBody(validProfile()).
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
	resp.Close()

	resp, err = cli.Post(srv.URL+"/generate").
		JsonRequestBody(validProfile()).
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusTooManyRequests, resp.StatusCode())
	require.EqualValues(1, atomic.LoadInt64(&upstreamCalls))
}

func (s *AcceptanceTestSuite) TestCleanupTrigger() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	srv := s.server(test, redisCli, s.config(redisCli, upstreamUrl, 3, 0))
	ctx := context.Background()

	identity := testIdentity()
	today := time.Now().UTC()
	longAgo := today.AddDate(0, 0, -10)
	err := redisCli.Set(ctx, dailyLimitKey(identity, longAgo), 5, 0).Err()
	require.NoError(err)
	err = redisCli.Set(ctx, dailyLimitKey(identity, today), 2, 0).Err()
	require.NoError(err)

	cli := httpcli.New()
	resp, err := cli.Get(srv.URL + "/cleanup?key=wrong").Do(ctx)
	require.NoError(err)
	require.EqualValues(http.StatusUnauthorized, resp.StatusCode())
	resp.Close()

	resp, err = cli.Get(srv.URL + "/cleanup?key=cleanup-secret").Do(ctx)
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
	resp.Close()

	exists, err := redisCli.Exists(ctx, dailyLimitKey(identity, longAgo)).Result()
	require.NoError(err)
	require.EqualValues(0, exists)
	exists, err = redisCli.Exists(ctx, dailyLimitKey(identity, today)).Result()
	require.NoError(err)
	require.EqualValues(1, exists)
}

func (s *AcceptanceTestSuite) TestStoreEmail() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	srv := s.server(test, redisCli, s.config(redisCli, upstreamUrl, 3, 0))
	ctx := context.Background()

	cli := httpcli.New()
	resp, err := cli.Post(srv.URL+"/store-email").
		JsonRequestBody(map[string]string{"email": testIdentity()}).
		Do(ctx)
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
	resp.Close()

	keys, _, err := redisCli.Scan(ctx, 0, "email:*", 100).Result()
	require.NoError(err)
	require.NotEmpty(keys)

	resp, err = cli.Post(srv.URL+"/store-email").
		JsonRequestBody(map[string]string{}).
		Do(ctx)
	require.NoError(err)
	require.EqualValues(http.StatusBadRequest, resp.StatusCode())
	resp.Close()
}

func (s *AcceptanceTestSuite) TestHealth() {
	test, require := test.New(s.T())
	redisCli := s.redis(test)

	upstreamCalls := int64(0)
	upstreamUrl := s.upstreamMock(test, &upstreamCalls)
	srv := s.server(test, redisCli, s.config(redisCli, upstreamUrl, 3, 0))

	resp, err := httpcli.New().Get(srv.URL + "/health").Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
}

func (s *AcceptanceTestSuite) redis(test *test.Test) Redis {
	redisCli := NewRedis(test)
	return redisCli
}

func (s *AcceptanceTestSuite) server(test *test.Test, redisCli Redis, config conf.Remote) *httptest.Server {
	logger, err := log.New(log.WithLevel(log.DebugLevel))
	test.Assert().NoError(err)
	locator := assembly.NewLocator(logger)
	srv := httptest.NewServer(locator.Config(config, redisCli).Handler)
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *AcceptanceTestSuite) config(redisCli Redis, generationUrl string, perIdentityLimit int64, globalLimit int64) conf.Remote {
	return conf.Remote{
		Redis: &conf.Redis{Address: redisCli.Address()},
		Http:  conf.Http{MaxRequestBodySizeInMb: 1},
		Logging: conf.Logging{
			LogLevel:         log.DebugLevel,
			RequestLogEnable: true,
			BodyLogEnable:    true,
		},
		DailyLimit: conf.DailyLimit{
			RequestsPerDay:       perIdentityLimit,
			GlobalRequestsPerDay: globalLimit,
		},
		Generation: conf.Generation{Url: generationUrl, TimeoutInSec: 15},
		Cleanup:    conf.Cleanup{SecretKey: "cleanup-secret", IntervalInSec: 86400},
	}
}

func (s *AcceptanceTestSuite) upstreamMock(test *test.Test, calls *int64) string {
	upstream := httpt.NewMock(test)
	upstream.POST("/api/generate-program", func(ctx context.Context, httpReq *http.Request, req domain.WorkoutProfile) generatedProgram {
		atomic.AddInt64(calls, 1)
		resp := generatedProgram{}
		resp.Program.ProgramName = "Progressive Strength"
		return resp
	})
	return upstream.BaseURL() + "/api/generate-program"
}

func errorMessage(require *require.Assertions, resp *httpcli.Response) string {
	body, err := resp.UnsafeBody()
	require.NoError(err)
	errBody := errorResponse{}
	err = json.Unmarshal(body, &errBody)
	require.NoError(err)
	return errBody.Error
}

func validProfile() domain.WorkoutProfile {
	return domain.WorkoutProfile{
		FirstName: "Alex",
		Email:     fmt.Sprintf("%s@example.com", uuid.New().String()),
		Age:       30,
		Gender:    "male",
		Level:     "beginner",
		Type:      "Strength Training",
		Goal:      "Build muscles",
		Frequency: 3,
	}
}
