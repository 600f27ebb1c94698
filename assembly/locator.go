package assembly

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
	"workout-gate-service/conf"
	"workout-gate-service/handler"
	"workout-gate-service/middleware"
	"workout-gate-service/proxy"
	"workout-gate-service/repository"
	"workout-gate-service/service"
)

type Locator struct {
	logger log.Logger
}

func NewLocator(logger log.Logger) Locator {
	return Locator{
		logger: logger,
	}
}

type Config struct {
	Handler http.Handler
	Cleanup service.Cleanup
}

func (l Locator) Config(config conf.Remote, redisCli redis.UniversalClient) Config {
	dailyLimitRepo := repository.NewDailyLimit(redisCli)
	dailyLimitService := service.NewDailyLimit(dailyLimitRepo, config.DailyLimit)
	throttlingService := service.NewThrottling(config.Throttling)
	cleanupService := service.NewCleanup(dailyLimitRepo)
	emailRepo := repository.NewEmail(redisCli)

	generationProxy := proxy.NewGeneration(
		httpcli.New(),
		config.Generation.Url,
		time.Duration(config.Generation.TimeoutInSec)*time.Second,
	)

	maxRequestBodySize := config.Http.MaxRequestBodySizeInMb * 1024 * 1024 //nolint:gomnd

	generate := middleware.Chain(
		generationProxy,
		middleware.RequestId(),
		middleware.Logger(l.logger, config.Logging.RequestLogEnable, config.Logging.BodyLogEnable),
		middleware.ErrorHandler(l.logger),
		middleware.Throttling(throttlingService),
		middleware.Identify(),
		middleware.DailyLimit(dailyLimitService),
	)
	cleanup := middleware.Chain(
		handler.NewCleanup(cleanupService, config.Cleanup.SecretKey),
		middleware.RequestId(),
		middleware.Logger(l.logger, config.Logging.RequestLogEnable, false),
		middleware.ErrorHandler(l.logger),
	)
	storeEmail := middleware.Chain(
		handler.NewStoreEmail(emailRepo),
		middleware.RequestId(),
		middleware.Logger(l.logger, config.Logging.RequestLogEnable, config.Logging.BodyLogEnable),
		middleware.ErrorHandler(l.logger),
	)
	health := middleware.Chain(
		handler.NewHealth(dailyLimitRepo),
		middleware.RequestId(),
		middleware.ErrorHandler(l.logger),
	)

	router := mux.NewRouter()
	router.Handle("/generate", middleware.Entrypoint(maxRequestBodySize, generate, l.logger, "/generate")).
		Methods(http.MethodPost)
	router.Handle("/cleanup", middleware.Entrypoint(maxRequestBodySize, cleanup, l.logger, "/cleanup")).
		Methods(http.MethodGet)
	router.Handle("/store-email", middleware.Entrypoint(maxRequestBodySize, storeEmail, l.logger, "/store-email")).
		Methods(http.MethodPost)
	router.Handle("/health", middleware.Entrypoint(maxRequestBodySize, health, l.logger, "/health")).
		Methods(http.MethodGet)

	return Config{
		Handler: router,
		Cleanup: cleanupService,
	}
}
