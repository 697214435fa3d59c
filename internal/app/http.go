package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adanyl0v/tracklin/internal/config"
	"github.com/adanyl0v/tracklin/internal/delivery/http/middleware"
	"github.com/adanyl0v/tracklin/internal/delivery/http/v1"
	"github.com/adanyl0v/tracklin/internal/repository"
	"github.com/adanyl0v/tracklin/internal/repository/memory"
	"github.com/adanyl0v/tracklin/internal/repository/postgres"
	"github.com/adanyl0v/tracklin/internal/services"
)

type stores struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	pinger   repository.Pinger
}

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	mustRegisterRoutes(router)

	server := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill -9 can't be caught, so only SIGINT and SIGTERM shut down gracefully.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func mustRegisterRoutes(router gin.IRouter) {
	cfg := config.Global()

	loc, err := cfg.Tasks.Location()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to load tasks timezone")
		panic(err)
	}

	s := newStores(cfg.StorageDriver)

	authService := services.NewAuthService(
		globalLogger.With().Str("component", "auth").Logger(),
		s.users,
		s.sessions,
		services.AuthServiceOptions{
			JWTIssuer:          cfg.JWT.Issuer,
			JWTSigningKey:      []byte(cfg.JWT.SigningKey),
			JWTAccessTokenTTL:  cfg.JWT.AccessTokenTTL,
			JWTRefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
		},
	)
	taskService := services.NewTaskService(
		globalLogger.With().Str("component", "tasks").Logger(),
		s.tasks,
		services.TaskServiceOptions{StrictTime: cfg.Tasks.StrictTime},
	)

	v1Handler := v1.New(
		globalLogger.With().Str("component", "http").Logger(),
		authService,
		taskService,
		v1.Options{
			Location:      loc,
			Store:         s.pinger,
			SecureCookies: cfg.Env == config.EnvProd,
		},
	)

	limiter := middleware.NewRateLimiter(
		globalLogger.With().Str("component", "ratelimit").Logger(),
		globalRedisClient,
		cfg.RateLimit.AuthRequests,
		cfg.RateLimit.AuthWindow,
	)
	v1.RegisterRoutes(router.Group("/api/v1"), v1Handler, limiter.Handler())
}

func newStores(driver string) stores {
	switch driver {
	case config.StorageDriverMemory:
		globalLogger.Warn().Msg("using in-memory storage, data is lost on restart")
		return stores{
			tasks:    memory.NewTaskRepository(),
			users:    memory.NewUserRepository(),
			sessions: memory.NewSessionRepository(),
		}
	default:
		tasks := postgres.NewTaskRepository(globalLogger, globalPostgresPool)
		return stores{
			tasks:    tasks,
			users:    postgres.NewUserRepository(globalLogger, globalPostgresPool),
			sessions: postgres.NewSessionRepository(globalLogger, globalPostgresPool),
			pinger:   tasks,
		}
	}
}
