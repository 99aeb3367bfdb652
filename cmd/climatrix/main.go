package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/climatrix/climatrix/db"
	"github.com/climatrix/climatrix/internal/auth"
	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/config"
	"github.com/climatrix/climatrix/internal/handlers"
	"github.com/climatrix/climatrix/internal/health"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/middleware"
	"github.com/climatrix/climatrix/internal/notify"
	"github.com/climatrix/climatrix/internal/router"
	"github.com/climatrix/climatrix/internal/scheduler"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/climatrix/climatrix/internal/weather"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Register()

	gdb, err := db.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate database")
	}
	st := store.New(gdb)

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if rdb, err = cache.Connect(cfg.Redis.URL); err != nil {
			logging.Fatal().Err(err).Msg("Failed to configure Redis")
		}
		defer rdb.Close()
	} else {
		logging.Warn().Msg("REDIS_URL not set, caching disabled")
	}
	cacheSvc := cache.New(rdb, cfg.Cache)

	tokens, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid auth configuration")
	}

	weatherClient := weather.NewClient(cfg.Weather)
	if !weatherClient.Configured() {
		logging.Warn().Msg("WEATHER_API_KEY not set, weather endpoints will answer 503")
	}

	notifier := notify.New(cfg.Notify)
	hub := handlers.NewAlertHub(cfg.Origins())

	checker := health.NewChecker().
		Critical("database", st).
		Optional("redis", health.PingFunc(func(ctx context.Context) error {
			if rdb == nil {
				return health.ErrSkipped
			}
			return cacheSvc.Ping(ctx)
		})).
		Optional("weather", health.PingFunc(func(context.Context) error {
			if !weatherClient.Configured() {
				return health.ErrSkipped
			}
			if state := weatherClient.BreakerState(); state == "open" {
				return errors.New("circuit breaker open")
			}
			return nil
		}))

	h := handlers.New(handlers.Deps{
		Store:    st,
		Cache:    cacheSvc,
		Tokens:   tokens,
		Weather:  weatherClient,
		Notifier: notifier,
		Hub:      hub,
		Health:   checker,
		Options: handlers.Options{
			SecureCookies: cfg.IsProduction(),
			CookieDomain:  cfg.Server.CookieDomain,
		},
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit.AuthRequestsPerSecond, cfg.RateLimit.AuthBurst)

	jobs := scheduler.NewScheduler(cfg.Scheduler, cfg.IngestCities(), scheduler.Deps{
		Store:    st,
		Cache:    cacheSvc,
		Weather:  weatherClient,
		Notifier: notifier,
		Hub:      hub,
	})
	if err := jobs.AddJob("limiter-cleanup", "@every 5m", func(context.Context) error {
		limiter.Cleanup()
		return nil
	}); err != nil {
		logging.Fatal().Err(err).Msg("Failed to schedule rate limiter cleanup")
	}
	if err := jobs.Start(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	engine := router.NewRouter(h, router.Options{
		AllowedOrigins: cfg.Origins(),
		Tokens:         tokens,
		AuthLimiter:    limiter,
		Hub:            hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Server.Port).Str("environment", cfg.Server.Environment).Msg("Climatrix API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	jobs.Stop()
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}
}
