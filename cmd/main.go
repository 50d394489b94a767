package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/savantarmorer/sb1-kxlgah-sub002/cache"
	"github.com/savantarmorer/sb1-kxlgah-sub002/config"
	"github.com/savantarmorer/sb1-kxlgah-sub002/db"
	"github.com/savantarmorer/sb1-kxlgah-sub002/handlers"
	"github.com/savantarmorer/sb1-kxlgah-sub002/middleware"
	"github.com/savantarmorer/sb1-kxlgah-sub002/notify"
	"github.com/savantarmorer/sb1-kxlgah-sub002/ratelimit"
	"github.com/savantarmorer/sb1-kxlgah-sub002/realtime"
	"github.com/savantarmorer/sb1-kxlgah-sub002/repositories"
	api "github.com/savantarmorer/sb1-kxlgah-sub002/routes"
	"github.com/savantarmorer/sb1-kxlgah-sub002/services"
	"github.com/savantarmorer/sb1-kxlgah-sub002/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Archiving is optional: without R2 credentials completed tournaments
	// stay in Postgres only.
	var archiver services.Archiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewSnapshotArchiver(uploader, logger)
		logger.Info("tournament archiving enabled")
	}

	// The limiter is distributed when Redis is configured, in-process
	// otherwise.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = ratelimit.NewRedisSlidingWindow(redisClient, "ratelimit:", cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
		logger.Info("redis rate limiter enabled", slog.String("addr", cfg.RedisAddr))
	} else {
		limiter = ratelimit.NewSlidingWindow(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	readCache := cache.NewInMemory()
	defer readCache.Close()

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	txManager := repositories.NewTxManager(dbConn)

	tournamentService := services.NewTournamentService(
		tournamentRepo,
		participantRepo,
		matchRepo,
		ratingRepo,
		txManager,
		readCache,
		notify.NewFanout(wsHub, logger),
		limiter,
		archiver,
		logger,
	)
	logger.Info("services initialized")

	// Auto-start scheduler: sweeps registration-phase tournaments whose
	// start date has passed.
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go func() {
		ticker := time.NewTicker(cfg.SchedulerInterval)
		defer ticker.Stop()
		logger.Info("auto-start scheduler started", slog.Duration("interval", cfg.SchedulerInterval))

		if err := tournamentService.AutoStartDueTournaments(schedulerCtx); err != nil {
			logger.Error("scheduler: initial sweep failed", slog.Any("error", err))
		}
		for {
			select {
			case <-schedulerCtx.Done():
				return
			case <-ticker.C:
				if err := tournamentService.AutoStartDueTournaments(schedulerCtx); err != nil {
					logger.Error("scheduler: periodic sweep failed", slog.Any("error", err))
				}
			}
		}
	}()

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := api.InitRoutes(api.Handlers{
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Match:       handlers.NewMatchHandler(tournamentService),
		Leaderboard: handlers.NewLeaderboardHandler(tournamentService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, tournamentService, logger),
	}, auth)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopScheduler()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
