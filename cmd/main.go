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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"github.com/zdenkokanos/MTAA-backend/config"
	"github.com/zdenkokanos/MTAA-backend/db"
	"github.com/zdenkokanos/MTAA-backend/events"
	"github.com/zdenkokanos/MTAA-backend/handlers"
	"github.com/zdenkokanos/MTAA-backend/metrics"
	"github.com/zdenkokanos/MTAA-backend/push"
	"github.com/zdenkokanos/MTAA-backend/realtime"
	"github.com/zdenkokanos/MTAA-backend/repositories"
	api "github.com/zdenkokanos/MTAA-backend/routes"
	"github.com/zdenkokanos/MTAA-backend/services"
	"github.com/zdenkokanos/MTAA-backend/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "mtaa-backend",
		Usage: "tournament registration API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply the embedded database schema",
				Action: migrate,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func migrate(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := db.Migrate(c.Context, dbConn); err != nil {
		return err
	}
	logger.Info("database schema applied")
	return nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Cloudflare R2 опционален: без него загрузка изображений отвечает 503.
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(c.Context, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, image uploads are disabled")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	notifier := services.MultiNotifier{wsHub}
	if cfg.NATSURL != "" {
		natsConn, err := events.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer natsConn.Drain()
		notifier = append(notifier, events.NewNATSPublisher(natsConn, logger))
		logger.Info("NATS publisher connected", slog.String("url", natsConn.ConnectedUrl()))
	}

	// Репозитории
	tx := repositories.NewPostgresTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	pushTokenRepo := repositories.NewPostgresPushTokenRepository(dbConn)

	// Сервисы
	authService := services.NewAuthService(tx, userRepo, services.AuthConfig{
		JWTSecret:  []byte(cfg.JWTSecretKey),
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	}, logger)
	userService := services.NewUserService(tx, userRepo, tournamentRepo, membershipRepo, uploader, cfg.BcryptCost, logger)
	tournamentService := services.NewTournamentService(tx, tournamentRepo, categoryRepo, teamRepo, leaderboardRepo, uploader, logger)
	teamService := services.NewTeamService(tx, tournamentRepo, teamRepo, membershipRepo, services.NewRandomCodeGenerator(), notifier, m, logger)
	recommendationService := services.NewRecommendationService(userRepo, tournamentRepo, m, logger)

	expo := push.NewExpoClient(cfg.ExpoPushURL, cfg.PushRatePerSecond, &http.Client{Timeout: 10 * time.Second})
	notificationService := services.NewNotificationService(tournamentRepo, pushTokenRepo, expo, m, logger)

	scheduler, err := services.StartReminderScheduler(notificationService, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	// HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		User:       handlers.NewUserHandler(userService, recommendationService, notificationService),
		Team:       handlers.NewTeamHandler(teamService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
	}, api.Options{
		JWTSecret:          []byte(cfg.JWTSecretKey),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		Metrics:            m,
		Logger:             logger,
	})
	logger.Info("Routes configured")

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
