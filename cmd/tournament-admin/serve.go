package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"

	"github.com/Dosada05/tournament-admin/apiclient"
	"github.com/Dosada05/tournament-admin/config"
	"github.com/Dosada05/tournament-admin/db"
	"github.com/Dosada05/tournament-admin/handlers"
	"github.com/Dosada05/tournament-admin/live"
	"github.com/Dosada05/tournament-admin/middleware"
	"github.com/Dosada05/tournament-admin/repositories"
	"github.com/Dosada05/tournament-admin/routes"
	"github.com/Dosada05/tournament-admin/services"
	"github.com/Dosada05/tournament-admin/session"
	"github.com/Dosada05/tournament-admin/storage"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Args:  cobra.ExactArgs(0),
	Short: "Run the admin backend for the SPA",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve()
	},
}

func serve() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Настройка логгера
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("api_url", cfg.APIURL),
		slog.String("session_store", cfg.SessionStore))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	keys, err := session.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("derive session keys: %w", err)
	}
	sessOpts := session.Options{MaxAge: cfg.SessionMaxAge, Secure: cfg.SecureCookies}

	// Хранилище сессий: cookie или postgres
	var (
		store  sessions.Store
		purger services.ExpiredSessionPurger
		pinger handlers.Pinger
	)
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer closeDB(logger, dbConn)
		logger.Info("database connection established")

		if err := db.Migrate(ctx, dbConn); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		pgStore := session.NewPGStore(repositories.NewPostgresSessionRepository(dbConn), keys, sessOpts)
		store, purger, pinger = pgStore, pgStore, dbConn
	default:
		store = session.NewCookieStore(keys, sessOpts)
	}
	sessionManager := session.NewManager(store, sessOpts)

	client := apiclient.New(apiclient.Options{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, nil)

	// Архив файлов импорта (Cloudflare R2), если настроен
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("import archiving disabled: R2 is not configured")
	}

	// Инициализация WebSocket Hub
	hub := live.NewHub(logger)
	go hub.Run(ctx)

	// Инициализация сервисов
	editorService := services.NewEditorService(client, cfg.EditorIdleTTL, logger)
	authService := services.NewAuthService(client, editorService, logger)
	tournamentService := services.NewTournamentService(client, logger)
	teamService := services.NewTeamService(client, uploader, logger)
	matchService := services.NewMatchService(client, hub, logger)

	loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, cfg.TrustProxy, logger)

	janitor, err := services.NewJanitor(cfg.JanitorInterval, editorService, purger, logger)
	if err != nil {
		return fmt.Errorf("create janitor: %w", err)
	}
	if err := janitor.Every("cleanup-login-limiter", func() { loginLimiter.Cleanup() }); err != nil {
		return fmt.Errorf("create janitor: %w", err)
	}
	janitor.Start()
	defer func() {
		if err := janitor.Shutdown(); err != nil {
			logger.Error("failed to stop janitor", slog.Any("error", err))
		}
	}()

	// Настройка маршрутизатора
	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		CSRFEnabled:    cfg.CSRFEnabled,
		CSRFKey:        keys.CSRF,
		SecureCookies:  cfg.SecureCookies,
	}, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, sessionManager),
		Editor:     handlers.NewEditorHandler(editorService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Team:       handlers.NewTeamHandler(teamService),
		Match:      handlers.NewMatchHandler(matchService),
		Live:       handlers.NewLiveHandler(hub, cfg.AllowedOrigins),
		Health:     handlers.NewHealthHandler(version, pinger),
	}, sessionManager, loginLimiter, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		// websocket соединения не отслеживаются сервером, их закрывает остановка хаба.
		stop()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}

func closeDB(logger *slog.Logger, dbConn *sql.DB) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}
