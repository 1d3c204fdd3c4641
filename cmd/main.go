package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/repositories/memory"
	api "github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("storage", cfg.StorageDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeStore, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")
	deps.Publisher = wsHub

	svc := services.NewServices(deps)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament:      handlers.NewTournamentHandler(svc.Tournaments),
		Round:           handlers.NewRoundHandler(svc.Pairings, svc.Rounds),
		Match:           handlers.NewMatchHandler(svc.Rounds),
		Participant:     handlers.NewParticipantHandler(svc.Participants),
		RoundDefinition: handlers.NewRoundDefinitionHandler(svc.RoundDefinitions),
		WebSocket:       handlers.NewWebSocketHandler(wsHub, svc.Tournaments, handlers.OriginChecker(cfg.CORSAllowedOrigins), logger),
	}, api.Options{
		JWTSecret:          []byte(cfg.JWTSecretKey),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             logger,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// buildDependencies собирает репозитории и архив результатов под выбранный STORAGE_DRIVER.
func buildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Dependencies, func(), error) {
	var deps services.Dependencies
	closeStore := func() {}

	uploader, err := buildUploader(ctx, cfg, logger)
	if err != nil {
		return deps, closeStore, err
	}
	deps.Archiver = storage.NewResultsArchiver(uploader)
	deps.Logger = logger

	if cfg.StorageDriver == config.StorageDriverMemory {
		deps.Tournaments = memory.NewTournamentRepository()
		deps.RoundDefinitions = memory.NewRoundDefinitionRepository()
		deps.Participants = memory.NewParticipantRepository()
		deps.Matches = memory.NewMatchRepository()
		deps.Standings = memory.NewTournamentStandingRepository()
		deps.Tx = memory.NewTxManager()
		logger.Warn("using in-memory storage, data is lost on restart")
		return deps, closeStore, nil
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		return deps, closeStore, errors.Wrap(err, "connect to database")
	}
	closeStore = func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			closeStore()
			return deps, func() {}, errors.Wrap(err, "apply migrations")
		}
	}

	fillPostgresRepositories(&deps, dbConn, logger)
	return deps, closeStore, nil
}

func fillPostgresRepositories(deps *services.Dependencies, dbConn *sql.DB, logger *slog.Logger) {
	deps.Tournaments = repositories.NewPostgresTournamentRepository(dbConn)
	deps.RoundDefinitions = repositories.NewPostgresRoundDefinitionRepository(dbConn)
	deps.Participants = repositories.NewPostgresParticipantRepository(dbConn)
	deps.Matches = repositories.NewPostgresMatchRepository(dbConn)
	deps.Standings = repositories.NewPostgresTournamentStandingRepository(dbConn)
	deps.Tx = repositories.NewPostgresTxManager(dbConn, logger)
	logger.Info("Repositories initialized")
}

// Инициализация загрузчика файлов (Cloudflare R2); без настроек архив хранится в памяти.
func buildUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.FileUploader, error) {
	if !cfg.R2.Enabled() {
		// Без публичного адреса: архив в памяти не раздаётся по HTTP, resultsArchiveUrl остаётся пустым
		logger.Info("R2 is not configured, results archive kept in memory")
		return storage.NewMemoryUploader(""), nil
	}
	uploader, err := storage.NewCloudflareR2Uploader(ctx, cfg.R2, logger)
	if err != nil {
		return nil, errors.Wrap(err, "initialize Cloudflare R2 uploader")
	}
	logger.Info("Cloudflare R2 uploader initialized")
	return uploader, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
