package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/Foetwenny/Penny-collection/internal/config"
	"github.com/Foetwenny/Penny-collection/internal/db"
	"github.com/Foetwenny/Penny-collection/internal/logging"
	"github.com/Foetwenny/Penny-collection/internal/migration"
	"github.com/Foetwenny/Penny-collection/internal/service"
	"github.com/Foetwenny/Penny-collection/internal/storage"
	"github.com/Foetwenny/Penny-collection/internal/storage/localstore"
	"github.com/Foetwenny/Penny-collection/internal/storage/sqlite"
	"github.com/Foetwenny/Penny-collection/internal/vision"
	"github.com/Foetwenny/Penny-collection/internal/vision/claude"
	"github.com/Foetwenny/Penny-collection/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx := context.Background()

	// The legacy key-value store is always opened: it is either the active
	// backend or the migration source.
	kv, err := localstore.OpenKV(cfg.LegacyStorePath, cfg.LegacyQuota)
	if err != nil {
		logger.Error("failed to open local store", "path", cfg.LegacyStorePath, "error", err)
		return
	}

	var backend storage.Backend
	switch cfg.StorageBackend {
	case "local":
		logger.Info("using local key-value backend", "path", cfg.LegacyStorePath)
		backend = localstore.New(kv, logger)
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
			return
		}
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()

		store := sqlite.New(database)
		result, err := migration.Run(ctx, kv, store, logger)
		if err != nil {
			logger.Error("legacy migration failed", "error", err)
			return
		}
		if result.Performed {
			logger.Info("legacy collection migrated",
				"albums", result.Albums, "legacy_key", result.Key)
		}
		backend = store
	}

	svc := service.New(backend, newAnalyzer(cfg, logger), logger)
	if err := svc.Load(ctx); err != nil {
		logger.Error("failed to load collection", "error", err)
		return
	}

	server := web.NewServer(svc, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newAnalyzer(cfg *config.Config, logger *slog.Logger) vision.Analyzer {
	if cfg.AnthropicAPIKey == "" {
		logger.Info("ANTHROPIC_API_KEY not set, AI analysis disabled")
		return nil
	}
	logger.Info("AI analysis enabled", "model", cfg.AnthropicModel)
	return claude.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
}
