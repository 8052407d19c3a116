package main

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/handlers"
	"CaseKeeper/internal/middleware"
	"CaseKeeper/internal/repo"
	"CaseKeeper/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём регистратор zap
	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	caseRepo, err := openCaseRepository(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize storage", "storage", cfg.Storage, "error", err)
	}
	defer func() {
		if err := caseRepo.Close(); err != nil {
			sugar.Errorw("Failed to close storage", "error", err)
		}
	}()

	caseService := service.NewCaseService(caseRepo, sugar, cfg.Location)

	if cfg.SeedDemo {
		n, err := repo.SeedDemo(ctx, caseRepo, cfg.SeedCount, caseService.Now())
		if err != nil {
			sugar.Errorw("Demo seeding failed", "seeded", n, "error", err)
		} else if n > 0 {
			sugar.Infow("Demo cases seeded", "count", n)
		}
	}

	if !middleware.AdminEnabled(cfg.AdminPassword, cfg.AdminPasswordHash) {
		sugar.Warnw("No admin password configured: PUT and DELETE are open to everyone")
	}

	h := handlers.NewHandler(caseService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"Storage", cfg.Storage,
		"DataFile", cfg.DataFile,
		"Timezone", cfg.Timezone,
		"StaticDir", cfg.StaticDir,
		"CORSOrigins", cfg.CORSOrigins,
		"SeedDemo", cfg.SeedDemo,
	)

	srv := &http.Server{Addr: addr, Handler: h.Router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Graceful shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

func newLogger(jsonOutput bool) (*zap.Logger, error) {
	if jsonOutput {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func openCaseRepository(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (repo.CaseRepository, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return repo.NewMemoryCaseRepository(), nil
	case config.StorageFile:
		return repo.NewFileCaseRepository(cfg.DataFile, cfg.Location, sugar)
	case config.StorageSQL:
		gormDB, err := repo.InitDB(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return repo.NewGormCaseRepository(gormDB), nil
	case config.StorageMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return repo.NewMongoCaseRepository(connectCtx, cfg.MongoURI, cfg.MongoDB)
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
