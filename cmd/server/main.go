package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/braincoral/reefplan/internal/config"
	"github.com/braincoral/reefplan/internal/repository/mongodb"
	sheetsrepo "github.com/braincoral/reefplan/internal/repository/sheets"
	staticrepo "github.com/braincoral/reefplan/internal/repository/static"
	warehouserepo "github.com/braincoral/reefplan/internal/repository/warehouse"
	"github.com/braincoral/reefplan/internal/scheduler"
	"github.com/braincoral/reefplan/internal/server/handlers"
	"github.com/braincoral/reefplan/internal/server/router"
	"github.com/braincoral/reefplan/internal/service/planning"
	warehouseclient "github.com/braincoral/reefplan/pkg/clients/warehouse"
	"github.com/braincoral/reefplan/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var source planning.BatchSource
	switch cfg.Planning.BatchSource {
	case config.SourceWarehouse:
		client := warehouseclient.NewClient(cfg.Warehouse)
		source = warehouserepo.NewSource(client, baseLogger.Named("repo.warehouse"))
	case config.SourceSheet:
		source, err = sheetsrepo.NewSource(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets source", zap.Error(err))
		}
	case config.SourceStatic:
		source = staticrepo.NewSource(nil)
		baseLogger.Warn("running with an empty static inventory source")
	}

	planningSvc := planning.NewService(source, mongoRepo, baseLogger.Named("svc.planning"))
	planHandler := handlers.NewPlanHandler(planningSvc, cfg.Planning, baseLogger.Named("handlers.plans"))
	engine := router.New(planHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Planning, planningSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
