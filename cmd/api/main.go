package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/topology-backend/config"
	"github.com/GoSim-25-26J-441/topology-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/topology-backend/internal/logger"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/backup"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.Init(logger.New(os.Stderr, cfg.App.LogLevel, cfg.IsProduction()))
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open snapshot store", "driver", cfg.Store.Driver, "err", err)
	}
	defer closer.Close()

	graph := service.NewGraphService(store)
	if _, err := graph.ListGraph(ctx); err != nil {
		logger.Fatal("failed to load initial snapshot", "driver", cfg.Store.Driver, "err", err)
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Graph:          graph,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "store", store.Name(), "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Backup.Schedule != "" {
		scheduler, err := backup.NewScheduler(backup.New(graph, cfg.Backup.Dir, cfg.Backup.Keep), cfg.Backup.Schedule)
		if err != nil {
			logger.Fatal("failed to configure backups", "err", err)
		}
		g.Go(func() error { return scheduler.Start(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
