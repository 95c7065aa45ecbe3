package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/auth"
	"github.com/jrennick/gambit/internal/broker"
	"github.com/jrennick/gambit/internal/config"
	"github.com/jrennick/gambit/internal/database"
	"github.com/jrennick/gambit/internal/engine"
	"github.com/jrennick/gambit/internal/fanout"
	"github.com/jrennick/gambit/internal/handlers"
	"github.com/jrennick/gambit/internal/store"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	auth.Init(cfg.TokenExpire)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()

	rdb, err := broker.Connect(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	br := broker.NewRedis(rdb, cfg.EventChannel, cfg.SettlementQueue, logger)
	games := store.NewPostgres(pool)
	eng := engine.NewService(games, br, logger)
	users := database.NewUsers(pool)

	registry := fanout.NewRegistry(logger)
	relay := fanout.NewRelay(registry, br, logger)
	go func() {
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Errorf("relay exited: %v", err)
		}
	}()

	// Flag expirations so abandoned clocks still end games.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := eng.SweepTimeouts(ctx); err != nil && ctx.Err() == nil {
					logger.Warnf("timeout sweep: %v", err)
				}
			}
		}
	}()

	srv := handlers.NewServer(eng, registry, users, logger)
	srv.TokenExpire = cfg.TokenExpire
	srv.PingInterval = cfg.PingInterval

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handlers.Routes(srv, logger),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Infof("listening on %s", cfg.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server exited: %v", err)
	}
}
