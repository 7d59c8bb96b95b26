package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shopcart/internal/config"
	"shopcart/internal/db"
	"shopcart/internal/event"
	eventrepo "shopcart/internal/repository/event"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.NATSURL == "" {
		logger.Fatal("NATS_URL is required for the worker")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logger.Fatal("connect to nats", zap.Error(err))
	}
	defer conn.Close()

	recorder := event.NewRecorder(eventrepo.NewPostgres(dbpool), logger)
	pool := event.NewWorkerPool(cfg.WorkerPoolSize, recorder, logger)

	sub, err := event.NewConsumer(conn, logger).Subscribe(pool)
	if err != nil {
		logger.Fatal("subscribe", zap.Error(err))
	}
	logger.Info("worker started",
		zap.String("subject", event.SubjectOrderPlaced),
		zap.Int("pool_size", cfg.WorkerPoolSize))

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stopCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	if err := sub.Drain(); err != nil {
		logger.Warn("drain subscription", zap.Error(err))
	}
	pool.Shutdown()
	logger.Info("worker stopped")
}
