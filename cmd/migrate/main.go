package main

import (
	"context"

	"shopcart/internal/config"
	"shopcart/internal/db"
	"shopcart/internal/migrate"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied")
}
