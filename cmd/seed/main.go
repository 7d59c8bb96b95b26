package main

import (
	"context"

	"shopcart/internal/config"
	"shopcart/internal/db"
	productrepo "shopcart/internal/repository/product"
	"shopcart/internal/seed"
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

	if err := seed.Apply(ctx, productrepo.NewPostgres(pool, logger)); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied")
}
