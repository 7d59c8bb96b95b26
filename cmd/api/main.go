package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopcart/internal/config"
	"shopcart/internal/db"
	"shopcart/internal/event"
	"shopcart/internal/httpserver"
	accountrepo "shopcart/internal/repository/account"
	cartrepo "shopcart/internal/repository/cart"
	orderrepo "shopcart/internal/repository/order"
	productrepo "shopcart/internal/repository/product"
	tokenrepo "shopcart/internal/repository/token"
	accountsvc "shopcart/internal/service/account"
	anonymoussvc "shopcart/internal/service/anonymous"
	cartsvc "shopcart/internal/service/cart"
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

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	carts := cartrepo.NewPostgres(dbpool)
	if cfg.RedisAddr != "" {
		rdb, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		carts = cartrepo.NewCached(carts, rdb, logger)
		logger.Info("cart read cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	var publisher cartsvc.Publisher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Fatal("connect to nats", zap.Error(err))
		}
		defer conn.Close()
		publisher = event.NewNATSPublisher(conn, logger)
		logger.Info("order events enabled", zap.String("url", cfg.NATSURL))
	}

	products := productrepo.NewPostgres(dbpool, logger)
	orders := orderrepo.NewPostgres(dbpool)
	accounts := accountrepo.NewPostgres(dbpool)
	tokens := tokenrepo.NewPostgres(dbpool)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:      cartsvc.New(carts, products, orders, publisher, logger),
		AccountSvc:   accountsvc.New(accounts, tokens),
		AnonymousSvc: anonymoussvc.New(tokens),
		Products:     products,
		Tokens:       tokens,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
