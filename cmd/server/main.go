package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kopimas-be/internal/catalog"
	"kopimas-be/internal/config"
	"kopimas-be/internal/db"
	"kopimas-be/internal/logger"
	"kopimas-be/internal/order"
	"kopimas-be/internal/report"
	"kopimas-be/internal/rest"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Swappable in tests.
var initDBFunc = db.InitDB

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	productRepo := catalog.NewRepository(database)
	productSvc := catalog.NewService(productRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo)

	reportRepo := report.NewRepository(database)
	reportSvc := report.NewService(reportRepo, orderRepo)

	return rest.NewRouter(productSvc, orderSvc, reportSvc, cfg.AppEnv)
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: newServer(cfg, database),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.L().Info("server listening",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.AppEnv),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.L().Info("server stopped")
		return nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}
