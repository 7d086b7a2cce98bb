package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/officefinder/internal/app"
	"github.com/Freeeeeet/officefinder/internal/config"
	"github.com/Freeeeeet/officefinder/internal/controller"
	"github.com/Freeeeeet/officefinder/internal/lock"
	"github.com/Freeeeeet/officefinder/internal/notify"
	"github.com/Freeeeeet/officefinder/internal/repository"
	"github.com/Freeeeeet/officefinder/internal/repository/base"
	"github.com/Freeeeeet/officefinder/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Границы ожидания и удержания advisory-блокировки рейтинга
const (
	ratingLockWait = 1 * time.Second
	ratingLockHold = 3 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключаемся к базе
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	// Применяем миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории
	txManager := base.NewTxManager(pool)
	officeRepo := repository.NewOfficeRepository(pool)
	leaseRepo := repository.NewLeaseRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	// Сервисы
	registry := notify.NewRegistry(notify.DefaultWindowSize, logger)
	notificationService := service.NewNotificationService(registry, notificationRepo, logger)

	locker := lock.NewPGLocker(pool, ratingLockWait, ratingLockHold, logger)
	rating := service.NewRatingAggregator(locker, officeRepo, logger)

	leaseService := service.NewLeaseService(txManager, officeRepo, leaseRepo, customerRepo, notificationService, logger)
	reviewService := service.NewReviewService(txManager, reviewRepo, leaseRepo, officeRepo, rating, logger)

	// Фоновый планировщик завершения просроченных аренд
	scheduler := app.NewScheduler(leaseService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// HTTP-сервер
	router := controller.NewRouter(leaseService, reviewService, notificationService, logger)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
