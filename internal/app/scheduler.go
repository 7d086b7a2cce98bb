package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/officefinder/internal/service"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	leaseService *service.LeaseService
	logger       *zap.Logger
	stopChan     chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(leaseService *service.LeaseService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		leaseService: leaseService,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	// Запускаем задачу завершения просроченных аренд
	go s.runLeaseExpiryTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runLeaseExpiryTask периодически переводит просроченные аренды в EXPIRED
func (s *Scheduler) runLeaseExpiryTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.expireLeases(ctx)

	// Создаём ticker для периодического запуска (раз в сутки)
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireLeases(ctx)
		case <-s.stopChan:
			s.logger.Info("Lease expiry task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Lease expiry task cancelled")
			return
		}
	}
}

// expireLeases завершает все аренды, закончившиеся до начала текущих суток.
// Повторный запуск с тем же cutoff ничего не меняет - выбираются только
// ещё не завершённые записи.
func (s *Scheduler) expireLeases(ctx context.Context) {
	s.logger.Info("Starting lease expiry sweep")

	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count, err := s.leaseService.ExpireLeasesEndingBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to expire leases", zap.Error(err))
		return
	}

	s.logger.Info("Lease expiry sweep completed",
		zap.Int64("expired_count", count),
		zap.Time("cutoff", cutoff),
	)
}
