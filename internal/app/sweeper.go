package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/service"
	"go.uber.org/zap"
)

// Sweeper управляет фоновой зачисткой истёкших броней
type Sweeper struct {
	reservations *service.ReservationService
	interval     time.Duration
	logger       *zap.Logger
	stopChan     chan struct{}
}

// NewSweeper создаёт новый свипер
func NewSweeper(reservations *service.ReservationService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		reservations: reservations,
		interval:     interval,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start запускает фоновую задачу
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting reservation sweeper", zap.Duration("interval", s.interval))

	go s.run(ctx)
}

// Stop останавливает фоновую задачу
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping reservation sweeper")
	close(s.stopChan)
}

// run периодически возвращает слоты истёкших броней в продажу
func (s *Sweeper) run(ctx context.Context) {
	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Reservation sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reservation sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	released, err := s.reservations.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to sweep expired reservations", zap.Error(err))
		return
	}

	if released > 0 {
		s.logger.Info("Expired reservations released", zap.Int("count", released))
	}
}
