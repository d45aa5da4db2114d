package scheduler

import (
	"context"
	"fmt"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Scheduler runs periodic housekeeping next to the HTTP server.
type Scheduler struct {
	sched gocron.Scheduler
}

func New() (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{sched: sched}, nil
}

// AddNonceSweep purges expired nonces every interval. Jobs never overlap.
func (s *Scheduler) AddNonceSweep(store domain.NonceStore, interval time.Duration) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			SweepNonces(context.Background(), store)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("nonce-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule nonce sweep: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// SweepNonces runs one sweep with a bounded budget and logs the outcome.
func SweepNonces(ctx context.Context, store domain.NonceStore) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := store.Sweep(ctx)
	if err != nil {
		logger.DBLogger.Error("Nonce sweep failed", zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		logger.DBLogger.Info("Expired nonces swept", zap.Int64("removed", removed))
	}
	return removed, nil
}
