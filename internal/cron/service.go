package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ticketehq/inventory-sync/pkg/logger"
	"github.com/ticketehq/inventory-sync/pkg/metrics"
)

const defaultInterval = 24 * time.Hour

// ServiceParams configure the scheduler.
type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Locks      LockFactory
	Metrics    *metrics.SyncJobMetrics
	RunOnStart bool
}

// Service drives each registered job on its own ticker. Jobs are
// independent: a slow month refresh never delays the ten minute today
// refresh. A per-job lock keeps overlapping runs of the same job from
// racing; an overlapped run is skipped, not queued.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	locks      LockFactory
	metrics    *metrics.SyncJobMetrics
	runOnStart bool
}

// NewService builds the scheduler.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("lock factory required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		locks:      params.Locks,
		metrics:    params.Metrics,
		runOnStart: params.RunOnStart,
	}, nil
}

// Run schedules every registered job until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var wg sync.WaitGroup
	for _, job := range s.registry.Jobs() {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.loop(ctx, job)
		}(job)
	}
	wg.Wait()
	s.logg.Info(ctx, "scheduler stopped")
	return ctx.Err()
}

func (s *Service) loop(ctx context.Context, job Job) {
	interval := job.Interval()
	if interval <= 0 {
		interval = defaultInterval
	}
	lock := s.locks(job.Name())

	if s.runOnStart {
		s.runLocked(ctx, job, lock)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLocked(ctx, job, lock)
		}
	}
}

func (s *Service) runLocked(ctx context.Context, job Job, lock Lock) {
	jobCtx := s.logg.WithJob(ctx, job.Name())

	locked, err := lock.Acquire(jobCtx)
	if err != nil {
		s.logg.Error(jobCtx, "lock acquire failed", err)
		return
	}
	if !locked {
		s.logg.Info(jobCtx, "previous run still holds the lock; skipping")
		return
	}
	defer func() {
		if relErr := lock.Release(jobCtx); relErr != nil {
			s.logg.Error(jobCtx, "failed to release job lock", relErr)
		}
	}()

	s.runJob(jobCtx, job)
}

func (s *Service) runJob(ctx context.Context, job Job) {
	s.logg.Info(ctx, "job start")
	start := time.Now()
	err := job.Run(ctx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	ctx = s.logg.WithField(ctx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(ctx, "job completed")
	s.recordSuccess(job.Name())
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
