package usecase

import (
	"context"
	"log/slog"
	"time"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// Scheduler wires the cron driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	requests []domain.TransformRequest
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring syncs of the given pages.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, requests []domain.TransformRequest, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, requests: requests, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil || len(s.requests) == 0 {
		return nil
	}

	job := func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// RunOnce syncs every configured page in order; failures are logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	for _, req := range s.requests {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.pipeline.Transform(ctx, req); err != nil && s.logger != nil {
			s.logger.Warn("scheduled transform failed",
				"page", req.PageIdentifier,
				"trigger", trigger.Format(time.RFC3339),
				"error", err)
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
