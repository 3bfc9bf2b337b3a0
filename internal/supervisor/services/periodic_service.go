// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package services

import (
	"context"
	"time"

	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/metrics"
)

// PeriodicService runs a maintenance task on a fixed interval.
//
// A failing run is logged and counted but does not stop the service, so a
// transient DuckDB checkpoint conflict does not trip the supervisor's
// backoff. The task receives the service context and must honor it.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
}

// NewPeriodicService creates a service running task every interval.
// A non-positive interval falls back to one minute.
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
	}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *PeriodicService) runOnce(ctx context.Context) {
	start := time.Now()
	if err := p.task(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.MaintenanceRuns.WithLabelValues(p.name, "failure").Inc()
		logging.Warn().Err(err).Str("task", p.name).Msg("Maintenance task failed")
		return
	}
	metrics.MaintenanceRuns.WithLabelValues(p.name, "success").Inc()
	logging.Debug().Str("task", p.name).Dur("duration", time.Since(start)).Msg("Maintenance task completed")
}

// String implements fmt.Stringer.
func (p *PeriodicService) String() string {
	return p.name
}

// LoopService adapts a component that owns its own loop, such as
// cache.MemoryStore.RunJanitor, to suture.Service.
type LoopService struct {
	name string
	run  func(ctx context.Context) error
}

// NewLoopService wraps run, which must block until ctx is canceled.
func NewLoopService(name string, run func(ctx context.Context) error) *LoopService {
	return &LoopService{name: name, run: run}
}

// Serve implements suture.Service.
func (l *LoopService) Serve(ctx context.Context) error {
	return l.run(ctx)
}

// String implements fmt.Stringer.
func (l *LoopService) String() string {
	return l.name
}
