// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moodmix/internal/config"
	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/metrics"
)

const breakerName = "generation-backend"

// GuardedGenerator wraps a Generator with a client-side rate limiter and a
// circuit breaker. Both reject immediately with ErrGenerationUnavailable
// rather than queueing; nothing is retried.
type GuardedGenerator struct {
	next    Generator
	cb      *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
}

// NewGuardedGenerator wraps next using the breaker and rate settings of cfg.
// A RequestsPerMinute of 0 disables the limiter.
func NewGuardedGenerator(next Generator, cfg *config.GenerationConfig) *GuardedGenerator {
	minRequests := cfg.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 10
	}
	ratio := cfg.BreakerFailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	openTimeout := cfg.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = 2 * time.Minute
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1, // single trial request while half-open
		Interval:    time.Minute,
		Timeout:     openTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= ratio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening generation backend circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] Generation backend state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// A caller going away says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.RequestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), burst)
	}

	return &GuardedGenerator{next: next, cb: cb, limiter: limiter}
}

// Generate implements Generator.
func (g *GuardedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.limiter != nil && !g.limiter.Allow() {
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rate_limited").Inc()
		return "", fmt.Errorf("%w: local request rate exceeded", ErrGenerationUnavailable)
	}

	out, err := g.cb.Execute(func() (string, error) {
		return g.next.Generate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			logging.Ctx(ctx).Warn().Err(err).Msg("[CIRCUIT BREAKER] Generation request rejected")
			return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		if !errors.Is(err, ErrGenerationUnavailable) {
			err = fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
		}
		return "", err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return out, nil
}

// State returns the breaker state name for health reporting.
func (g *GuardedGenerator) State() string {
	return stateToString(g.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
