// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package generation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/moodmix/internal/config"
)

// stubGenerator returns err (or "ok") and counts calls.
type stubGenerator struct {
	calls atomic.Int32
	err   error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return "ok", nil
}

func TestGuardedGenerator_PassesThrough(t *testing.T) {
	t.Parallel()
	stub := &stubGenerator{}
	g := NewGuardedGenerator(stub, &config.GenerationConfig{})

	out, err := g.Generate(context.Background(), "p")
	if err != nil || out != "ok" {
		t.Fatalf("Generate() = %q, %v", out, err)
	}
	if g.State() != "closed" {
		t.Errorf("State() = %q, want closed", g.State())
	}
}

func TestGuardedGenerator_TripsAndRejects(t *testing.T) {
	t.Parallel()
	stub := &stubGenerator{err: errors.New("connection refused")}
	g := NewGuardedGenerator(stub, &config.GenerationConfig{
		BreakerMinRequests:  4,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Hour,
	})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := g.Generate(ctx, "p"); !errors.Is(err, ErrGenerationUnavailable) {
			t.Fatalf("call %d error = %v, want ErrGenerationUnavailable", i, err)
		}
	}
	if g.State() != "open" {
		t.Fatalf("State() = %q, want open", g.State())
	}

	_, err := g.Generate(ctx, "p")
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("rejected call error = %v, want ErrGenerationUnavailable", err)
	}
	if n := stub.calls.Load(); n != 4 {
		t.Errorf("backend called %d times, want 4 (open circuit must not call through)", n)
	}
}

func TestGuardedGenerator_CanceledCallerDoesNotTrip(t *testing.T) {
	t.Parallel()
	stub := &stubGenerator{err: context.Canceled}
	g := NewGuardedGenerator(stub, &config.GenerationConfig{BreakerMinRequests: 2, BreakerFailureRatio: 0.5})

	for i := 0; i < 5; i++ {
		_, _ = g.Generate(context.Background(), "p")
	}
	if g.State() != "closed" {
		t.Errorf("State() = %q, want closed", g.State())
	}
}

func TestGuardedGenerator_RateLimited(t *testing.T) {
	t.Parallel()
	stub := &stubGenerator{}
	g := NewGuardedGenerator(stub, &config.GenerationConfig{RequestsPerMinute: 1})
	ctx := context.Background()

	if _, err := g.Generate(ctx, "p"); err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	if _, err := g.Generate(ctx, "p"); !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("second Generate() error = %v, want ErrGenerationUnavailable", err)
	}
	if n := stub.calls.Load(); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}

func TestStateConversions(t *testing.T) {
	t.Parallel()
	g := NewGuardedGenerator(&stubGenerator{}, &config.GenerationConfig{})
	if stateToFloat(g.cb.State()) != 0 {
		t.Error("closed state should map to 0")
	}
}
