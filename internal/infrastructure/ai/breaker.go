// Package ai holds provider-independent wrappers around text generators.
package ai

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// BreakerConfig configures a GuardedGenerator
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	Interval            time.Duration
}

// GuardedGenerator stops calling a failing text generator for a while so
// requests skip straight to the non-AI searches instead of waiting out the
// generation timeout each time.
type GuardedGenerator struct {
	next    outbound.TextGenerator
	breaker *gobreaker.CircuitBreaker[string]
}

// NewGuardedGenerator wraps next with a circuit breaker
func NewGuardedGenerator(next outbound.TextGenerator, cfg BreakerConfig, logger *zap.Logger) *GuardedGenerator {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	logger = logger.Named("generator-breaker")

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Text generator circuit changed state",
				zap.String("generator", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &GuardedGenerator{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Name identifies the wrapped provider
func (g *GuardedGenerator) Name() string {
	return g.next.Name()
}

// Generate fails fast with gobreaker.ErrOpenState while the circuit is open
func (g *GuardedGenerator) Generate(ctx context.Context, prompt string, opts outbound.GenerateOptions) (string, error) {
	return g.breaker.Execute(func() (string, error) {
		return g.next.Generate(ctx, prompt, opts)
	})
}

// State reports the circuit state for health checks
func (g *GuardedGenerator) State() string {
	return g.breaker.State().String()
}
