package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
	"github.com/savvykitchen/savvy/pkg/healthcheck"
)

// HealthProber is implemented by providers that expose a cheap reachability probe
type HealthProber interface {
	HealthCheck(ctx context.Context) error
}

// stateReporter is implemented by GuardedGenerator
type stateReporter interface {
	State() string
}

// HealthChecker reports text generator availability. Recommendations fall
// back to plain searches without it, so the worst it reports is degraded.
type HealthChecker struct {
	generator outbound.TextGenerator
	probe     HealthProber
	breaker   stateReporter
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHealthChecker creates a checker for the configured generator. probe may
// be nil when the provider has no health endpoint.
func NewHealthChecker(generator outbound.TextGenerator, probe HealthProber, logger *zap.Logger) *HealthChecker {
	h := &HealthChecker{
		generator: generator,
		probe:     probe,
		timeout:   5 * time.Second,
		logger:    logger.Named("ai-health"),
	}
	if s, ok := generator.(stateReporter); ok {
		h.breaker = s
	}
	return h
}

// Check implements healthcheck.Checker
func (h *HealthChecker) Check(ctx context.Context) healthcheck.Check {
	start := time.Now()
	check := healthcheck.Check{
		Name:        "text_generator",
		Status:      healthcheck.StatusHealthy,
		LastChecked: start,
	}

	if h.generator == nil {
		check.Status = healthcheck.StatusDegraded
		check.Message = "No text generator configured"
		check.Duration = time.Since(start)
		return check
	}

	metadata := map[string]interface{}{
		"provider": h.generator.Name(),
	}

	if h.breaker != nil {
		state := h.breaker.State()
		metadata["circuit"] = state
		if state != "closed" {
			check.Status = healthcheck.StatusDegraded
			check.Message = fmt.Sprintf("Circuit %s", state)
		}
	}

	if h.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		if err := h.probe.HealthCheck(probeCtx); err != nil {
			h.logger.Warn("Text generator health check failed", zap.Error(err))
			check.Status = healthcheck.StatusDegraded
			check.Message = err.Error()
		}
	}

	check.Metadata = metadata
	check.Duration = time.Since(start)
	return check
}
