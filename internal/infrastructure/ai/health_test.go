package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"github.com/savvykitchen/savvy/pkg/healthcheck"
	"github.com/savvykitchen/savvy/test/testutils"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealthChecker_Healthy(t *testing.T) {
	checker := NewHealthChecker(&testutils.MockTextGenerator{}, probeFunc(func(context.Context) error { return nil }), zaptest.NewLogger(t))

	check := checker.Check(context.Background())

	assert.Equal(t, healthcheck.StatusHealthy, check.Status)
	assert.Equal(t, "mock", check.Metadata.(map[string]interface{})["provider"])
}

func TestHealthChecker_ProbeFailureIsDegraded(t *testing.T) {
	checker := NewHealthChecker(&testutils.MockTextGenerator{}, probeFunc(func(context.Context) error {
		return errors.New("connection refused")
	}), zaptest.NewLogger(t))

	check := checker.Check(context.Background())

	assert.Equal(t, healthcheck.StatusDegraded, check.Status)
	assert.Contains(t, check.Message, "connection refused")
}

func TestHealthChecker_NoGenerator(t *testing.T) {
	check := NewHealthChecker(nil, nil, zaptest.NewLogger(t)).Check(context.Background())

	assert.Equal(t, healthcheck.StatusDegraded, check.Status)
}

func TestHealthChecker_ReportsOpenCircuit(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	guarded := NewGuardedGenerator(gen, BreakerConfig{ConsecutiveFailures: 1, OpenTimeout: time.Minute}, zaptest.NewLogger(t))
	_, _ = guarded.Generate(context.Background(), "p", testOpts)

	check := NewHealthChecker(guarded, nil, zaptest.NewLogger(t)).Check(context.Background())

	assert.Equal(t, healthcheck.StatusDegraded, check.Status)
	assert.Equal(t, "open", check.Metadata.(map[string]interface{})["circuit"])
}
