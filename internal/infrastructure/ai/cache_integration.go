package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

const meterName = "github.com/savvykitchen/savvy/internal/infrastructure/ai"

// DefaultGenerationTTL bounds how long a completion is reused.
const DefaultGenerationTTL = 24 * time.Hour

// CachedGenerator reuses completions for identical prompts. Users repeat
// queries often and local generation costs seconds per call.
type CachedGenerator struct {
	next   outbound.TextGenerator
	cache  outbound.CacheRepository
	ttl      time.Duration
	requests metric.Int64Counter
	logger   *zap.Logger
}

// NewCachedGenerator wraps next with a response cache
func NewCachedGenerator(next outbound.TextGenerator, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedGenerator {
	if ttl <= 0 {
		ttl = DefaultGenerationTTL
	}
	logger = logger.Named("cached-generator")

	requests, err := otel.Meter(meterName).Int64Counter(
		"savvy.generation.cache.requests",
		metric.WithDescription("Completion cache lookups by result"),
	)
	if err != nil {
		logger.Warn("Generation cache counter unavailable", zap.Error(err))
		requests = noop.Int64Counter{}
	}

	return &CachedGenerator{
		next:     next,
		cache:    cache,
		ttl:      ttl,
		requests: requests,
		logger:   logger,
	}
}

// Name identifies the wrapped provider
func (c *CachedGenerator) Name() string {
	return c.next.Name()
}

// Generate serves a cached completion or generates and stores a new one.
// Cache failures never fail generation.
func (c *CachedGenerator) Generate(ctx context.Context, prompt string, opts outbound.GenerateOptions) (string, error) {
	key := c.key(prompt, opts)

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		c.count(ctx, "hit")
		c.logger.Debug("Generation cache hit", zap.String("key", key))
		return string(cached), nil
	case errors.Is(err, outbound.ErrCacheMiss):
		c.count(ctx, "miss")
	default:
		c.count(ctx, "error")
		c.logger.Warn("Generation cache read failed", zap.Error(err))
	}

	out, err := c.next.Generate(ctx, prompt, opts)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, []byte(out), c.ttl); err != nil {
		c.logger.Warn("Generation cache write failed", zap.Error(err))
	}
	return out, nil
}

func (c *CachedGenerator) count(ctx context.Context, result string) {
	c.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (c *CachedGenerator) key(prompt string, opts outbound.GenerateOptions) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%.3f|%s", c.next.Name(), opts.MaxTokens, opts.Temperature, prompt)))
	return "generation:" + hex.EncodeToString(sum[:16])
}
