package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
	"github.com/savvykitchen/savvy/test/testutils"
)

func TestCachedGenerator_MissThenStore(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("Generate", mock.Anything, "p", testOpts).Return(`"keywords": ["x"]}`, nil).Once()

	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, outbound.ErrCacheMiss).Once()
	cache.On("Set", mock.Anything, mock.AnythingOfType("string"), []byte(`"keywords": ["x"]}`), DefaultGenerationTTL).Return(nil).Once()

	cached := NewCachedGenerator(gen, cache, 0, zaptest.NewLogger(t))
	out, err := cached.Generate(context.Background(), "p", testOpts)

	require.NoError(t, err)
	assert.Equal(t, `"keywords": ["x"]}`, out)
	cache.AssertExpectations(t)
}

func TestCachedGenerator_HitSkipsModel(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, mock.Anything).Return([]byte("cached"), nil)

	out, err := NewCachedGenerator(gen, cache, 0, zaptest.NewLogger(t)).Generate(context.Background(), "p", testOpts)

	require.NoError(t, err)
	assert.Equal(t, "cached", out)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedGenerator_ErrorsAreNotCached(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	_, err := NewCachedGenerator(gen, cache, 0, zaptest.NewLogger(t)).Generate(context.Background(), "p", testOpts)

	assert.ErrorContains(t, err, "boom")
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedGenerator_KeyDependsOnOptions(t *testing.T) {
	cached := NewCachedGenerator(&testutils.MockTextGenerator{}, nil, 0, zaptest.NewLogger(t))

	a := cached.key("p", outbound.GenerateOptions{MaxTokens: 200})
	b := cached.key("p", outbound.GenerateOptions{MaxTokens: 100})

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cached.key("p", outbound.GenerateOptions{MaxTokens: 200}))
}

func TestCachedGenerator_CountsLookups(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	gen := &testutils.MockTextGenerator{}
	gen.On("Generate", mock.Anything, "p", testOpts).Return("fresh", nil).Once()
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, outbound.ErrCacheMiss).Once()
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	cache.On("Get", mock.Anything, mock.Anything).Return([]byte("fresh"), nil).Once()

	cached := NewCachedGenerator(gen, cache, 0, zaptest.NewLogger(t))
	for i := 0; i < 2; i++ {
		_, err := cached.Generate(context.Background(), "p", testOpts)
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byResult := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "savvy.generation.cache.requests" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				result, _ := dp.Attributes.Value(attribute.Key("result"))
				byResult[result.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"miss": 1, "hit": 1}, byResult)
}
