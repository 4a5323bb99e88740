package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
	"github.com/savvykitchen/savvy/test/testutils"
)

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string, outbound.GenerateOptions) (string, error) {
	panic("model crashed")
}

func (panickingGenerator) Name() string { return "panicking" }

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, _ string, _ outbound.GenerateOptions) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (slowGenerator) Name() string { return "slow" }

func newInterpreter(t *testing.T, gen outbound.TextGenerator) *Interpreter {
	return NewInterpreter(gen, Config{Timeout: time.Second}, nil, zaptest.NewLogger(t))
}

func TestParse_Success(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("Generate", mock.Anything, BuildPrompt("something cheesy"), outbound.GenerateOptions{MaxTokens: DefaultMaxTokens}).
		Return(`"keywords": ["cheese", "pasta"]}`, nil).Once()

	result := newInterpreter(t, gen).Parse(context.Background(), "something cheesy")

	require.True(t, result.OK())
	assert.Equal(t, []string{"cheese", "pasta"}, result.Query.Keywords)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	gen.AssertExpectations(t)
}

func TestParse_SoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		err     error
		outcome string
	}{
		{"generation error", "", errors.New("connection refused"), OutcomeGeneration},
		{"missing keywords", `"ingredients": ["rice"]}`, nil, OutcomeNoKeywords},
		{"keywords not strings", `"keywords": [1, 2]}`, nil, OutcomeNoKeywords},
		{"keywords not array", `"keywords": "rice"}`, nil, OutcomeNoKeywords},
		{"empty keywords", `"keywords": []}`, nil, OutcomeNoKeywords},
		{"empty output", "   ", nil, OutcomeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &testutils.MockTextGenerator{}
			gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(tt.output, tt.err)

			result := newInterpreter(t, gen).Parse(context.Background(), "rice bowl")

			assert.False(t, result.OK())
			assert.Nil(t, result.Query)
			require.NotNil(t, result.Err)
			assert.Equal(t, apperrors.CodeInterpreterFailure, result.Err.Code)
			assert.Equal(t, tt.outcome, result.Outcome)
		})
	}
}

func TestParse_RepairsTruncatedOutput(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(`"keywords": ["tacos", "spicy"`, nil)

	result := newInterpreter(t, gen).Parse(context.Background(), "spicy tacos")

	require.True(t, result.OK())
	assert.Equal(t, []string{"tacos", "spicy"}, result.Query.Keywords)
}

func TestParse_NeverPanics(t *testing.T) {
	var result Result
	assert.NotPanics(t, func() {
		result = newInterpreter(t, panickingGenerator{}).Parse(context.Background(), "soup")
	})
	assert.False(t, result.OK())
	assert.Equal(t, OutcomePanic, result.Outcome)
}

func TestParse_TimeoutIsSoftFailure(t *testing.T) {
	interp := NewInterpreter(slowGenerator{}, Config{Timeout: 20 * time.Millisecond}, nil, zaptest.NewLogger(t))

	result := interp.Parse(context.Background(), "stew")

	assert.False(t, result.OK())
	assert.Equal(t, OutcomeGeneration, result.Outcome)
	assert.ErrorIs(t, result.Err, context.DeadlineExceeded)
}

func TestParse_NoGenerator(t *testing.T) {
	result := newInterpreter(t, nil).Parse(context.Background(), "salad")

	assert.False(t, result.OK())
	assert.Equal(t, OutcomeUnavailable, result.Outcome)
}

func TestBuildPrompt_ContainsLiteralQuery(t *testing.T) {
	prompt := BuildPrompt("cheap vegan lunch")
	assert.Contains(t, prompt, "Parse the query: 'cheap vegan lunch'")
	assert.Contains(t, prompt, instructionPreamble)
	assert.True(t, prompt[len(prompt)-1] == '{')
}
