// Package query extracts structured search keywords from free-text recipe
// requests with a language model. Every failure is soft: Parse reports it in
// its Result and never returns an error or panics.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

const (
	instructionPreamble = `You are an expert at parsing user queries for a recipe search engine.
Extract the dishes, ingredients, cuisines, diets and cooking styles the user asks for.
Answer with one JSON object of the form {"keywords": ["keyword", ...]} and nothing else.`

	promptAnswerMarker = "JSON:"

	DefaultMaxTokens = 200
	DefaultTimeout   = 20 * time.Second
)

// Interpretation outcomes reported to metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeGeneration  = "generation_error"
	OutcomeMalformed   = "malformed"
	OutcomeNoKeywords  = "no_keywords"
	OutcomePanic       = "panic"
)

// StructuredQuery is the model's reading of a request. It is never persisted.
type StructuredQuery struct {
	Keywords []string `json:"keywords"`
}

// Result holds either a StructuredQuery or the reason interpretation failed.
type Result struct {
	Query   *StructuredQuery
	Err     *apperrors.AppError
	Outcome string
}

// OK reports whether a structured query was produced.
func (r Result) OK() bool {
	return r.Err == nil && r.Query != nil
}

func success(q *StructuredQuery) Result {
	return Result{Query: q, Outcome: OutcomeSuccess}
}

func failure(outcome, reason string, cause error) Result {
	return Result{Err: apperrors.NewInterpreterError(reason, cause), Outcome: outcome}
}

// Config bounds a single interpretation.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Interpreter runs one prompt completion per query.
type Interpreter struct {
	generator outbound.TextGenerator
	config    Config
	metrics   outbound.Metrics
	logger    *zap.Logger
}

// NewInterpreter creates an interpreter. A nil generator makes every Parse a
// soft failure, which sends callers down the no-AI path.
func NewInterpreter(generator outbound.TextGenerator, cfg Config, metrics outbound.Metrics, logger *zap.Logger) *Interpreter {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Interpreter{
		generator: generator,
		config:    cfg,
		metrics:   metrics,
		logger:    logger.Named("query-interpreter"),
	}
}

// BuildPrompt renders the fixed preamble around the literal user query. The
// trailing brace primes the model to continue a JSON object.
func BuildPrompt(queryText string) string {
	return fmt.Sprintf("%s\n\nParse the query: '%s'\n%s {", instructionPreamble, queryText, promptAnswerMarker)
}

// Parse interprets queryText.
func (i *Interpreter) Parse(ctx context.Context, queryText string) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = failure(OutcomePanic, "text generation panicked", fmt.Errorf("%v", r))
		}
		i.record(queryText, result, time.Since(start))
	}()

	if i.generator == nil {
		return failure(OutcomeUnavailable, "no text generator configured", nil)
	}

	genCtx, cancel := context.WithTimeout(ctx, i.config.Timeout)
	defer cancel()

	raw, err := i.generator.Generate(genCtx, BuildPrompt(queryText), outbound.GenerateOptions{
		MaxTokens:   i.config.MaxTokens,
		Temperature: i.config.Temperature,
	})
	if err != nil {
		return failure(OutcomeGeneration, "text generation failed", err)
	}

	return parseOutput(raw)
}

func parseOutput(raw string) Result {
	repaired, err := RepairJSON(raw)
	if err != nil {
		return failure(OutcomeMalformed, "model output could not be repaired", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
		return failure(OutcomeMalformed, "model output is not a JSON object", err)
	}

	rawKeywords, ok := fields["keywords"]
	if !ok {
		return failure(OutcomeNoKeywords, "model output missing 'keywords'", nil)
	}

	var keywords []string
	if err := json.Unmarshal(rawKeywords, &keywords); err != nil {
		return failure(OutcomeNoKeywords, "'keywords' is not an array of strings", err)
	}

	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) == 0 {
		return failure(OutcomeNoKeywords, "'keywords' is empty", nil)
	}

	return success(&StructuredQuery{Keywords: cleaned})
}

func (i *Interpreter) record(queryText string, result Result, elapsed time.Duration) {
	i.metrics.ObserveInterpretation(result.Outcome, elapsed)

	if result.OK() {
		i.logger.Info("AI parsing successful",
			zap.String("query", queryText),
			zap.Strings("keywords", result.Query.Keywords),
			zap.Duration("duration", elapsed))
		return
	}

	i.logger.Warn("AI parsing failed, using fallback logic",
		zap.String("query", queryText),
		zap.String("outcome", result.Outcome),
		zap.Error(result.Err),
		zap.Duration("duration", elapsed))
}
