// Package spoonacular is the recipe API adapter. Every method makes exactly
// one upstream call; there are no retries.
package spoonacular

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

const (
	serviceName = "spoonacular"

	opInformation = "recipe_information"
	opSearch      = "complex_search"

	// Upstream error bodies are echoed into errors up to this size.
	maxErrorBody = 512
)

// Config configures the client
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	ResultCount int
}

// Client implements outbound.RecipeAPI over the Spoonacular REST API
type Client struct {
	baseURL     string
	apiKey      string
	resultCount int
	client      *http.Client
	metrics     outbound.Metrics
	logger      *zap.Logger
}

// NewClient creates a new Spoonacular client
func NewClient(cfg Config, metrics outbound.Metrics, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ResultCount <= 0 {
		cfg.ResultCount = recipe.DefaultResultCount
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}

	logger = logger.Named("spoonacular-client")
	if cfg.APIKey == "" {
		logger.Warn("No Spoonacular API key configured; upstream calls will be rejected")
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		resultCount: cfg.ResultCount,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		metrics: metrics,
		logger:  logger,
	}
}

type searchResponse struct {
	Results      []recipe.RecipeSummary `json:"results"`
	Offset       int                    `json:"offset"`
	Number       int                    `json:"number"`
	TotalResults int                    `json:"totalResults"`
}

// GetRecipeInformation fetches a recipe with its extended ingredients
func (c *Client) GetRecipeInformation(ctx context.Context, recipeID int) (*recipe.RecipeDetail, error) {
	path := fmt.Sprintf("/recipes/%d/information", recipeID)

	body, err := c.get(ctx, opInformation, path, url.Values{})
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(recipeID).WithCause(err)
		}
		return nil, err
	}

	var detail recipe.RecipeDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, apperrors.NewUpstreamError(serviceName, fmt.Errorf("failed to decode recipe %d: %w", recipeID, err))
	}
	detail.Raw = body

	return &detail, nil
}

// SearchRecipes runs a complex search. Only non-empty parameters are sent.
func (c *Client) SearchRecipes(ctx context.Context, params recipe.SearchParams) ([]recipe.RecipeSummary, error) {
	if params.Number <= 0 {
		params.Number = c.resultCount
	}

	body, err := c.get(ctx, opSearch, "/recipes/complexSearch", params.Values())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewUpstreamError(serviceName, fmt.Errorf("failed to decode search results: %w", err))
	}
	if resp.Results == nil {
		resp.Results = []recipe.RecipeSummary{}
	}

	c.logger.Debug("Search completed",
		zap.Int("results", len(resp.Results)),
		zap.Int("total_results", resp.TotalResults))

	return resp.Results, nil
}

// get issues a GET and returns the body of a 2xx response. 404 maps to a
// NOT_FOUND AppError, every other failure to UPSTREAM_UNAVAILABLE.
func (c *Client) get(ctx context.Context, operation, path string, query url.Values) ([]byte, error) {
	start := time.Now()
	status := "error"
	defer func() {
		c.metrics.ObserveUpstreamCall(serviceName, operation, status, time.Since(start))
	}()

	if c.apiKey != "" {
		query.Set("apiKey", c.apiKey)
	}
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewUpstreamError(serviceName, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Upstream request failed", zap.String("operation", operation), zap.Error(err))
		return nil, apperrors.NewUpstreamError(serviceName, redact(err, c.apiKey))
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError(serviceName, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cause := fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, truncate(body))
		c.logger.Warn("Upstream returned error status",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode))

		if resp.StatusCode == http.StatusNotFound {
			return nil, apperrors.NewNotFoundError("recipe").WithCause(cause)
		}
		return nil, apperrors.NewUpstreamError(serviceName, cause)
	}

	return body, nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

// redact keeps the API key out of transport errors, which quote the URL.
func redact(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), apiKey) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), apiKey, "REDACTED"))
}
