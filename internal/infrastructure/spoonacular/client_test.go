package spoonacular

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/savvykitchen/savvy/internal/domain/recipe"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

type recordedRequest struct {
	path  string
	query url.Values
}

type fakeUpstream struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{path: r.URL.Path, query: r.URL.Query()})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newTestClient(t *testing.T, upstream *fakeUpstream) *Client {
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL: server.URL + "/",
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}, nil, zaptest.NewLogger(t))
}

func TestSearchRecipes_SendsOnlyNonEmptyParams(t *testing.T) {
	upstream := &fakeUpstream{
		status: http.StatusOK,
		body:   `{"results":[{"id":1,"title":"Pasta al limone","image":"https://img/1.jpg"}],"offset":0,"number":10,"totalResults":1}`,
	}
	client := newTestClient(t, upstream)

	hits, err := client.SearchRecipes(context.Background(), recipe.SearchParams{Query: "pasta"})

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Pasta al limone", hits[0].Title)

	require.Len(t, upstream.requests, 1)
	req := upstream.requests[0]
	assert.Equal(t, "/recipes/complexSearch", req.path)
	assert.Equal(t, "pasta", req.query.Get("query"))
	assert.Equal(t, "test-key", req.query.Get("apiKey"))
	assert.Equal(t, "10", req.query.Get("number"))
	for _, key := range []string{"diet", "includeIngredients", "ranking"} {
		_, present := req.query[key]
		assert.False(t, present, "%s must be omitted", key)
	}
}

func TestSearchRecipes_PantryBoost(t *testing.T) {
	upstream := &fakeUpstream{status: http.StatusOK, body: `{"results":[]}`}
	client := newTestClient(t, upstream)

	_, err := client.SearchRecipes(context.Background(), recipe.SearchParams{
		Query:              "omelette",
		Diet:               "vegetarian",
		IncludeIngredients: "eggs, spinach",
		Ranking:            recipe.RankingPreferPantry,
	})

	require.NoError(t, err)
	q := upstream.requests[0].query
	assert.Equal(t, "vegetarian", q.Get("diet"))
	assert.Equal(t, "eggs, spinach", q.Get("includeIngredients"))
	assert.Equal(t, "2", q.Get("ranking"))
}

func TestSearchRecipes_ZeroMatchesIsEmptySlice(t *testing.T) {
	for _, body := range []string{`{"results":[],"totalResults":0}`, `{"totalResults":0}`} {
		client := newTestClient(t, &fakeUpstream{status: http.StatusOK, body: body})

		hits, err := client.SearchRecipes(context.Background(), recipe.SearchParams{Query: "zzz"})

		require.NoError(t, err)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	}
}

func TestSearchRecipes_ErrorStatusIsUpstreamError(t *testing.T) {
	client := newTestClient(t, &fakeUpstream{status: http.StatusPaymentRequired, body: `{"message":"quota exceeded"}`})

	_, err := client.SearchRecipes(context.Background(), recipe.SearchParams{Query: "soup"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUpstreamUnavailable))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestSearchRecipes_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "secret-key"}, nil, zaptest.NewLogger(t))
	_, err := client.SearchRecipes(context.Background(), recipe.SearchParams{Query: "soup"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUpstreamUnavailable))
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestGetRecipeInformation(t *testing.T) {
	body := `{"id":715538,"title":"Bruschetta","servings":4,"extendedIngredients":[` +
		`{"id":1,"name":"baguette","original":"1 baguette, sliced"},` +
		`{"id":2,"name":"tomatoes","original":"3 ripe tomatoes"}],"nutrition":{"calories":120}}`
	upstream := &fakeUpstream{status: http.StatusOK, body: body}
	client := newTestClient(t, upstream)

	detail, err := client.GetRecipeInformation(context.Background(), 715538)

	require.NoError(t, err)
	assert.Equal(t, "Bruschetta", detail.Title)
	assert.Equal(t, []string{"baguette", "tomatoes"}, detail.IngredientNames())
	assert.Equal(t, "3 ripe tomatoes", detail.ExtendedIngredients[1].Original)
	assert.JSONEq(t, body, string(detail.Raw))
	assert.Equal(t, "/recipes/715538/information", upstream.requests[0].path)
	assert.Equal(t, "test-key", upstream.requests[0].query.Get("apiKey"))
}

func TestGetRecipeInformation_NotFound(t *testing.T) {
	client := newTestClient(t, &fakeUpstream{status: http.StatusNotFound, body: `{"status":"failure"}`})

	_, err := client.GetRecipeInformation(context.Background(), 1)

	assert.Equal(t, apperrors.CodeRecipeNotFound, apperrors.GetCode(err))
}

func TestGetRecipeInformation_ServerError(t *testing.T) {
	client := newTestClient(t, &fakeUpstream{status: http.StatusInternalServerError, body: "boom"})

	_, err := client.GetRecipeInformation(context.Background(), 1)

	assert.Equal(t, apperrors.CodeUpstreamUnavailable, apperrors.GetCode(err))
}

func TestGetRecipeInformation_MalformedBody(t *testing.T) {
	client := newTestClient(t, &fakeUpstream{status: http.StatusOK, body: "<html>"})

	_, err := client.GetRecipeInformation(context.Background(), 1)

	assert.Equal(t, apperrors.CodeUpstreamUnavailable, apperrors.GetCode(err))
}
