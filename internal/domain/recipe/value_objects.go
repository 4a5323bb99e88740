package recipe

import (
	"net/url"
	"strconv"
)

// RankingPreferPantry asks the search API to rank recipes that use the
// supplied ingredients first.
const RankingPreferPantry = 2

// DefaultResultCount is the number of hits requested per search.
const DefaultResultCount = 10

// SearchParams describes one search attempt. Zero-valued fields are never
// transmitted: the API treats an empty filter differently from a missing one.
type SearchParams struct {
	Query              string
	Diet               string
	IncludeIngredients string
	Ranking            int
	Number             int
}

// HasPantryBoost reports whether the attempt restricts results to pantry items.
func (p SearchParams) HasPantryBoost() bool {
	return p.IncludeIngredients != ""
}

// Values encodes the non-empty fields as query parameters.
func (p SearchParams) Values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	setInt := func(key string, value int) {
		if value > 0 {
			values.Set(key, strconv.Itoa(value))
		}
	}

	set("query", p.Query)
	set("diet", p.Diet)
	set("includeIngredients", p.IncludeIngredients)
	setInt("ranking", p.Ranking)
	setInt("number", p.Number)
	return values
}
