// Package recipe models the recipes served by the third-party recipe API.
package recipe

// RecipeSummary is one hit of a complex search.
type RecipeSummary struct {
	ID                    int    `json:"id"`
	Title                 string `json:"title"`
	Image                 string `json:"image,omitempty"`
	ImageType             string `json:"imageType,omitempty"`
	UsedIngredientCount   int    `json:"usedIngredientCount,omitempty"`
	MissedIngredientCount int    `json:"missedIngredientCount,omitempty"`
	Likes                 int    `json:"likes,omitempty"`
}

// Ingredient is an entry of a recipe's extendedIngredients list.
type Ingredient struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Original string  `json:"original"`
	Amount   float64 `json:"amount,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Aisle    string  `json:"aisle,omitempty"`
}

// RecipeDetail is the decoded recipes/{id}/information payload. Raw keeps the
// upstream body so it can be served unchanged.
type RecipeDetail struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	Image               string       `json:"image,omitempty"`
	Servings            int          `json:"servings,omitempty"`
	ReadyInMinutes      int          `json:"readyInMinutes,omitempty"`
	SourceURL           string       `json:"sourceUrl,omitempty"`
	Summary             string       `json:"summary,omitempty"`
	Instructions        string       `json:"instructions,omitempty"`
	Diets               []string     `json:"diets,omitempty"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients"`

	Raw []byte `json:"-"`
}

// IngredientNames returns the ingredient names in recipe order.
func (d *RecipeDetail) IngredientNames() []string {
	names := make([]string, 0, len(d.ExtendedIngredients))
	for _, ing := range d.ExtendedIngredients {
		names = append(names, ing.Name)
	}
	return names
}
