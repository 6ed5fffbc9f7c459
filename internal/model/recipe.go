package model

// Recipe is one row of the recipe dataset after normalization. Values are
// never mutated once the dataset table has been built.
type Recipe struct {
	// ID is the dataset RecipeId when present, otherwise the 1-based row number.
	ID           string
	Name         string
	CookTime     string
	PrepTime     string
	TotalTime    string
	Ingredients  []string
	Instructions []string
	Nutrition    NutritionVector
	// Present marks which nutrition values were parsed from the source row.
	// Missing values are zero in Nutrition and serialize as null.
	Present [NutritionDims]bool
}

// Complete reports whether all nine nutrition values are known. Only complete
// rows are placed in the nearest-neighbor index.
func (r *Recipe) Complete() bool {
	for _, ok := range r.Present {
		if !ok {
			return false
		}
	}
	return true
}

// NutrientValue returns the value for n and whether it is present.
func (r *Recipe) NutrientValue(n Nutrient) (float64, bool) {
	if n < 0 || int(n) >= NutritionDims {
		return 0, false
	}
	return r.Nutrition[n], r.Present[n]
}

// SetNutrient stores a parsed nutrition value.
func (r *Recipe) SetNutrient(n Nutrient, value float64) {
	r.Nutrition[n] = value
	r.Present[n] = true
}
