package types

// RecipeOut is one recipe record in a response. Every key is always present;
// unknown nutrition values are null.
type RecipeOut struct {
	Name                  string   `json:"Name"`
	CookTime              string   `json:"CookTime"`
	PrepTime              string   `json:"PrepTime"`
	TotalTime             string   `json:"TotalTime"`
	RecipeIngredientParts []string `json:"RecipeIngredientParts"`
	RecipeInstructions    []string `json:"RecipeInstructions"`
	Calories              *float64 `json:"Calories"`
	FatContent            *float64 `json:"FatContent"`
	SaturatedFatContent   *float64 `json:"SaturatedFatContent"`
	CholesterolContent    *float64 `json:"CholesterolContent"`
	SodiumContent         *float64 `json:"SodiumContent"`
	CarbohydrateContent   *float64 `json:"CarbohydrateContent"`
	FiberContent          *float64 `json:"FiberContent"`
	SugarContent          *float64 `json:"SugarContent"`
	ProteinContent        *float64 `json:"ProteinContent"`
	// Distance is only set when the caller asked for distances.
	Distance *float64 `json:"Distance,omitempty"`
}

// PlanOptionOut is one weight plan in a diet plan response
type PlanOptionOut struct {
	Plan     string  `json:"plan"`
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
	Loss     string  `json:"loss"`
}

// MealPlanOut is one meal in a diet plan response
type MealPlanOut struct {
	Meal     string      `json:"meal"`
	Fraction float64     `json:"fraction"`
	Calories float64     `json:"calories"`
	Target   []float64   `json:"target"`
	Recipes  []RecipeOut `json:"recipes"`
	Message  string      `json:"message"`
}

// DietPlanOut is the output of the diet plan endpoint
type DietPlanOut struct {
	BMI                 float64         `json:"bmi"`
	BMICategory         string          `json:"bmi_category"`
	BMR                 float64         `json:"bmr"`
	MaintenanceCalories float64         `json:"maintenance_calories"`
	TargetCalories      float64         `json:"target_calories"`
	Plans               []PlanOptionOut `json:"plans"`
	Meals               []MealPlanOut   `json:"meals"`
}
