package types

// PredictionIn represents the request body for the predict endpoint
type PredictionIn struct {
	NutritionInput []float64      `json:"nutrition_input" binding:"required,len=9"`
	Ingredients    []string       `json:"ingredients" binding:"omitempty,max=20,dive,max=100"`
	Params         *PredictParams `json:"params"`
}

// PredictParams are the optional neighbor search settings. Unset fields take
// the server defaults.
type PredictParams struct {
	NNeighbors     *int  `json:"n_neighbors" binding:"omitempty,min=1"`
	ReturnDistance *bool `json:"return_distance"`
}

// Neighbors returns the requested neighbor count or def.
func (p *PredictParams) Neighbors(def int) int {
	if p == nil || p.NNeighbors == nil {
		return def
	}
	return *p.NNeighbors
}

// WithDistances reports whether distances were requested.
func (p *PredictParams) WithDistances() bool {
	return p != nil && p.ReturnDistance != nil && *p.ReturnDistance
}

// MealIn is one meal's share of the daily calories
type MealIn struct {
	Name     string  `json:"name" binding:"required,max=50"`
	Fraction float64 `json:"fraction" binding:"gt=0,lte=1"`
}

// DietPlanRequest represents the request body for the diet plan endpoint
type DietPlanRequest struct {
	Age         int      `json:"age" binding:"required,min=1,max=120"`
	HeightCM    float64  `json:"height_cm" binding:"required,gt=0,max=300"`
	WeightKG    float64  `json:"weight_kg" binding:"required,gt=0,max=500"`
	Gender      string   `json:"gender" binding:"required,oneof=male female"`
	Activity    string   `json:"activity" binding:"required,oneof=sedentary light moderate very_active extra_active"`
	Plan        string   `json:"plan" binding:"required,oneof=maintain mild_loss loss extreme_loss"`
	Meals       []MealIn `json:"meals" binding:"omitempty,max=10,dive"`
	Ingredients []string `json:"ingredients" binding:"omitempty,max=20,dive,max=100"`
	NNeighbors  *int     `json:"n_neighbors" binding:"omitempty,min=1"`
}
