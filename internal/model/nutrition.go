package model

import "fmt"

// NutritionDims is the length of every nutrition vector.
const NutritionDims = 9

// Nutrient indexes into a NutritionVector.
type Nutrient int

// Fixed feature order shared by the dataset, the index and API callers.
const (
	Calories Nutrient = iota
	Fat
	SaturatedFat
	Cholesterol
	Sodium
	Carbohydrate
	Fiber
	Sugar
	Protein
)

// nutrientColumns are the dataset/JSON names, in vector order.
var nutrientColumns = [NutritionDims]string{
	"Calories",
	"FatContent",
	"SaturatedFatContent",
	"CholesterolContent",
	"SodiumContent",
	"CarbohydrateContent",
	"FiberContent",
	"SugarContent",
	"ProteinContent",
}

// Column returns the dataset column name for n.
func (n Nutrient) Column() string {
	if n < 0 || int(n) >= NutritionDims {
		return fmt.Sprintf("Nutrient(%d)", int(n))
	}
	return nutrientColumns[n]
}

// NutrientColumns returns the nine nutrition column names in vector order.
func NutrientColumns() []string {
	out := make([]string, NutritionDims)
	copy(out, nutrientColumns[:])
	return out
}

// NutritionVector holds the nine nutrition facts of a recipe in Nutrient order.
type NutritionVector [NutritionDims]float64

// NewNutritionVector converts a caller-supplied slice, rejecting any length
// other than NutritionDims.
func NewNutritionVector(values []float64) (NutritionVector, error) {
	var v NutritionVector
	if len(values) != NutritionDims {
		return v, fmt.Errorf("nutrition vector must have %d values, got %d", NutritionDims, len(values))
	}
	copy(v[:], values)
	return v, nil
}

// Slice returns the vector as a freshly allocated slice.
func (v NutritionVector) Slice() []float64 {
	out := make([]float64, NutritionDims)
	copy(out, v[:])
	return out
}
