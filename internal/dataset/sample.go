package dataset

import (
	"strconv"

	"github.com/pageza/dietrec/backend/internal/model"
)

type sampleRow struct {
	name                      string
	cook, prep, total         string
	ingredients, instructions []string
	nutrition                 model.NutritionVector
}

var sampleRows = []sampleRow{
	{
		name: "Chicken Salad", cook: "15 min", prep: "10 min", total: "25 min",
		ingredients:  []string{"chicken breast", "lettuce", "tomatoes", "olive oil"},
		instructions: []string{"Cook chicken", "Chop vegetables", "Mix ingredients"},
		nutrition:    model.NutritionVector{350, 12, 2, 85, 450, 8, 3, 4, 45},
	},
	{
		name: "Vegetarian Pasta", cook: "20 min", prep: "15 min", total: "35 min",
		ingredients:  []string{"pasta", "tomatoes", "basil", "olive oil"},
		instructions: []string{"Boil pasta", "Prepare sauce", "Combine ingredients"},
		nutrition:    model.NutritionVector{420, 8, 1, 0, 380, 75, 6, 8, 12},
	},
	{
		name: "Salmon with Rice", cook: "25 min", prep: "10 min", total: "35 min",
		ingredients:  []string{"salmon", "rice", "vegetables", "lemon"},
		instructions: []string{"Cook salmon", "Prepare rice", "Add vegetables"},
		nutrition:    model.NutritionVector{480, 18, 3, 95, 520, 45, 4, 2, 38},
	},
	{
		name: "Greek Salad", cook: "0 min", prep: "15 min", total: "15 min",
		ingredients:  []string{"cucumber", "tomatoes", "olives", "feta cheese"},
		instructions: []string{"Chop vegetables", "Mix ingredients", "Add dressing"},
		nutrition:    model.NutritionVector{180, 14, 6, 25, 680, 8, 3, 5, 6},
	},
	{
		name: "Beef Stir Fry", cook: "15 min", prep: "20 min", total: "35 min",
		ingredients:  []string{"beef", "vegetables", "soy sauce", "ginger"},
		instructions: []string{"Slice beef", "Stir fry vegetables", "Add sauce"},
		nutrition:    model.NutritionVector{380, 16, 5, 75, 720, 22, 5, 6, 32},
	},
}

// SampleRecipes returns the built-in five recipe test dataset.
func SampleRecipes() []model.Recipe {
	recipes := make([]model.Recipe, len(sampleRows))
	for i, row := range sampleRows {
		r := model.Recipe{
			ID:           strconv.Itoa(i + 1),
			Name:         row.name,
			CookTime:     row.cook,
			PrepTime:     row.prep,
			TotalTime:    row.total,
			Ingredients:  append([]string(nil), row.ingredients...),
			Instructions: append([]string(nil), row.instructions...),
		}
		for n := model.Calories; n <= model.Protein; n++ {
			r.SetNutrient(n, row.nutrition[n])
		}
		recipes[i] = r
	}
	return recipes
}

// SampleTable wraps SampleRecipes in a table.
func SampleTable() *Table {
	return NewTable("sample", SampleRecipes())
}
