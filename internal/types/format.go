package types

import (
	"github.com/pageza/dietrec/backend/internal/model"
	"github.com/pageza/dietrec/backend/internal/service"
)

// FormatRecipe maps a dataset row to its response record. distance may be nil.
func FormatRecipe(r *model.Recipe, distance *float64) RecipeOut {
	out := RecipeOut{
		Name:                  r.Name,
		CookTime:              r.CookTime,
		PrepTime:              r.PrepTime,
		TotalTime:             r.TotalTime,
		RecipeIngredientParts: nonNil(r.Ingredients),
		RecipeInstructions:    nonNil(r.Instructions),
		Distance:              distance,
	}

	nutrients := [model.NutritionDims]**float64{
		&out.Calories,
		&out.FatContent,
		&out.SaturatedFatContent,
		&out.CholesterolContent,
		&out.SodiumContent,
		&out.CarbohydrateContent,
		&out.FiberContent,
		&out.SugarContent,
		&out.ProteinContent,
	}
	for n, dst := range nutrients {
		if v, ok := r.NutrientValue(model.Nutrient(n)); ok {
			*dst = &v
		}
	}
	return out
}

// FormatResult maps every match in res, nearest first. The slice is never nil.
func FormatResult(res *service.Result) []RecipeOut {
	out := make([]RecipeOut, 0, len(res.Matches))
	for _, m := range res.Matches {
		var distance *float64
		if res.WithDistances {
			d := m.Distance
			distance = &d
		}
		out = append(out, FormatRecipe(m.Recipe, distance))
	}
	return out
}

// FormatDietPlan maps a diet plan to its response shape.
func FormatDietPlan(plan *service.DietPlan) *DietPlanOut {
	out := &DietPlanOut{
		BMI:                 plan.BMI,
		BMICategory:         plan.BMICategory,
		BMR:                 plan.BMR,
		MaintenanceCalories: plan.MaintenanceCalories,
		TargetCalories:      plan.TargetCalories,
		Plans:               make([]PlanOptionOut, 0, len(plan.Plans)),
		Meals:               make([]MealPlanOut, 0, len(plan.Meals)),
	}
	for _, p := range plan.Plans {
		out.Plans = append(out.Plans, PlanOptionOut{
			Plan:     string(p.Plan),
			Label:    p.Label,
			Calories: p.Calories,
			Loss:     p.Loss,
		})
	}
	for _, m := range plan.Meals {
		out.Meals = append(out.Meals, MealPlanOut{
			Meal:     m.Meal,
			Fraction: m.Fraction,
			Calories: m.Calories,
			Target:   m.Target,
			Recipes:  FormatResult(m.Result),
			Message:  m.Result.Message,
		})
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
