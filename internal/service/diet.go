package service

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	apperrors "github.com/pageza/dietrec/backend/internal/errors"
)

// Gender selects the BMR constant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Activity is a daily activity level.
type Activity string

const (
	ActivitySedentary   Activity = "sedentary"
	ActivityLight       Activity = "light"
	ActivityModerate    Activity = "moderate"
	ActivityVeryActive  Activity = "very_active"
	ActivityExtraActive Activity = "extra_active"
)

var activityMultipliers = map[Activity]float64{
	ActivitySedentary:   1.2,
	ActivityLight:       1.375,
	ActivityModerate:    1.55,
	ActivityVeryActive:  1.725,
	ActivityExtraActive: 1.9,
}

// WeightPlan is a calorie reduction plan.
type WeightPlan string

const (
	PlanMaintain    WeightPlan = "maintain"
	PlanMildLoss    WeightPlan = "mild_loss"
	PlanLoss        WeightPlan = "loss"
	PlanExtremeLoss WeightPlan = "extreme_loss"
)

// PlanOption describes one weight plan for a person.
type PlanOption struct {
	Plan     WeightPlan
	Label    string
	Weight   float64
	Loss     string
	Calories float64
}

var planOptions = []PlanOption{
	{Plan: PlanMaintain, Label: "Maintain weight", Weight: 1, Loss: "-0 kg/week"},
	{Plan: PlanMildLoss, Label: "Mild weight loss", Weight: 0.9, Loss: "-0.25 kg/week"},
	{Plan: PlanLoss, Label: "Weight loss", Weight: 0.8, Loss: "-0.5 kg/week"},
	{Plan: PlanExtremeLoss, Label: "Extreme weight loss", Weight: 0.6, Loss: "-1 kg/week"},
}

// Meal is a named share of the daily calories.
type Meal struct {
	Name     string
	Fraction float64
}

// DefaultMeals splits the day into breakfast, lunch and dinner.
func DefaultMeals() []Meal {
	return []Meal{
		{Name: "breakfast", Fraction: 0.3},
		{Name: "lunch", Fraction: 0.4},
		{Name: "dinner", Fraction: 0.3},
	}
}

// Person holds the body measurements a diet plan is computed from.
type Person struct {
	Age      int
	HeightCM float64
	WeightKG float64
	Gender   Gender
	Activity Activity
	Plan     WeightPlan
}

// DietRequest asks for a plan and per-meal recommendations.
type DietRequest struct {
	Person      Person
	Meals       []Meal
	Ingredients []string
	Neighbors   int
}

// MealPlan is the recommendation for one meal.
type MealPlan struct {
	Meal     string
	Fraction float64
	Calories float64
	Target   []float64
	Result   *Result
}

// DietPlan is the full answer to a DietRequest.
type DietPlan struct {
	BMI                 float64
	BMICategory         string
	BMR                 float64
	MaintenanceCalories float64
	TargetCalories      float64
	Plans               []PlanOption
	Meals               []MealPlan
}

// Recommender is satisfied by RecommendationService.
type Recommender interface {
	Recommend(ctx context.Context, q Query) (*Result, error)
}

// DietPlanService turns body measurements into per-meal recipe recommendations
type DietPlanService struct {
	recommender Recommender

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDietPlanService creates a new DietPlanService instance. rng draws the
// non-calorie targets; nil seeds a fresh generator.
func NewDietPlanService(recommender Recommender, rng *rand.Rand) *DietPlanService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &DietPlanService{recommender: recommender, rng: rng}
}

// BMI returns the body mass index rounded to two decimals.
func BMI(weightKG, heightCM float64) float64 {
	m := heightCM / 100
	return math.Round(weightKG/(m*m)*100) / 100
}

// BMICategory classifies a BMI value.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obesity"
	}
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(p Person) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Gender == GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// MaintenanceCalories is BMR scaled by activity level.
func MaintenanceCalories(p Person) (float64, error) {
	mult, ok := activityMultipliers[p.Activity]
	if !ok {
		return 0, apperrors.Newf(apperrors.CodeInvalidQuery, "unknown activity level %q", p.Activity)
	}
	return BMR(p) * mult, nil
}

// Plan computes the person's calorie budget and asks the recommender for
// recipes near each meal's target.
func (s *DietPlanService) Plan(ctx context.Context, req DietRequest) (*DietPlan, error) {
	if err := validatePerson(req.Person); err != nil {
		return nil, err
	}
	meals := req.Meals
	if len(meals) == 0 {
		meals = DefaultMeals()
	}
	if err := validateMeals(meals); err != nil {
		return nil, err
	}
	neighbors := req.Neighbors
	if neighbors == 0 {
		neighbors = DefaultNeighbors
	}

	maintenance, err := MaintenanceCalories(req.Person)
	if err != nil {
		return nil, err
	}

	plan := &DietPlan{
		BMI:                 BMI(req.Person.WeightKG, req.Person.HeightCM),
		BMR:                 BMR(req.Person),
		MaintenanceCalories: maintenance,
		Plans:               make([]PlanOption, len(planOptions)),
		Meals:               make([]MealPlan, 0, len(meals)),
	}
	plan.BMICategory = BMICategory(plan.BMI)
	for i, opt := range planOptions {
		opt.Calories = math.Round(maintenance * opt.Weight)
		plan.Plans[i] = opt
		if opt.Plan == req.Person.Plan {
			plan.TargetCalories = maintenance * opt.Weight
		}
	}

	for _, meal := range meals {
		calories := meal.Fraction * plan.TargetCalories
		target := s.mealTarget(calories)
		res, err := s.recommender.Recommend(ctx, Query{
			Nutrition:   target,
			Ingredients: req.Ingredients,
			Neighbors:   neighbors,
		})
		if err != nil {
			return nil, err
		}
		plan.Meals = append(plan.Meals, MealPlan{
			Meal:     meal.Name,
			Fraction: meal.Fraction,
			Calories: calories,
			Target:   target,
			Result:   res,
		})
	}
	return plan, nil
}

// mealTarget draws a nutrition target around the meal's calorie budget.
func (s *DietPlanService) mealTarget(calories float64) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := func(lo, hi float64) float64 { return lo + s.rng.Float64()*(hi-lo) }
	return []float64{
		calories,
		u(10, 30),  // fat
		u(0, 4),    // saturated fat
		u(0, 30),   // cholesterol
		u(0, 400),  // sodium
		u(40, 75),  // carbohydrate
		u(4, 10),   // fiber
		u(0, 10),   // sugar
		u(30, 100), // protein
	}
}

func validatePerson(p Person) error {
	switch {
	case p.Age < 1:
		return apperrors.New(apperrors.CodeInvalidQuery, "age must be positive")
	case p.HeightCM <= 0:
		return apperrors.New(apperrors.CodeInvalidQuery, "height_cm must be positive")
	case p.WeightKG <= 0:
		return apperrors.New(apperrors.CodeInvalidQuery, "weight_kg must be positive")
	case p.Gender != GenderMale && p.Gender != GenderFemale:
		return apperrors.Newf(apperrors.CodeInvalidQuery, "unknown gender %q", p.Gender)
	}
	if _, ok := activityMultipliers[p.Activity]; !ok {
		return apperrors.Newf(apperrors.CodeInvalidQuery, "unknown activity level %q", p.Activity)
	}
	for _, opt := range planOptions {
		if opt.Plan == p.Plan {
			return nil
		}
	}
	return apperrors.Newf(apperrors.CodeInvalidQuery, "unknown weight plan %q", p.Plan)
}

func validateMeals(meals []Meal) error {
	seen := make(map[string]bool, len(meals))
	var total float64
	for _, m := range meals {
		if m.Name == "" {
			return apperrors.New(apperrors.CodeInvalidQuery, "meal name must not be empty")
		}
		if seen[m.Name] {
			return apperrors.Newf(apperrors.CodeInvalidQuery, "duplicate meal %q", m.Name)
		}
		seen[m.Name] = true
		if m.Fraction <= 0 || m.Fraction > 1 {
			return apperrors.Newf(apperrors.CodeInvalidQuery, "meal %q fraction must be in (0, 1]", m.Name)
		}
		total += m.Fraction
	}
	if math.Abs(total-1) > 0.01 {
		return apperrors.Newf(apperrors.CodeInvalidQuery, "meal fractions must sum to 1, got %.2f", total)
	}
	return nil
}
