package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dietrec/backend/internal/metrics"
	"github.com/pageza/dietrec/backend/internal/service"
	"github.com/pageza/dietrec/backend/internal/types"
)

const msgDietPlan = "Diet plan generated"

// DietPlanHandler serves calorie plans with per-meal recommendations
type DietPlanHandler struct {
	planner          service.IDietPlanService
	defaultNeighbors int
}

// NewDietPlanHandler creates a new DietPlanHandler instance
func NewDietPlanHandler(planner service.IDietPlanService, defaultNeighbors int) *DietPlanHandler {
	if defaultNeighbors < 1 {
		defaultNeighbors = service.DefaultNeighbors
	}
	return &DietPlanHandler{
		planner:          planner,
		defaultNeighbors: defaultNeighbors,
	}
}

// RegisterRoutes registers the diet plan route on router.
func (h *DietPlanHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/diet-plan", h.DietPlan)
}

// DietPlan computes the caller's calorie budget and recommends recipes for
// each meal.
func (h *DietPlanHandler) DietPlan(c *gin.Context) {
	var req types.DietPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	dreq := service.DietRequest{
		Person: service.Person{
			Age:      req.Age,
			HeightCM: req.HeightCM,
			WeightKG: req.WeightKG,
			Gender:   service.Gender(req.Gender),
			Activity: service.Activity(req.Activity),
			Plan:     service.WeightPlan(req.Plan),
		},
		Ingredients: req.Ingredients,
		Neighbors:   h.defaultNeighbors,
	}
	if req.NNeighbors != nil {
		dreq.Neighbors = *req.NNeighbors
	}
	for _, m := range req.Meals {
		dreq.Meals = append(dreq.Meals, service.Meal{Name: m.Name, Fraction: m.Fraction})
	}

	start := time.Now()
	plan, err := h.planner.Plan(c.Request.Context(), dreq)
	if err != nil {
		metrics.RecordRecommendation(outcomeFor(err), -1, time.Since(start))
		respondError(c, err, MsgDietPlanFailed)
		return
	}
	for _, m := range plan.Meals {
		metrics.RecordRecommendation(outcomeForResult(m.Result), m.Result.Candidates, time.Since(start))
	}

	c.JSON(http.StatusOK, types.Success(types.FormatDietPlan(plan), msgDietPlan))
}
