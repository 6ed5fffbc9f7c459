package service

import (
	"context"
)

// IRecommendationService defines the interface for nutrition nearest-neighbor queries
type IRecommendationService interface {
	ValidateQuery(q Query) error
	Recommend(ctx context.Context, q Query) (*Result, error)
}

// IDietPlanService defines the interface for diet plan operations
type IDietPlanService interface {
	Plan(ctx context.Context, req DietRequest) (*DietPlan, error)
}

var (
	_ IRecommendationService = (*RecommendationService)(nil)
	_ IDietPlanService       = (*DietPlanService)(nil)
	_ Recommender            = (*RecommendationService)(nil)
)
