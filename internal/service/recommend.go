package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/pageza/dietrec/backend/internal/dataset"
	apperrors "github.com/pageza/dietrec/backend/internal/errors"
	"github.com/pageza/dietrec/backend/internal/logging"
	"github.com/pageza/dietrec/backend/internal/model"
)

// Envelope messages for recommendation outcomes.
const (
	MsgNoMatches = "No recipes found matching your criteria. Try adjusting your nutrition requirements or ingredients."
	msgSuccess   = "Successfully generated %d recipe recommendations"
	msgClamped   = " (requested %d, only %d candidate recipes available)"
)

// DefaultNeighbors is used when a query does not set a neighbor count.
const DefaultNeighbors = 5

// Query is one recommendation request.
type Query struct {
	// Nutrition is the target vector; it must have exactly model.NutritionDims values.
	Nutrition []float64
	// Ingredients are substrings every returned recipe must contain.
	Ingredients []string
	Neighbors   int
	// WithDistances attaches cosine distances to the matches.
	WithDistances bool
}

// Match is one recommended recipe.
type Match struct {
	Recipe *model.Recipe
	// Row is the recipe's position in the dataset table.
	Row      int
	Distance float64
}

// Result is an ordered recommendation, nearest first.
type Result struct {
	Matches       []Match
	WithDistances bool
	// Candidates is the number of rows that survived the ingredient filter.
	Candidates int
	// Clamped is set when fewer neighbors than requested were available.
	Clamped bool
	Message string
}

// TableProvider hands out the dataset.
type TableProvider interface {
	Table(ctx context.Context) (*dataset.Table, error)
}

// RecommendationOptions tunes the recommendation service.
type RecommendationOptions struct {
	// MaxNeighbors rejects queries asking for more neighbors. Zero disables the limit.
	MaxNeighbors int
	// Standardize z-scores the candidate matrix and query before the search.
	Standardize bool
}

// RecommendationService answers nutrition nearest-neighbor queries
type RecommendationService struct {
	tables TableProvider
	opts   RecommendationOptions
}

// NewRecommendationService creates a new RecommendationService instance
func NewRecommendationService(tables TableProvider, opts RecommendationOptions) *RecommendationService {
	return &RecommendationService{tables: tables, opts: opts}
}

// ValidateQuery checks a query without touching the dataset.
func (s *RecommendationService) ValidateQuery(q Query) error {
	if len(q.Nutrition) != model.NutritionDims {
		return apperrors.Newf(apperrors.CodeInvalidQuery,
			"nutrition_input must have exactly %d values, got %d", model.NutritionDims, len(q.Nutrition))
	}
	for i, v := range q.Nutrition {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.Newf(apperrors.CodeInvalidQuery,
				"nutrition_input[%d] (%s) must be a finite number", i, model.Nutrient(i).Column())
		}
	}
	if q.Neighbors < 1 {
		return apperrors.Newf(apperrors.CodeInvalidQuery, "n_neighbors must be at least 1, got %d", q.Neighbors)
	}
	if s.opts.MaxNeighbors > 0 && q.Neighbors > s.opts.MaxNeighbors {
		return apperrors.Newf(apperrors.CodeInvalidQuery,
			"n_neighbors must be at most %d, got %d", s.opts.MaxNeighbors, q.Neighbors)
	}
	return nil
}

// Recommend returns the recipes whose nutrition points in the direction
// closest to the query's. A filter that matches nothing is a successful,
// empty result; an empty dataset is an InsufficientData error.
func (s *RecommendationService) Recommend(ctx context.Context, q Query) (*Result, error) {
	if err := s.ValidateQuery(q); err != nil {
		return nil, err
	}

	table, err := s.tables.Table(ctx)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, apperrors.New(apperrors.CodeInsufficientData, "dataset is empty")
	}

	rows := table.CompleteRows()
	if len(rows) == 0 {
		return nil, apperrors.New(apperrors.CodeInsufficientData, "dataset has no rows with complete nutrition")
	}

	terms := normalizeTerms(q.Ingredients)
	candidates := filterRows(table, rows, terms)
	log := logging.Ctx(ctx)
	log.Debug().
		Int("indexed", len(rows)).
		Int("candidates", len(candidates)).
		Strs("ingredients", terms).
		Msg("Recommendation candidates")

	result := &Result{
		Matches:       []Match{},
		WithDistances: q.WithDistances,
		Candidates:    len(candidates),
	}
	if len(candidates) == 0 {
		result.Message = MsgNoMatches
		return result, nil
	}

	matrix := make([][]float64, len(candidates))
	for i, row := range candidates {
		matrix[i] = table.At(row).Nutrition.Slice()
	}
	target := append([]float64(nil), q.Nutrition...)
	if s.opts.Standardize {
		scaler := FitStandardScaler(matrix)
		matrix = scaler.TransformAll(matrix)
		target = scaler.Transform(target)
	}

	index, err := NewCosineIndex(matrix)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to build index", err)
	}
	neighbors, err := index.Query(target, q.Neighbors)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to query index", err)
	}

	for _, n := range neighbors {
		row := candidates[n.Row]
		result.Matches = append(result.Matches, Match{
			Recipe:   table.At(row),
			Row:      row,
			Distance: n.Distance,
		})
	}

	result.Message = fmt.Sprintf(msgSuccess, len(result.Matches))
	if q.Neighbors > len(candidates) {
		result.Clamped = true
		result.Message += fmt.Sprintf(msgClamped, q.Neighbors, len(candidates))
	}
	return result, nil
}

func normalizeTerms(ingredients []string) []string {
	terms := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if t := strings.ToLower(strings.TrimSpace(ing)); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// filterRows keeps the rows whose ingredient list mentions every term.
func filterRows(table *dataset.Table, rows []int, terms []string) []int {
	if len(terms) == 0 {
		return rows
	}
	out := make([]int, 0, len(rows))
	for _, row := range rows {
		if hasAllIngredients(table.At(row).Ingredients, terms) {
			out = append(out, row)
		}
	}
	return out
}

func hasAllIngredients(ingredients []string, terms []string) bool {
	lowered := make([]string, len(ingredients))
	for i, ing := range ingredients {
		lowered[i] = strings.ToLower(ing)
	}
	for _, term := range terms {
		found := false
		for _, ing := range lowered {
			if strings.Contains(ing, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
