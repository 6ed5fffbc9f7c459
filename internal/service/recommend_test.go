package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dietrec/backend/internal/dataset"
	apperrors "github.com/pageza/dietrec/backend/internal/errors"
	"github.com/pageza/dietrec/backend/internal/model"
)

var exampleTarget = []float64{500, 20, 5, 50, 300, 60, 8, 15, 25}

func sampleService(opts RecommendationOptions) *RecommendationService {
	return NewRecommendationService(dataset.NewStaticStore(dataset.SampleTable()), opts)
}

type failingTables struct{ err error }

func (f failingTables) Table(context.Context) (*dataset.Table, error) { return nil, f.err }

func assertSorted(t *testing.T, matches []Match) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
	}
}

func TestRecommendReturnsK(t *testing.T) {
	svc := sampleService(RecommendationOptions{})

	for k := 1; k <= 5; k++ {
		res, err := svc.Recommend(context.Background(), Query{Nutrition: exampleTarget, Neighbors: k})
		require.NoError(t, err)
		assert.Len(t, res.Matches, k)
		assert.False(t, res.Clamped)
		assert.Equal(t, 5, res.Candidates)
		assertSorted(t, res.Matches)
	}
}

func TestRecommendClampsK(t *testing.T) {
	svc := sampleService(RecommendationOptions{})

	res, err := svc.Recommend(context.Background(), Query{Nutrition: exampleTarget, Neighbors: 10})
	require.NoError(t, err)
	assert.Len(t, res.Matches, 5)
	assert.True(t, res.Clamped)
	assert.Contains(t, res.Message, "Successfully generated 5 recipe recommendations")
	assert.Contains(t, res.Message, "requested 10, only 5")
	assertSorted(t, res.Matches)
}

func TestRecommendIngredientFilter(t *testing.T) {
	svc := sampleService(RecommendationOptions{})

	res, err := svc.Recommend(context.Background(), Query{
		Nutrition:   exampleTarget,
		Ingredients: []string{"chicken"},
		Neighbors:   3,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Matches), 3)
	require.NotEmpty(t, res.Matches)
	for _, m := range res.Matches {
		found := false
		for _, ing := range m.Recipe.Ingredients {
			if strings.Contains(strings.ToLower(ing), "chicken") {
				found = true
			}
		}
		assert.True(t, found, m.Recipe.Name)
	}
}

func TestRecommendFilterIsCaseInsensitiveAnd(t *testing.T) {
	svc := sampleService(RecommendationOptions{})

	res, err := svc.Recommend(context.Background(), Query{
		Nutrition:   exampleTarget,
		Ingredients: []string{"TOMATO", " Olive Oil ", ""},
		Neighbors:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Candidates)

	names := make([]string, 0, len(res.Matches))
	for _, m := range res.Matches {
		names = append(names, m.Recipe.Name)
	}
	assert.ElementsMatch(t, []string{"Chicken Salad", "Vegetarian Pasta"}, names)
}

func TestRecommendFilterLiteral(t *testing.T) {
	svc := sampleService(RecommendationOptions{})

	// Regex metacharacters are matched literally.
	res, err := svc.Recommend(context.Background(), Query{
		Nutrition:   exampleTarget,
		Ingredients: []string{".*"},
		Neighbors:   1,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
}

func TestRecommendNoMatches(t *testing.T) {
	svc := sampleService(RecommendationOptions{})

	res, err := svc.Recommend(context.Background(), Query{
		Nutrition:   exampleTarget,
		Ingredients: []string{"durian"},
		Neighbors:   5,
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)
	assert.Equal(t, MsgNoMatches, res.Message)
	assert.Equal(t, 0, res.Candidates)
}

func TestRecommendEmptyDataset(t *testing.T) {
	svc := NewRecommendationService(dataset.NewStaticStore(dataset.NewTable("empty", nil)), RecommendationOptions{})

	_, err := svc.Recommend(context.Background(), Query{Nutrition: exampleTarget, Neighbors: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
}

func TestRecommendNoCompleteRows(t *testing.T) {
	recipes := dataset.SampleRecipes()
	for i := range recipes {
		recipes[i].Present[model.Sugar] = false
	}
	svc := NewRecommendationService(dataset.NewStaticStore(dataset.NewTable("partial", recipes)), RecommendationOptions{})

	_, err := svc.Recommend(context.Background(), Query{Nutrition: exampleTarget, Neighbors: 5})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
}

func TestRecommendSkipsIncompleteRows(t *testing.T) {
	recipes := dataset.SampleRecipes()
	recipes[0].Present[model.Fat] = false
	svc := NewRecommendationService(dataset.NewStaticStore(dataset.NewTable("partial", recipes)), RecommendationOptions{})

	res, err := svc.Recommend(context.Background(), Query{Nutrition: recipes[0].Nutrition.Slice(), Neighbors: 5})
	require.NoError(t, err)
	assert.Len(t, res.Matches, 4)
	for _, m := range res.Matches {
		assert.NotEqual(t, 0, m.Row)
	}
}

func TestRecommendRoundTrip(t *testing.T) {
	for _, standardize := range []bool{false, true} {
		svc := sampleService(RecommendationOptions{Standardize: standardize})
		table := dataset.SampleTable()

		for i := range table.Len() {
			res, err := svc.Recommend(context.Background(), Query{
				Nutrition:     table.At(i).Nutrition.Slice(),
				Neighbors:     1,
				WithDistances: true,
			})
			require.NoError(t, err)
			require.Len(t, res.Matches, 1)
			assert.Equal(t, i, res.Matches[0].Row)
			assert.Equal(t, table.At(i).Name, res.Matches[0].Recipe.Name)
			assert.InDelta(t, 0, res.Matches[0].Distance, 1e-9)
			assert.True(t, res.WithDistances)
		}
	}
}

func TestRecommendTiesKeepRowOrder(t *testing.T) {
	recipes := dataset.SampleRecipes()
	dup := recipes[3]
	dup.Name = "Double Greek Salad"
	for n := range dup.Nutrition {
		dup.Nutrition[n] *= 2
	}
	recipes = append([]model.Recipe{dup}, recipes...)
	svc := NewRecommendationService(dataset.NewStaticStore(dataset.NewTable("dup", recipes)), RecommendationOptions{})

	res, err := svc.Recommend(context.Background(), Query{Nutrition: recipes[4].Nutrition.Slice(), Neighbors: 2})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "Double Greek Salad", res.Matches[0].Recipe.Name)
	assert.Equal(t, "Greek Salad", res.Matches[1].Recipe.Name)
}

func TestRecommendInvalidQuery(t *testing.T) {
	svc := sampleService(RecommendationOptions{MaxNeighbors: 50})

	tests := []struct {
		name string
		q    Query
	}{
		{name: "short vector", q: Query{Nutrition: exampleTarget[:8], Neighbors: 5}},
		{name: "long vector", q: Query{Nutrition: append(append([]float64{}, exampleTarget...), 1), Neighbors: 5}},
		{name: "nil vector", q: Query{Neighbors: 5}},
		{name: "nan", q: Query{Nutrition: []float64{math.NaN(), 1, 1, 1, 1, 1, 1, 1, 1}, Neighbors: 5}},
		{name: "inf", q: Query{Nutrition: []float64{1, 1, 1, 1, math.Inf(1), 1, 1, 1, 1}, Neighbors: 5}},
		{name: "zero k", q: Query{Nutrition: exampleTarget, Neighbors: 0}},
		{name: "negative k", q: Query{Nutrition: exampleTarget, Neighbors: -3}},
		{name: "k above max", q: Query{Nutrition: exampleTarget, Neighbors: 51}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Recommend(context.Background(), tt.q)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
		})
	}
}

func TestRecommendInvalidQueryBeforeDataset(t *testing.T) {
	svc := NewRecommendationService(failingTables{err: errors.New("should not be called")}, RecommendationOptions{})

	_, err := svc.Recommend(context.Background(), Query{Nutrition: exampleTarget[:3], Neighbors: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}

func TestRecommendDatasetUnavailable(t *testing.T) {
	cause := apperrors.New(apperrors.CodeDatasetUnavailable, "failed to load dataset")
	svc := NewRecommendationService(failingTables{err: cause}, RecommendationOptions{})

	_, err := svc.Recommend(context.Background(), Query{Nutrition: exampleTarget, Neighbors: 1})
	assert.ErrorIs(t, err, apperrors.ErrDatasetUnavailable)
}
