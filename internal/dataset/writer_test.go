package dataset

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dietrec/backend/internal/model"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	recipes := SampleRecipes()
	recipes[1].Present[model.Fat] = false
	recipes[2].Instructions = []string{}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, NewTable("mem", recipes)))

	table, stats, err := ParseCSV(strings.NewReader(buf.String()), "mem")
	require.NoError(t, err)
	require.Equal(t, len(recipes), table.Len())
	assert.Equal(t, 1, stats.Incomplete)
	assert.Empty(t, stats.CellWarnings)

	for i := range recipes {
		got := table.At(i)
		assert.Equal(t, recipes[i].ID, got.ID)
		assert.Equal(t, recipes[i].Name, got.Name)
		assert.Equal(t, recipes[i].TotalTime, got.TotalTime)
		assert.Equal(t, recipes[i].Ingredients, got.Ingredients)
		assert.Equal(t, recipes[i].Instructions, got.Instructions)
		assert.Equal(t, recipes[i].Present, got.Present)
	}
}

func TestWriteFileCompressed(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.csv.gz", "out.csv.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, SampleTable()))

		table, err := NewLoader(FileSource{Path: path}).Load(context.Background())
		require.NoError(t, err, name)
		assert.Equal(t, 5, table.Len(), name)
	}
}

func TestOptimize(t *testing.T) {
	recipes := SampleRecipes()
	recipes[0].Name = ""
	recipes[1].Ingredients = []string{}
	recipes[2].Name = strings.Repeat("é", 20)
	recipes[2].Nutrition[model.Calories] = 480.123456789

	out, report := Optimize(NewTable("in", recipes), OptimizeOptions{MaxLen: 8})
	assert.Equal(t, OptimizeReport{Input: 5, Dropped: 2, Output: 3}, report)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, strings.Repeat("é", 8), out.At(0).Name)
	assert.Equal(t, float64(float32(480.123456789)), out.At(0).Nutrition[model.Calories])
	assert.Equal(t, "Greek Sa", out.At(1).Name)
	assert.Equal(t, "feta che", out.At(1).Ingredients[3])

	// The input table is not modified.
	assert.Equal(t, "feta cheese", recipes[3].Ingredients[3])
}

func TestOptimizeSampleDeterministic(t *testing.T) {
	recipes := make([]model.Recipe, 0, 50)
	for range 10 {
		recipes = append(recipes, SampleRecipes()...)
	}
	for i := range recipes {
		recipes[i].ID = strings.Repeat("x", i+1)
	}
	in := NewTable("in", recipes)

	opts := OptimizeOptions{Sample: 7, Seed: 42}
	a, _ := Optimize(in, opts)
	b, _ := Optimize(in, opts)
	require.Equal(t, 7, a.Len())

	prev := 0
	for i := range a.Len() {
		assert.Equal(t, a.At(i).ID, b.At(i).ID)
		assert.Greater(t, len(a.At(i).ID), prev, "sample keeps source order")
		prev = len(a.At(i).ID)
	}
}
