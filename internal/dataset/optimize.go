package dataset

import (
	"math/rand/v2"
	"slices"

	"github.com/pageza/dietrec/backend/internal/model"
)

// OptimizeOptions controls Optimize.
type OptimizeOptions struct {
	// Sample is the number of rows kept. Zero or less keeps every row.
	Sample int
	Seed   uint64
	// MaxLen truncates names, durations and list items to this many runes.
	MaxLen int
}

// DefaultOptimizeOptions returns the settings used for deployment datasets.
func DefaultOptimizeOptions() OptimizeOptions {
	return OptimizeOptions{Sample: 5000, Seed: 42, MaxLen: 500}
}

// OptimizeReport describes what Optimize removed.
type OptimizeReport struct {
	Input   int
	Dropped int
	Output  int
}

// Optimize shrinks a dataset for deployment. Rows without a name,
// ingredients or instructions are dropped, a deterministic sample is taken
// when more than opts.Sample rows remain, long strings are truncated, and
// nutrition values are rounded to single precision.
func Optimize(t *Table, opts OptimizeOptions) (*Table, OptimizeReport) {
	report := OptimizeReport{Input: t.Len()}

	keep := make([]int, 0, t.Len())
	for i := range t.Len() {
		r := t.At(i)
		if r.Name == "" || len(r.Ingredients) == 0 || len(r.Instructions) == 0 {
			continue
		}
		keep = append(keep, i)
	}
	report.Dropped = t.Len() - len(keep)

	if opts.Sample > 0 && len(keep) > opts.Sample {
		rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
		rng.Shuffle(len(keep), func(i, j int) { keep[i], keep[j] = keep[j], keep[i] })
		keep = keep[:opts.Sample]
		slices.Sort(keep)
	}

	out := make([]model.Recipe, 0, len(keep))
	for _, i := range keep {
		out = append(out, compact(*t.At(i), opts.MaxLen))
	}
	report.Output = len(out)
	return NewTable(t.Source(), out), report
}

func compact(r model.Recipe, maxLen int) model.Recipe {
	r.Name = truncate(r.Name, maxLen)
	r.CookTime = truncate(r.CookTime, maxLen)
	r.PrepTime = truncate(r.PrepTime, maxLen)
	r.TotalTime = truncate(r.TotalTime, maxLen)
	r.Ingredients = truncateAll(r.Ingredients, maxLen)
	r.Instructions = truncateAll(r.Instructions, maxLen)
	for n := range r.Nutrition {
		r.Nutrition[n] = float64(float32(r.Nutrition[n]))
	}
	return r
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

func truncateAll(items []string, maxLen int) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = truncate(s, maxLen)
	}
	return out
}
