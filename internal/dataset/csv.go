package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pageza/dietrec/backend/internal/model"
)

// Dataset column names.
const (
	ColRecipeID     = "RecipeId"
	ColName         = "Name"
	ColCookTime     = "CookTime"
	ColPrepTime     = "PrepTime"
	ColTotalTime    = "TotalTime"
	ColIngredients  = "RecipeIngredientParts"
	ColInstructions = "RecipeInstructions"
)

// ErrMissingColumns means the header lacks one of the nutrition columns.
var ErrMissingColumns = errors.New("dataset header is missing required columns")

// ParseStats summarizes one parse of a dataset.
type ParseStats struct {
	Rows int
	// Incomplete counts rows with at least one missing nutrition value.
	Incomplete int
	// Skipped counts records that could not be read at all.
	Skipped int
	// CellWarnings counts per-column normalization failures.
	CellWarnings map[string]int
	// FirstWarnings keeps the first failure seen per column.
	FirstWarnings map[string]string
}

func (s *ParseStats) warn(column string, row int, err error) {
	s.CellWarnings[column]++
	if _, ok := s.FirstWarnings[column]; !ok {
		s.FirstWarnings[column] = fmt.Sprintf("row %d: %v", row, err)
	}
}

type columnIndex map[string]int

func (c columnIndex) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// ParseCSV reads a CSV recipe dataset. Bad cells never abort the parse; they
// are counted in the returned stats and the field falls back to its empty
// value. Only an unreadable header fails the whole parse.
func ParseCSV(r io.Reader, source string) (*Table, ParseStats, error) {
	stats := ParseStats{
		CellWarnings:  map[string]int{},
		FirstWarnings: map[string]string{},
	}

	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, fmt.Errorf("%w: empty input", ErrMissingColumns)
		}
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range model.NutrientColumns() {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var recipes []model.Recipe
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("failed to read record: %w", err)
		}

		rec := parseRecord(record, cols, len(recipes)+1, &stats)
		if !rec.Complete() {
			stats.Incomplete++
		}
		recipes = append(recipes, rec)
	}

	stats.Rows = len(recipes)
	return NewTable(source, recipes), stats, nil
}

func parseRecord(record []string, cols columnIndex, row int, stats *ParseStats) model.Recipe {
	rec := model.Recipe{
		ID:   strings.TrimSpace(cols.get(record, ColRecipeID)),
		Name: strings.TrimSpace(cols.get(record, ColName)),
	}
	if rec.ID == "" || isMissing(rec.ID) {
		rec.ID = strconv.Itoa(row)
	}
	if isMissing(rec.Name) {
		rec.Name = ""
	}

	for _, f := range []struct {
		col string
		dst *string
	}{
		{ColCookTime, &rec.CookTime},
		{ColPrepTime, &rec.PrepTime},
		{ColTotalTime, &rec.TotalTime},
	} {
		v, err := ParseDuration(cols.get(record, f.col))
		if err != nil {
			stats.warn(f.col, row, err)
		}
		*f.dst = v
	}

	var err error
	if rec.Ingredients, err = ParseQuotedList(cols.get(record, ColIngredients)); err != nil {
		stats.warn(ColIngredients, row, err)
	}
	if rec.Instructions, err = ParseQuotedList(cols.get(record, ColInstructions)); err != nil {
		stats.warn(ColInstructions, row, err)
	}

	for n := model.Calories; n <= model.Protein; n++ {
		raw := cols.get(record, n.Column())
		v, ok := ParseNutrient(raw)
		if !ok {
			if !isMissing(strings.TrimSpace(raw)) {
				stats.warn(n.Column(), row, fmt.Errorf("not a number: %q", raw))
			}
			continue
		}
		rec.SetNutrient(n, v)
	}
	return rec
}

// parseBytes is ParseCSV over an in-memory buffer.
func parseBytes(b []byte, source string) (*Table, ParseStats, error) {
	return ParseCSV(bytes.NewReader(b), source)
}
