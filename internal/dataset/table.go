package dataset

import "github.com/pageza/dietrec/backend/internal/model"

// Table is the in-memory recipe dataset. It is never modified after
// construction and is safe for concurrent readers.
type Table struct {
	source  string
	recipes []model.Recipe
}

// NewTable builds a table from recipes. The slice is owned by the table
// afterwards.
func NewTable(source string, recipes []model.Recipe) *Table {
	return &Table{source: source, recipes: recipes}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.recipes)
}

// At returns row i. Callers must not modify the returned recipe.
func (t *Table) At(i int) *model.Recipe {
	return &t.recipes[i]
}

// Source describes where the table was read from.
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// CompleteRows returns the indices of rows whose nutrition is fully known.
func (t *Table) CompleteRows() []int {
	rows := make([]int, 0, t.Len())
	for i := range t.Len() {
		if t.recipes[i].Complete() {
			rows = append(rows, i)
		}
	}
	return rows
}
