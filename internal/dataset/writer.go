package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/pageza/dietrec/backend/internal/model"
)

// Header returns the columns written by WriteCSV.
func Header() []string {
	return append([]string{
		ColRecipeID, ColName, ColCookTime, ColPrepTime, ColTotalTime,
		ColIngredients, ColInstructions,
	}, model.NutrientColumns()...)
}

// WriteCSV writes t in the dataset's own CSV format: lists as R character
// vectors and missing numbers as empty cells.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, 0, len(Header()))
	for i := range t.Len() {
		r := t.At(i)
		record = append(record[:0],
			r.ID, r.Name, r.CookTime, r.PrepTime, r.TotalTime,
			formatList(r.Ingredients), formatList(r.Instructions),
		)
		for n := model.Calories; n <= model.Protein; n++ {
			v, ok := r.NutrientValue(n)
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes t to path, compressing by extension (.gz or .zst).
func WriteFile(path string, t *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz := gzip.NewWriter(f)
		if err := WriteCSV(gz, t); err != nil {
			return err
		}
		return gz.Close()
	case strings.HasSuffix(path, ".zst"):
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		if err := WriteCSV(zw, t); err != nil {
			return err
		}
		return zw.Close()
	default:
		return WriteCSV(f, t)
	}
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "character(0)"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = `"` + strings.ReplaceAll(item, `"`, `'`) + `"`
	}
	return "c(" + strings.Join(quoted, ", ") + ")"
}
