package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	apperrors "github.com/pageza/dietrec/backend/internal/errors"
	"github.com/pageza/dietrec/backend/internal/logging"
)

// Loader reads the dataset from the first source that yields a usable table.
type Loader struct {
	sources  []Source
	maxBytes int64
}

// NewLoader creates a loader that tries sources in order.
func NewLoader(sources ...Source) *Loader {
	return &Loader{sources: sources, maxBytes: MaxDecodedBytes}
}

// WithMaxBytes overrides the raw and decoded size limit.
func (l *Loader) WithMaxBytes(n int64) *Loader {
	l.maxBytes = n
	return l
}

// Load returns the first table any source produces. Every source is read
// once and every codec strategy is tried on its bytes before moving on. When
// nothing works the error is a DatasetUnavailable carrying each attempt.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	if len(l.sources) == 0 {
		return nil, apperrors.New(apperrors.CodeDatasetUnavailable, "no dataset sources configured")
	}

	attempted := make([]string, 0, len(l.sources))
	var errs []error
	for _, src := range l.sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		attempted = append(attempted, src.String())

		table, codec, stats, err := l.loadSource(ctx, src)
		if err != nil {
			logging.Warn().Err(err).Str("source", src.String()).Msg("Dataset source failed")
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}

		logParseStats(src.String(), stats)
		logging.Info().
			Str("source", src.String()).
			Str("codec", string(codec)).
			Int("rows", stats.Rows).
			Int("incomplete", stats.Incomplete).
			Int("skipped", stats.Skipped).
			Msg("Dataset loaded")
		return table, nil
	}

	return nil, apperrors.WrapWithContext(
		apperrors.CodeDatasetUnavailable,
		"failed to load dataset",
		errors.Join(errs...),
		map[string]any{"attempted": attempted},
	)
}

func (l *Loader) loadSource(ctx context.Context, src Source) (*Table, Codec, ParseStats, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, "", ParseStats{}, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, l.maxBytes+1))
	if err != nil {
		return nil, "", ParseStats{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	if int64(len(raw)) > l.maxBytes {
		return nil, "", ParseStats{}, fmt.Errorf("dataset exceeds %d bytes", l.maxBytes)
	}

	var errs []error
	for _, codec := range strategies(raw) {
		decoded, err := decompress(raw, codec, l.maxBytes)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		text, err := toUTF8(decoded)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", codec, err))
			continue
		}
		table, stats, err := parseBytes(text, src.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", codec, err))
			continue
		}
		return table, codec, stats, nil
	}
	return nil, "", ParseStats{}, errors.Join(errs...)
}

func logParseStats(source string, stats ParseStats) {
	columns := make([]string, 0, len(stats.CellWarnings))
	for col := range stats.CellWarnings {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	for _, col := range columns {
		logging.Warn().
			Str("source", source).
			Str("column", col).
			Int("cells", stats.CellWarnings[col]).
			Str("first", stats.FirstWarnings[col]).
			Msg("Cell parse warnings")
	}
}
