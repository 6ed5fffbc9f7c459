package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	assert.Equal(t, "[INVALID_QUERY] bad vector", New(CodeInvalidQuery, "bad vector").Error())
	assert.Equal(t, "[DATASET_UNAVAILABLE] read failed: EOF",
		Wrap(CodeDatasetUnavailable, "read failed", io.EOF).Error())
}

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(CodeInvalidQuery, "expected 9 values, got %d", 3)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.NotErrorIs(t, err, ErrDatasetUnavailable)

	wrapped := fmt.Errorf("handler: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalidQuery)
}

func TestUnwrapReachesCause(t *testing.T) {
	err := WrapWithContext(CodeDatasetUnavailable, "load", io.ErrUnexpectedEOF, map[string]any{"path": "x.csv"})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "x.csv", err.Context["path"])
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeInternal},
		{"plain", stderrors.New("boom"), CodeInternal},
		{"direct", New(CodeInsufficientData, "empty"), CodeInsufficientData},
		{"wrapped", fmt.Errorf("ctx: %w", New(CodeDatasetUnavailable, "gone")), CodeDatasetUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
