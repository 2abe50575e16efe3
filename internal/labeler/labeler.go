// Package labeler defines the entity-labeling collaborators used by the
// unstructured entity profile, plus lightweight regex-based implementations.
package labeler

import (
	"context"
	"errors"
	"fmt"
)

// Background is the label for characters that belong to no entity.
const Background = "BACKGROUND"

// ErrPredictionShape is returned when predictions do not line up with the input rows.
var ErrPredictionShape = errors.New("prediction shape does not match input")

// Classifier produces one label index per character of each row.
type Classifier interface {
	Predict(ctx context.Context, rows []string) ([][]int, error)
	// ReverseLabelMapping maps label indices to label names.
	ReverseLabelMapping() map[int]string
}

// Postprocessor turns raw per-character predictions into label names,
// optionally smoothing entity boundaries.
type Postprocessor interface {
	Process(rows []string, preds [][]int, labels map[int]string) ([][]string, error)
}

// UnknownLabelError is returned when a prediction refers to an index with no label.
type UnknownLabelError struct {
	Index int
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label index %d", e.Index)
}

// CheckShape verifies there is one prediction per character of each row.
func CheckShape(rows []string, preds [][]int) error {
	if len(preds) != len(rows) {
		return fmt.Errorf("%w: %d rows, %d predictions", ErrPredictionShape, len(rows), len(preds))
	}
	for i, row := range rows {
		if n := len([]rune(row)); n != len(preds[i]) {
			return fmt.Errorf("%w: row %d has %d characters, %d predictions", ErrPredictionShape, i, n, len(preds[i]))
		}
	}
	return nil
}
