package profiles

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/colprof/internal/labeler"
)

// Entity count granularities.
const (
	TrueCharLevel        = "true_char_level"
	PostprocessCharLevel = "postprocess_char_level"
	WordLevel            = "word_level"
)

var granularities = []string{TrueCharLevel, PostprocessCharLevel, WordLevel}

// EntityProfile accumulates entity-label counts over free text at raw
// character, postprocessed character and word granularity.
type EntityProfile struct {
	CharSampleSize int
	WordSampleSize int
	Times          Times

	counts        map[string]map[string]int
	classifier    labeler.Classifier
	postprocessor labeler.Postprocessor
}

// NewEntityProfile creates an empty profile backed by the given collaborators.
func NewEntityProfile(c labeler.Classifier, p labeler.Postprocessor) *EntityProfile {
	return &EntityProfile{
		Times:         Times{},
		counts:        newEntityCounts(),
		classifier:    c,
		postprocessor: p,
	}
}

func newEntityCounts() map[string]map[string]int {
	out := make(map[string]map[string]int, len(granularities))
	for _, g := range granularities {
		out[g] = map[string]int{}
	}
	return out
}

func (e *EntityProfile) Type() string { return "unstructured_label" }

// Update labels each row and tallies the labels. Empty batches are a no-op.
func (e *EntityProfile) Update(ctx context.Context, rows []string) error {
	if len(rows) == 0 {
		return nil
	}
	labels := e.classifier.ReverseLabelMapping()

	// Timings join the profile only once the batch is committed.
	elapsed := Times{}
	start := now()
	preds, err := e.classifier.Predict(ctx, rows)
	if err != nil {
		return fmt.Errorf("predict entities: %w", err)
	}
	elapsed.track("data_labeler_predict", start)
	if err := labeler.CheckShape(rows, preds); err != nil {
		return err
	}

	start = now()
	processed, err := e.postprocessor.Process(rows, preds, labels)
	if err != nil {
		return fmt.Errorf("postprocess entities: %w", err)
	}
	elapsed.track("data_labeler_postprocess", start)
	if len(processed) != len(rows) {
		return fmt.Errorf("%w: %d rows, %d postprocessed", labeler.ErrPredictionShape, len(rows), len(processed))
	}

	// Tally into a scratch table so a bad row leaves the profile untouched.
	batch := newEntityCounts()
	chars, words := 0, 0
	for i, row := range rows {
		runes := []rune(row)
		if len(processed[i]) != len(runes) {
			return fmt.Errorf("%w: row %d has %d characters, %d postprocessed", labeler.ErrPredictionShape, i, len(runes), len(processed[i]))
		}
		for _, idx := range preds[i] {
			name, ok := labels[idx]
			if !ok {
				return &labeler.UnknownLabelError{Index: idx}
			}
			batch[TrueCharLevel][name]++
		}
		for _, name := range processed[i] {
			batch[PostprocessCharLevel][name]++
		}
		for _, w := range labeler.Words(runes) {
			label, _ := labeler.Majority(processed[i][w[0]:w[1]], false)
			batch[WordLevel][label]++
			words++
		}
		chars += len(runes)
	}

	for g, table := range batch {
		for k, v := range table {
			e.counts[g][k] += v
		}
	}
	for k, v := range elapsed {
		e.Times[k] += v
	}
	e.CharSampleSize += chars
	e.WordSampleSize += words
	return nil
}

// Merge returns a new profile summing both inputs' counts. The result uses
// the receiver's collaborators.
func (e *EntityProfile) Merge(other *EntityProfile) (*EntityProfile, error) {
	if other == nil {
		return nil, &TypeMismatchError{Left: "EntityProfile", Right: "nil"}
	}
	out := NewEntityProfile(e.classifier, e.postprocessor)
	for _, src := range []*EntityProfile{e, other} {
		for g, table := range src.counts {
			for k, v := range table {
				out.counts[g][k] += v
			}
		}
	}
	out.CharSampleSize = e.CharSampleSize + other.CharSampleSize
	out.WordSampleSize = e.WordSampleSize + other.WordSampleSize
	out.Times = mergeTimes(e.Times, other.Times)
	return out, nil
}

// Counts returns a copy of the label counts for one granularity, or
// (nil, false) for an unknown granularity.
func (e *EntityProfile) Counts(granularity string) (map[string]int, bool) {
	table, ok := e.counts[granularity]
	if !ok {
		return nil, false
	}
	out := make(map[string]int, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, true
}

// Percentages returns each label's share of the granularity's sample size,
// or (nil, false) for an unknown granularity.
func (e *EntityProfile) Percentages(granularity string) (map[string]float64, bool) {
	table, ok := e.counts[granularity]
	if !ok {
		return nil, false
	}
	denom := e.CharSampleSize
	if granularity == WordLevel {
		denom = e.WordSampleSize
	}
	out := make(map[string]float64, len(table))
	for k, v := range table {
		out[k] = float64(v) / float64(denom)
	}
	return out, true
}

// Profile renders the current snapshot.
func (e *EntityProfile) Profile() map[string]any {
	counts := map[string]map[string]int{}
	percents := map[string]map[string]float64{}
	for _, g := range granularities {
		counts[g], _ = e.Counts(g)
		percents[g], _ = e.Percentages(g)
	}
	return map[string]any{
		"entity_counts":      counts,
		"entity_percentages": percents,
		"times":              e.Times.snapshot(),
	}
}
