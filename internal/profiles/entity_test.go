package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/colprof/internal/labeler"
)

// fixedClassifier labels every character of a row with a preset index.
type fixedClassifier struct {
	byRow  map[string]int
	labels map[int]string
	err    error
	calls  int
}

func (f *fixedClassifier) Predict(_ context.Context, rows []string) ([][]int, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]int, len(rows))
	for i, row := range rows {
		idx := f.byRow[row]
		out[i] = make([]int, len([]rune(row)))
		for j := range out[i] {
			out[i][j] = idx
		}
	}
	return out, nil
}

func (f *fixedClassifier) ReverseLabelMapping() map[int]string { return f.labels }

func sampleClassifier() *fixedClassifier {
	return &fixedClassifier{
		byRow:  map[string]int{"abc123": 1, "Bob": 0, "!@##$%": 2},
		labels: map[int]string{0: "BACKGROUND", 1: "DATETIME", 2: "QUANTITY"},
	}
}

func TestEntityProfileCounts(t *testing.T) {
	e := NewEntityProfile(sampleClassifier(), labeler.CharPostprocessor{})
	require.NoError(t, e.Update(context.Background(), []string{"abc123", "Bob", "!@##$%"}))

	counts, ok := e.Counts(TrueCharLevel)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"DATETIME": 6, "BACKGROUND": 3, "QUANTITY": 6}, counts)
	assert.Equal(t, 15, e.CharSampleSize)
	assert.Equal(t, 3, e.WordSampleSize)

	words, _ := e.Counts(WordLevel)
	assert.Equal(t, map[string]int{"DATETIME": 1, "BACKGROUND": 1, "QUANTITY": 1}, words)

	require.NoError(t, e.Update(context.Background(), []string{"abc123", "Bob", "!@##$%"}))
	assert.Equal(t, 30, e.CharSampleSize)
	counts, _ = e.Counts(TrueCharLevel)
	assert.Equal(t, map[string]int{"DATETIME": 12, "BACKGROUND": 6, "QUANTITY": 12}, counts)
}

func TestEntityProfilePercentages(t *testing.T) {
	e := NewEntityProfile(sampleClassifier(), labeler.CharPostprocessor{})
	require.NoError(t, e.Update(context.Background(), []string{"abc123", "Bob", "!@##$%"}))

	pct, ok := e.Percentages(PostprocessCharLevel)
	require.True(t, ok)
	assert.InDelta(t, 0.4, pct["DATETIME"], 1e-12)
	assert.InDelta(t, 0.2, pct["BACKGROUND"], 1e-12)

	pct, ok = e.Percentages(WordLevel)
	require.True(t, ok)
	assert.InDelta(t, 1.0/3.0, pct["QUANTITY"], 1e-12)

	pct, ok = e.Percentages("WRONG_INPUT")
	assert.False(t, ok)
	assert.Nil(t, pct)
}

func TestEntityProfileWordLevelMajority(t *testing.T) {
	cls := labeler.NewPatternClassifier(nil)
	e := NewEntityProfile(cls, labeler.CharPostprocessor{})
	row := "call 555-301-1234 or x9"
	require.NoError(t, e.Update(context.Background(), []string{row}))

	words, _ := e.Counts(WordLevel)
	// "x9" ties BACKGROUND and QUANTITY; the first label seen wins.
	assert.Equal(t, map[string]int{"BACKGROUND": 3, "PHONE_NUMBER": 1}, words)
	assert.Equal(t, 4, e.WordSampleSize)
	assert.Equal(t, len(row), e.CharSampleSize)
}

func TestEntityProfileEmptyUpdate(t *testing.T) {
	cls := sampleClassifier()
	e := NewEntityProfile(cls, labeler.CharPostprocessor{})
	require.NoError(t, e.Update(context.Background(), nil))
	assert.Zero(t, cls.calls)
	assert.Empty(t, e.Times)
	assert.Zero(t, e.CharSampleSize)
}

func TestEntityProfileTimes(t *testing.T) {
	tickClock(t)
	e := NewEntityProfile(sampleClassifier(), labeler.CharPostprocessor{})
	require.NoError(t, e.Update(context.Background(), []string{"Bob"}))
	assert.Equal(t, map[string]float64{"data_labeler_predict": 1, "data_labeler_postprocess": 1}, e.Times.snapshot())
}

func TestEntityProfileClassifierError(t *testing.T) {
	boom := errors.New("model unavailable")
	cls := sampleClassifier()
	cls.err = boom
	e := NewEntityProfile(cls, labeler.CharPostprocessor{})

	err := e.Update(context.Background(), []string{"Bob"})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, e.CharSampleSize)
}

func TestEntityProfileUnknownLabel(t *testing.T) {
	tickClock(t)
	cls := sampleClassifier()
	cls.byRow["Bob"] = 9
	e := NewEntityProfile(cls, labeler.CharPostprocessor{})

	err := e.Update(context.Background(), []string{"abc123", "Bob"})
	var ul *labeler.UnknownLabelError
	require.ErrorAs(t, err, &ul)
	assert.Equal(t, 9, ul.Index)
	counts, _ := e.Counts(TrueCharLevel)
	assert.Empty(t, counts)
	assert.Empty(t, e.Times, "a rejected batch leaves timings untouched")
}

func TestEntityProfileMerge(t *testing.T) {
	x := []string{"abc123 Bob"}
	y := []string{"!@##$%", "Bob"}
	ctx := context.Background()

	seq := NewEntityProfile(sampleClassifier(), labeler.CharPostprocessor{})
	require.NoError(t, seq.Update(ctx, x))
	require.NoError(t, seq.Update(ctx, y))

	a := NewEntityProfile(sampleClassifier(), labeler.CharPostprocessor{})
	require.NoError(t, a.Update(ctx, x))
	b := NewEntityProfile(sampleClassifier(), labeler.CharPostprocessor{})
	require.NoError(t, b.Update(ctx, y))
	merged, err := a.Merge(b)
	require.NoError(t, err)

	for _, g := range []string{TrueCharLevel, PostprocessCharLevel, WordLevel} {
		want, _ := seq.Counts(g)
		got, _ := merged.Counts(g)
		assert.Equal(t, want, got, g)
	}
	assert.Equal(t, seq.CharSampleSize, merged.CharSampleSize)
	assert.Equal(t, seq.WordSampleSize, merged.WordSampleSize)

	c := NewEntityProfile(sampleClassifier(), labeler.CharPostprocessor{})
	require.NoError(t, c.Update(ctx, []string{strings.Repeat("Bob ", 3)}))
	bc, err := b.Merge(c)
	require.NoError(t, err)
	right, err := a.Merge(bc)
	require.NoError(t, err)
	left, err := merged.Merge(c)
	require.NoError(t, err)
	assert.Equal(t, left.Profile()["entity_counts"], right.Profile()["entity_counts"])
}
