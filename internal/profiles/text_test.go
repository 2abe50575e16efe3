package profiles

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/colprof/internal/options"
)

func newText(t *testing.T, name string, opts ...TextOption) *TextProfiler {
	t.Helper()
	p, err := NewTextProfiler(name, options.NewTextProfilerOptions(), opts...)
	require.NoError(t, err)
	return p
}

func TestTextProfilerWordsCaseSensitive(t *testing.T) {
	p := newText(t, "doc").Update([]string{"The Foo foo bar,", "the BAR! bar_baz 42"})

	assert.Equal(t, 2, p.SampleSize)
	assert.True(t, p.CaseSensitive())
	assert.Equal(t, []string{"Foo", "foo", "bar", "BAR", "bar_baz", "42"}, p.Words())
	assert.Equal(t, 0, p.Count("The"))
	assert.Equal(t, 1, p.Count("Foo"))
}

func TestTextProfilerWordsCaseInsensitive(t *testing.T) {
	p := newText(t, "doc", WithCaseSensitive(false)).
		Update([]string{"The Foo foo bar,", "the BAR! Ünïcode ünïcode"})

	assert.Equal(t, []WordCount{{"foo", 2}, {"bar", 2}, {"ünïcode", 2}}, p.WordCounts())
}

func TestTextProfilerVocab(t *testing.T) {
	p := newText(t, "doc").Update([]string{"ba", "ab c"})
	assert.Equal(t, []string{" ", "a", "b", "c"}, p.Vocab())
}

func TestTextProfilerCustomStopWords(t *testing.T) {
	p := newText(t, "doc", WithStopWords([]string{"Foo"})).Update([]string{"foo FOO the bar"})
	assert.Equal(t, []string{"the", "bar"}, p.Words())
}

func TestTextProfilerDisabledWords(t *testing.T) {
	opts := options.NewTextProfilerOptions()
	require.NoError(t, opts.Set(map[string]any{"words.is_enabled": false}))
	p, err := NewTextProfiler("doc", opts)
	require.NoError(t, err)
	p.Update([]string{"hello world"})

	assert.Equal(t, []string{"vocab"}, p.Calculations())
	assert.Empty(t, p.Words())
	assert.NotEmpty(t, p.Vocab())
}

func TestTextProfilerMergeCaseFolding(t *testing.T) {
	sensitive := newText(t, "doc").Update([]string{"Foo"})
	insensitive := newText(t, "doc", WithCaseSensitive(false)).Update([]string{"foo FOO"})

	for _, pair := range [][2]*TextProfiler{{sensitive, insensitive}, {insensitive, sensitive}} {
		merged, err := pair[0].Merge(pair[1])
		require.NoError(t, err)
		assert.False(t, merged.CaseSensitive())
		assert.Equal(t, []WordCount{{"foo", 3}}, merged.WordCounts())
		assert.Equal(t, 2, merged.SampleSize)
	}

	// inputs are untouched
	assert.Equal(t, []string{"Foo"}, sensitive.Words())
	assert.True(t, sensitive.CaseSensitive())
}

func TestTextProfilerMergeBothSensitiveKeepsCase(t *testing.T) {
	a := newText(t, "doc").Update([]string{"Foo bar"})
	b := newText(t, "doc").Update([]string{"foo bar"})
	merged, err := a.Merge(b)
	require.NoError(t, err)

	assert.True(t, merged.CaseSensitive())
	assert.Equal(t, 1, merged.Count("Foo"))
	assert.Equal(t, 1, merged.Count("foo"))
	assert.Equal(t, 2, merged.Count("bar"))
}

func TestTextProfilerMergeMatchesSequentialUpdate(t *testing.T) {
	x := []string{"alpha beta", "beta"}
	y := []string{"gamma alpha!"}

	seq := newText(t, "doc").Update(x).Update(y)
	merged, err := newText(t, "doc").Update(x).Merge(newText(t, "doc").Update(y))
	require.NoError(t, err)

	assert.ElementsMatch(t, seq.WordCounts(), merged.WordCounts())
	assert.Equal(t, seq.Vocab(), merged.Vocab())
	assert.Equal(t, seq.SampleSize, merged.SampleSize)
}

func TestTextProfilerMergeAssociative(t *testing.T) {
	a := newText(t, "doc").Update([]string{"Foo"})
	b := newText(t, "doc", WithCaseSensitive(false)).Update([]string{"foo bar"})
	c := newText(t, "doc").Update([]string{"Bar baz"})

	ab, err := a.Merge(b)
	require.NoError(t, err)
	left, err := ab.Merge(c)
	require.NoError(t, err)
	bc, err := b.Merge(c)
	require.NoError(t, err)
	right, err := a.Merge(bc)
	require.NoError(t, err)

	assert.ElementsMatch(t, left.WordCounts(), right.WordCounts())
	assert.Equal(t, left.SampleSize, right.SampleSize)
}

func TestTextProfilerMergeNameMismatch(t *testing.T) {
	_, err := newText(t, "a").Merge(newText(t, "b"))
	var nm *NameMismatchError
	require.ErrorAs(t, err, &nm)
	assert.Equal(t, "Text names unmatched: a != b", err.Error())
}

func TestTextProfilerEmptyUpdate(t *testing.T) {
	tickClock(t)
	p := newText(t, "doc").Update([]string{"hi"})
	before := p.Profile()
	p.Update(nil)
	assert.Equal(t, before, p.Profile())
	assert.Equal(t, map[string]float64{"vocab": 1, "words": 1}, p.Times.snapshot())
}

func TestMergeRejectsMixedKinds(t *testing.T) {
	_, err := Merge(newText(t, "doc"), newCat(t, "a"))
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "unstructured_text", tm.Left)
	assert.Equal(t, "category", tm.Right)
}

func TestTextProfilerMergeStopWordsOrderIndependent(t *testing.T) {
	a := newText(t, "doc").Update([]string{"foo bar"})
	b := newText(t, "doc", WithStopWords([]string{"foo"})).Update([]string{"bar baz"})

	ab, err := a.Merge(b)
	require.NoError(t, err)
	ba, err := b.Merge(a)
	require.NoError(t, err)

	assert.Equal(t, 0, ab.Count("foo"))
	assert.Equal(t, 0, ba.Count("foo"))
	assert.ElementsMatch(t, ab.WordCounts(), ba.WordCounts())
	assert.Equal(t, 2, ab.Count("bar"))
}

func TestTextProfilerWordCountRendersAsMapping(t *testing.T) {
	p := newText(t, "doc").Update([]string{"bar foo foo"})
	b, err := json.Marshal(p.Profile()["word_count"])
	require.NoError(t, err)
	assert.Equal(t, `{"foo":2,"bar":1}`, string(b))
}
