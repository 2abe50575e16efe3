package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/colprof/internal/options"
)

type counter struct{ hits []string }

func counterCalcs() []Calculation[*counter, int] {
	mk := func(name string) Calculation[*counter, int] {
		return Calculation[*counter, int]{Name: name, Timing: name, Fn: func(c *counter, _ int) {
			c.hits = append(c.hits, name)
		}}
	}
	return []Calculation[*counter, int]{mk("vocab"), mk("words")}
}

func TestRegistryFiltersByOptions(t *testing.T) {
	opts := options.NewTextProfilerOptions()
	require.NoError(t, opts.Set(map[string]any{"vocab.is_enabled": false}))

	reg, err := NewRegistry(counterCalcs(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"words"}, reg.Names())

	all, err := NewRegistry(counterCalcs(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"vocab", "words"}, all.Names())
}

func TestRegistryUnknownProperty(t *testing.T) {
	_, err := NewRegistry(counterCalcs(), options.NewCategoricalOptions())
	require.ErrorIs(t, err, options.ErrUnknownProperty)
	assert.Contains(t, err.Error(), "calculation vocab")
}

func TestRegistryPerformTimesEachCalculation(t *testing.T) {
	tickClock(t)
	reg, err := NewRegistry(counterCalcs(), nil)
	require.NoError(t, err)

	c := &counter{}
	times := Times{}
	reg.Perform(c, 0, times)
	reg.Perform(c, 0, times)
	assert.Equal(t, []string{"vocab", "words", "vocab", "words"}, c.hits)
	assert.Equal(t, Times{"vocab": 2, "words": 2}, times)
}

func TestRegistryIntersect(t *testing.T) {
	opts := options.NewTextProfilerOptions()
	require.NoError(t, opts.Set(map[string]any{"words.is_enabled": false}))
	a, err := NewRegistry(counterCalcs(), opts)
	require.NoError(t, err)
	b, err := NewRegistry(counterCalcs(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"vocab"}, a.Intersect(b).Names())
	assert.Equal(t, []string{"vocab"}, b.Intersect(a).Names())
	assert.False(t, a.Intersect(b).Has("words"))
}

func TestMergeTimesSumsKeys(t *testing.T) {
	got := mergeTimes(Times{"a": 1, "b": 2}, Times{"b": 3, "c": 4})
	assert.Equal(t, Times{"a": 1, "b": 5, "c": 4}, got)
}
