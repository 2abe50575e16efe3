package profiles

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderKeys(values ...string) []OrderKey {
	out := make([]OrderKey, len(values))
	for i, v := range values {
		out[i] = OrderKey{Raw: v}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out[i].Num, out[i].Numeric = f, true
		}
	}
	return out
}

func TestOrderColumnDetectsOrder(t *testing.T) {
	cases := map[string][]string{
		OrderAscending:  {"1", "2", "2", "10"},
		OrderDescending: {"c", "b", "b", "a"},
		OrderConstant:   {"x", "x"},
		OrderRandom:     {"3", "1", "2"},
	}
	for want, values := range cases {
		o := NewOrderColumn("col").Update(orderKeys(values...))
		assert.Equal(t, want, o.Order(), values)
	}
	assert.Equal(t, "", NewOrderColumn("col").Order())
}

func TestOrderColumnComparesNumbersNumerically(t *testing.T) {
	o := NewOrderColumn("col").Update(orderKeys("9", "10", "11"))
	assert.Equal(t, OrderAscending, o.Order())
}

func TestOrderColumnMergeFollowsArrivalOrder(t *testing.T) {
	a := NewOrderColumn("col").Update(orderKeys("1", "2"))
	b := NewOrderColumn("col").Update(orderKeys("3", "4"))

	ab, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, OrderAscending, ab.Order())
	assert.Equal(t, 4, ab.SampleSize)

	ba, err := b.Merge(a)
	require.NoError(t, err)
	assert.Equal(t, OrderRandom, ba.Order())

	stats := ab.Profile()["statistics"].(map[string]any)
	assert.Equal(t, "1", stats["first_value"])
	assert.Equal(t, "4", stats["last_value"])

	// inputs are untouched
	assert.Equal(t, 2, a.SampleSize)
	assert.Equal(t, OrderAscending, b.Order())
}

func TestOrderColumnMergeMatchesSequentialUpdate(t *testing.T) {
	parts := [][]string{{"5", "4"}, {}, {"4", "1"}, {"0"}}
	seq := NewOrderColumn("col")
	var folded *OrderColumn
	for _, p := range parts {
		seq.Update(orderKeys(p...))
		chunk := NewOrderColumn("col").Update(orderKeys(p...))
		if folded == nil {
			folded = chunk
			continue
		}
		var err error
		folded, err = folded.Merge(chunk)
		require.NoError(t, err)
	}
	assert.Equal(t, OrderDescending, seq.Order())
	assert.Equal(t, seq.Order(), folded.Order())
	assert.Equal(t, seq.Profile()["statistics"], folded.Profile()["statistics"])
}

func TestOrderColumnMergeAssociative(t *testing.T) {
	a := NewOrderColumn("col").Update(orderKeys("1"))
	b := NewOrderColumn("col").Update(orderKeys("2", "2"))
	c := NewOrderColumn("col").Update(orderKeys("1"))

	ab, err := a.Merge(b)
	require.NoError(t, err)
	left, err := ab.Merge(c)
	require.NoError(t, err)
	bc, err := b.Merge(c)
	require.NoError(t, err)
	right, err := a.Merge(bc)
	require.NoError(t, err)

	assert.Equal(t, OrderRandom, left.Order())
	assert.Equal(t, left.Profile()["statistics"], right.Profile()["statistics"])
}

func TestOrderColumnMergeRejects(t *testing.T) {
	_, err := NewOrderColumn("a").Merge(NewOrderColumn("b"))
	var nm *NameMismatchError
	require.ErrorAs(t, err, &nm)

	_, err = Merge(NewOrderColumn("a"), NewDateTimeColumn("a"))
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "order", tm.Left)
}
