package profiles

import (
	"cmp"
	"strings"
)

// Orders reported by OrderColumn.
const (
	OrderAscending  = "ascending"
	OrderDescending = "descending"
	OrderConstant   = "constant value"
	OrderRandom     = "random"
)

// OrderKey is one value as OrderColumn compares it: by number when both
// sides are numeric, by raw text otherwise.
type OrderKey struct {
	Raw     string
	Num     float64
	Numeric bool
}

func compareKeys(a, b OrderKey) int {
	if a.Numeric && b.Numeric {
		return cmp.Compare(a.Num, b.Num)
	}
	return strings.Compare(a.Raw, b.Raw)
}

// OrderColumn tracks whether a column's values arrive sorted. Merge treats
// the receiver as the part of the column that came first, so merging is
// associative but not commutative.
type OrderColumn struct {
	Name       string
	SampleSize int
	Times      Times

	first, last           OrderKey
	ascending, descending bool
}

// NewOrderColumn creates an empty profile.
func NewOrderColumn(name string) *OrderColumn {
	return &OrderColumn{Name: name, Times: Times{}, ascending: true, descending: true}
}

func (o *OrderColumn) Type() string { return "order" }

// Update folds a batch of values, in arrival order. Empty batches are a no-op.
func (o *OrderColumn) Update(batch []OrderKey) *OrderColumn {
	if len(batch) == 0 {
		return o
	}
	start := now()
	for _, k := range batch {
		if o.SampleSize == 0 {
			o.first = k
		} else {
			switch c := compareKeys(o.last, k); {
			case c > 0:
				o.ascending = false
			case c < 0:
				o.descending = false
			}
		}
		o.last = k
		o.SampleSize++
	}
	o.Times.track("order", start)
	return o
}

// Merge returns a new profile for the receiver's values followed by other's.
func (o *OrderColumn) Merge(other *OrderColumn) (*OrderColumn, error) {
	if other == nil {
		return nil, &TypeMismatchError{Left: "OrderColumn", Right: "nil"}
	}
	if err := checkNames("Column", o.Name, other.Name); err != nil {
		return nil, err
	}
	out := NewOrderColumn(o.Name)
	out.Times = mergeTimes(o.Times, other.Times)
	out.SampleSize = o.SampleSize + other.SampleSize
	switch {
	case o.SampleSize == 0:
		out.first, out.last = other.first, other.last
		out.ascending, out.descending = other.ascending, other.descending
	case other.SampleSize == 0:
		out.first, out.last = o.first, o.last
		out.ascending, out.descending = o.ascending, o.descending
	default:
		c := compareKeys(o.last, other.first)
		out.first, out.last = o.first, other.last
		out.ascending = o.ascending && other.ascending && c <= 0
		out.descending = o.descending && other.descending && c >= 0
	}
	return out, nil
}

// Order names the sort order seen so far, or "" before any value.
func (o *OrderColumn) Order() string {
	switch {
	case o.SampleSize == 0:
		return ""
	case o.ascending && o.descending:
		return OrderConstant
	case o.ascending:
		return OrderAscending
	case o.descending:
		return OrderDescending
	default:
		return OrderRandom
	}
}

// Profile renders the current snapshot.
func (o *OrderColumn) Profile() map[string]any {
	stats := map[string]any{"order": nil, "first_value": nil, "last_value": nil}
	if o.SampleSize > 0 {
		stats["order"] = o.Order()
		stats["first_value"] = o.first.Raw
		stats["last_value"] = o.last.Raw
	}
	return map[string]any{
		"statistics": stats,
		"times":      o.Times.snapshot(),
	}
}
