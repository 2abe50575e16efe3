package profiles

import (
	"sort"
	"unicode/utf8"
)

// TextColumn profiles a structured string column: numeric statistics over
// value lengths plus the character vocabulary.
type TextColumn struct {
	Name       string
	SampleSize int
	Times      Times

	core  numericCore
	vocab map[rune]struct{}
	calcs Registry[*TextColumn, numericBatch]
}

func (c *TextColumn) stats() *numericCore { return &c.core }

func textColumnCalculations() []Calculation[*TextColumn, numericBatch] {
	return append(numericCalculations[*TextColumn](), Calculation[*TextColumn, numericBatch]{
		Name: "vocab", Timing: "vocab", Fn: func(c *TextColumn, b numericBatch) {
			for _, row := range b.rows {
				for _, r := range row {
					c.vocab[r] = struct{}{}
				}
			}
		},
	})
}

// NewTextColumn creates an empty text column profile. opts may be nil.
func NewTextColumn(name string, opts PropertyChecker) (*TextColumn, error) {
	calcs, err := NewRegistry(textColumnCalculations(), opts)
	if err != nil {
		return nil, err
	}
	return &TextColumn{Name: name, Times: Times{}, core: newNumericCore(), vocab: map[rune]struct{}{}, calcs: calcs}, nil
}

// SetHistogram configures histogram bin count and quantile groups.
func (c *TextColumn) SetHistogram(bins, quantileGroups int) {
	c.core.bins, c.core.quantiles = bins, quantileGroups
}

func (c *TextColumn) Type() string { return "text" }

// Update folds a batch of non-null strings into the profile.
func (c *TextColumn) Update(rows []string) *TextColumn {
	if len(rows) == 0 {
		return c
	}
	lengths := make([]float64, len(rows))
	for i, s := range rows {
		lengths[i] = float64(utf8.RuneCountInString(s))
	}
	c.calcs.Perform(c, numericBatch{values: lengths, rows: rows, prevCount: c.SampleSize, prevSum: c.core.sum}, c.Times)
	c.SampleSize += len(rows)
	return c
}

// Merge returns a new profile over the union of both inputs' data.
func (c *TextColumn) Merge(other *TextColumn) (*TextColumn, error) {
	if other == nil {
		return nil, &TypeMismatchError{Left: c.Type(), Right: "nil"}
	}
	if err := checkNames("Column", c.Name, other.Name); err != nil {
		return nil, err
	}
	calcs := c.calcs.Intersect(other.calcs)
	out := &TextColumn{
		Name:       c.Name,
		SampleSize: c.SampleSize + other.SampleSize,
		Times:      mergeTimes(c.Times, other.Times),
		core:       mergeCore(&c.core, &other.core, c.SampleSize, other.SampleSize, calcs.Has),
		vocab:      map[rune]struct{}{},
		calcs:      calcs,
	}
	if calcs.Has("vocab") {
		for r := range c.vocab {
			out.vocab[r] = struct{}{}
		}
		for r := range other.vocab {
			out.vocab[r] = struct{}{}
		}
	}
	return out, nil
}

// Vocab returns the distinct characters seen, sorted.
func (c *TextColumn) Vocab() []string { return sortedRunes(c.vocab) }

// Calculations lists the enabled calculation names.
func (c *TextColumn) Calculations() []string { return c.calcs.Names() }

// Profile renders the current snapshot.
func (c *TextColumn) Profile() map[string]any {
	stats := c.core.statistics(c.SampleSize, c.calcs.Has)
	stats["sample_size"] = c.SampleSize
	stats["vocab"] = nil
	if c.calcs.Has("vocab") {
		stats["vocab"] = c.Vocab()
	}
	return map[string]any{
		"data type":  "text",
		"statistics": stats,
		"times":      c.Times.snapshot(),
	}
}

func sortedRunes(set map[rune]struct{}) []string {
	rs := make([]rune, 0, len(set))
	for r := range set {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
