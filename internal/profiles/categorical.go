package profiles

import "sort"

const (
	// A column with at most this many distinct values is categorical.
	maxUniqueForCategorical = 10
	// Otherwise it is categorical when unique_ratio is at or below this.
	categoricalThreshold = 0.2
	topKCategories       = 5
)

// CategoryCount is one entry of a category frequency table.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// CategoricalColumn tracks value frequencies for one column.
type CategoricalColumn struct {
	Name       string
	SampleSize int
	Times      Times

	categories map[string]int
	order      []string
	calcs      Registry[*CategoricalColumn, []string]
}

// categoricalCalculations is empty today; category tallying always runs.
var categoricalCalculations []Calculation[*CategoricalColumn, []string]

// NewCategoricalColumn creates an empty profile. opts may be nil.
func NewCategoricalColumn(name string, opts PropertyChecker) (*CategoricalColumn, error) {
	calcs, err := NewRegistry(categoricalCalculations, opts)
	if err != nil {
		return nil, err
	}
	return newCategorical(name, calcs), nil
}

func newCategorical(name string, calcs Registry[*CategoricalColumn, []string]) *CategoricalColumn {
	return &CategoricalColumn{
		Name:       name,
		Times:      Times{},
		categories: map[string]int{},
		calcs:      calcs,
	}
}

func (c *CategoricalColumn) Type() string { return "category" }

// Update tallies the batch into the frequency table. Empty batches are a no-op.
func (c *CategoricalColumn) Update(batch []string) *CategoricalColumn {
	if len(batch) == 0 {
		return c
	}
	start := now()
	for _, v := range batch {
		c.add(v, 1)
	}
	c.Times.track("categories", start)
	c.calcs.Perform(c, batch, c.Times)
	c.SampleSize += len(batch)
	return c
}

func (c *CategoricalColumn) add(v string, n int) {
	if _, ok := c.categories[v]; !ok {
		c.order = append(c.order, v)
	}
	c.categories[v] += n
}

// Merge returns a new profile over the union of both inputs' data.
func (c *CategoricalColumn) Merge(other *CategoricalColumn) (*CategoricalColumn, error) {
	if other == nil {
		return nil, &TypeMismatchError{Left: "CategoricalColumn", Right: "nil"}
	}
	if err := checkNames("Column", c.Name, other.Name); err != nil {
		return nil, err
	}
	out := newCategorical(c.Name, c.calcs.Intersect(other.calcs))
	for _, v := range c.order {
		out.add(v, c.categories[v])
	}
	for _, v := range other.order {
		out.add(v, other.categories[v])
	}
	out.SampleSize = c.SampleSize + other.SampleSize
	out.Times = mergeTimes(c.Times, other.Times)
	return out, nil
}

// Categories lists distinct values in first-seen order.
func (c *CategoricalColumn) Categories() []string {
	return append([]string(nil), c.order...)
}

// Counts returns a copy of the frequency table.
func (c *CategoricalColumn) Counts() map[string]int {
	out := make(map[string]int, len(c.categories))
	for k, v := range c.categories {
		out[k] = v
	}
	return out
}

// UniqueRatio is distinct values over sample size, 1.0 for an empty profile.
func (c *CategoricalColumn) UniqueRatio() float64 {
	if c.SampleSize == 0 {
		return 1.0
	}
	return float64(len(c.categories)) / float64(c.SampleSize)
}

// IsMatch reports whether the column currently looks categorical.
func (c *CategoricalColumn) IsMatch() bool {
	if len(c.categories) <= maxUniqueForCategorical {
		return true
	}
	return c.SampleSize > 0 && c.UniqueRatio() <= categoricalThreshold
}

// GiniImpurity is Σ p(1-p) over categories; undefined for an empty profile.
func (c *CategoricalColumn) GiniImpurity() (float64, bool) {
	if c.SampleSize == 0 {
		return 0, false
	}
	n := float64(c.SampleSize)
	var sum float64
	for _, cnt := range c.categories {
		p := float64(cnt) / n
		sum += p * (1 - p)
	}
	return sum, true
}

// Unalikeability is the probability that two draws differ,
// Σ (n-c)c / (n²-n); undefined for an empty profile and 0 for a single value.
func (c *CategoricalColumn) Unalikeability() (float64, bool) {
	if c.SampleSize == 0 {
		return 0, false
	}
	if c.SampleSize == 1 {
		return 0, true
	}
	n := float64(c.SampleSize)
	var sum float64
	for _, cnt := range c.categories {
		sum += (n - float64(cnt)) * float64(cnt)
	}
	return sum / (n*n - n), true
}

// TopCategories returns the k most frequent values, ties in first-seen order.
func (c *CategoricalColumn) TopCategories(k int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(c.order))
	for _, v := range c.order {
		tops = append(tops, CategoryCount{Value: v, Count: c.categories[v]})
	}
	sort.SliceStable(tops, func(i, j int) bool { return tops[i].Count > tops[j].Count })
	if k >= 0 && len(tops) > k {
		tops = tops[:k]
	}
	return tops
}

// Profile renders the current snapshot. Category details are included only
// while the column is categorical.
func (c *CategoricalColumn) Profile() map[string]any {
	isMatch := c.IsMatch()
	stats := map[string]any{
		"unique_count": len(c.categories),
		"unique_ratio": c.UniqueRatio(),
	}
	if isMatch {
		stats["categories"] = c.Categories()
		stats["gini_impurity"] = optional(c.GiniImpurity())
		stats["unalikeability"] = optional(c.Unalikeability())
		stats["categorical_count"] = OrderedCounts(c.TopCategories(topKCategories))
	}
	return map[string]any{
		"categorical": isMatch,
		"statistics":  stats,
		"times":       c.Times.snapshot(),
	}
}

// optional maps an undefined statistic to nil.
func optional(v float64, ok bool) any {
	if !ok {
		return nil
	}
	return v
}
