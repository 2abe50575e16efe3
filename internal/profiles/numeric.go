package profiles

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultHistogramBins  = 10
	defaultQuantileGroups = 4
)

// NumericKind distinguishes integer from float columns.
type NumericKind string

const (
	IntKind   NumericKind = "int"
	FloatKind NumericKind = "float"
)

// numericBatch is what numeric calculations see: the new values plus the
// running count and sum from before the batch.
type numericBatch struct {
	values    []float64
	rows      []string
	prevCount int
	prevSum   float64
}

// numericCore holds sufficient statistics shared by int, float and text columns.
type numericCore struct {
	min, max float64
	sum      float64
	// m2 is the running sum of squared deviations from the mean.
	m2     float64
	values []float64

	precMin, precMax, precSum float64

	bins      int
	quantiles int
}

func newNumericCore() numericCore {
	return numericCore{
		min:       math.Inf(1),
		max:       math.Inf(-1),
		precMin:   math.Inf(1),
		precMax:   math.Inf(-1),
		bins:      defaultHistogramBins,
		quantiles: defaultQuantileGroups,
	}
}

type statsHolder interface {
	stats() *numericCore
}

// numericCalculations returns the calculations every numeric column supports.
func numericCalculations[P statsHolder]() []Calculation[P, numericBatch] {
	return []Calculation[P, numericBatch]{
		{Name: "min", Timing: "min", Fn: func(p P, b numericBatch) {
			s := p.stats()
			s.min = math.Min(s.min, floats.Min(b.values))
		}},
		{Name: "max", Timing: "max", Fn: func(p P, b numericBatch) {
			s := p.stats()
			s.max = math.Max(s.max, floats.Max(b.values))
		}},
		{Name: "sum", Timing: "sum", Fn: func(p P, b numericBatch) {
			p.stats().sum = b.prevSum + floats.Sum(b.values)
		}},
		{Name: "variance", Timing: "variance", Fn: func(p P, b numericBatch) {
			s := p.stats()
			mean, m2 := batchMoments(b.values)
			prevMean := 0.0
			if b.prevCount > 0 {
				prevMean = b.prevSum / float64(b.prevCount)
			}
			s.m2 = combineM2(b.prevCount, prevMean, s.m2, len(b.values), mean, m2)
		}},
		{Name: "histogram_and_quantiles", Timing: "histogram_and_quantiles", Fn: func(p P, b numericBatch) {
			s := p.stats()
			s.values = append(s.values, b.values...)
		}},
	}
}

func batchMoments(xs []float64) (mean, m2 float64) {
	mean = stat.Mean(xs, nil)
	for _, x := range xs {
		d := x - mean
		m2 += d * d
	}
	return mean, m2
}

// combineM2 merges two partial sums of squared deviations (Chan et al.).
func combineM2(na int, meanA, m2a float64, nb int, meanB, m2b float64) float64 {
	if na == 0 {
		return m2b
	}
	if nb == 0 {
		return m2a
	}
	n := float64(na + nb)
	delta := meanB - meanA
	return m2a + m2b + delta*delta*float64(na)*float64(nb)/n
}

// mergeCore combines two cores; only statistics enabled on both sides are kept.
func mergeCore(a, b *numericCore, na, nb int, has func(string) bool) numericCore {
	out := newNumericCore()
	out.bins, out.quantiles = a.bins, a.quantiles
	if has("min") {
		out.min = math.Min(a.min, b.min)
	}
	if has("max") {
		out.max = math.Max(a.max, b.max)
	}
	if has("sum") {
		out.sum = a.sum + b.sum
	}
	if has("variance") {
		out.m2 = combineM2(na, safeMean(a.sum, na), a.m2, nb, safeMean(b.sum, nb), b.m2)
	}
	if has("histogram_and_quantiles") {
		out.values = make([]float64, 0, len(a.values)+len(b.values))
		out.values = append(out.values, a.values...)
		out.values = append(out.values, b.values...)
	}
	if has("precision") {
		out.precMin = math.Min(a.precMin, b.precMin)
		out.precMax = math.Max(a.precMax, b.precMax)
		out.precSum = a.precSum + b.precSum
	}
	return out
}

func safeMean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// statistics renders the numeric part of a snapshot. Disabled or undefined
// statistics are nil.
func (s *numericCore) statistics(n int, has func(string) bool) map[string]any {
	out := map[string]any{
		"min":       nil,
		"max":       nil,
		"sum":       nil,
		"mean":      nil,
		"variance":  nil,
		"stddev":    nil,
		"histogram": nil,
		"quantiles": nil,
	}
	if n == 0 {
		return out
	}
	if has("min") {
		out["min"] = s.min
	}
	if has("max") {
		out["max"] = s.max
	}
	if has("sum") {
		out["sum"] = s.sum
		out["mean"] = s.sum / float64(n)
	}
	if has("variance") && has("sum") {
		v := 0.0
		if n > 1 {
			v = s.m2 / float64(n-1)
		}
		out["variance"] = v
		out["stddev"] = math.Sqrt(v)
	}
	if has("histogram_and_quantiles") && len(s.values) > 0 {
		sorted := append([]float64(nil), s.values...)
		sort.Float64s(sorted)
		out["histogram"] = histogram(sorted, s.bins)
		out["quantiles"] = quantiles(sorted, s.quantiles)
	}
	return out
}

// Histogram is an equal-width histogram between the observed min and max.
type Histogram struct {
	BinCounts []float64 `json:"bin_counts" yaml:"bin_counts"`
	BinEdges  []float64 `json:"bin_edges" yaml:"bin_edges"`
}

func histogram(sorted []float64, bins int) Histogram {
	if bins <= 0 {
		bins = defaultHistogramBins
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return Histogram{BinCounts: []float64{float64(len(sorted))}, BinEdges: []float64{lo, hi}}
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	dividers := append([]float64(nil), edges...)
	// gonum bins are half-open; widen the last edge so hi lands in the last bin.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)
	return Histogram{BinCounts: counts, BinEdges: edges}
}

// quantiles splits the data into groups and returns the group boundaries,
// keyed by boundary index.
func quantiles(sorted []float64, groups int) map[int]float64 {
	if groups < 2 {
		groups = defaultQuantileGroups
	}
	out := make(map[int]float64, groups-1)
	for i := 1; i < groups; i++ {
		out[i-1] = stat.Quantile(float64(i)/float64(groups), stat.Empirical, sorted, nil)
	}
	return out
}

// significantDigits counts significant digits in the shortest decimal form of v.
func significantDigits(v float64) float64 {
	if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 1
	}
	s := strconv.FormatFloat(math.Abs(v), 'e', -1, 64)
	mant, _, _ := strings.Cut(s, "e")
	return float64(len(strings.Replace(mant, ".", "", 1)))
}

// NumericColumn profiles an int or float column.
type NumericColumn struct {
	Name       string
	Kind       NumericKind
	SampleSize int
	Times      Times

	core  numericCore
	calcs Registry[*NumericColumn, numericBatch]
}

func (c *NumericColumn) stats() *numericCore { return &c.core }

func numericColumnCalculations(kind NumericKind) []Calculation[*NumericColumn, numericBatch] {
	calcs := numericCalculations[*NumericColumn]()
	if kind == FloatKind {
		calcs = append(calcs, Calculation[*NumericColumn, numericBatch]{
			Name: "precision", Timing: "precision", Fn: func(c *NumericColumn, b numericBatch) {
				for _, v := range b.values {
					d := significantDigits(v)
					c.core.precMin = math.Min(c.core.precMin, d)
					c.core.precMax = math.Max(c.core.precMax, d)
					c.core.precSum += d
				}
			},
		})
	}
	return calcs
}

// NewNumericColumn creates an empty int or float profile. opts may be nil.
func NewNumericColumn(name string, kind NumericKind, opts PropertyChecker) (*NumericColumn, error) {
	calcs, err := NewRegistry(numericColumnCalculations(kind), opts)
	if err != nil {
		return nil, err
	}
	return &NumericColumn{Name: name, Kind: kind, Times: Times{}, core: newNumericCore(), calcs: calcs}, nil
}

// SetHistogram configures histogram bin count and quantile groups.
func (c *NumericColumn) SetHistogram(bins, quantileGroups int) {
	c.core.bins, c.core.quantiles = bins, quantileGroups
}

func (c *NumericColumn) Type() string { return string(c.Kind) }

// Update folds a batch of non-null values into the profile.
func (c *NumericColumn) Update(values []float64) *NumericColumn {
	if len(values) == 0 {
		return c
	}
	c.calcs.Perform(c, numericBatch{values: values, prevCount: c.SampleSize, prevSum: c.core.sum}, c.Times)
	c.SampleSize += len(values)
	return c
}

// Merge returns a new profile over the union of both inputs' data.
func (c *NumericColumn) Merge(other *NumericColumn) (*NumericColumn, error) {
	if other == nil || other.Kind != c.Kind {
		right := "nil"
		if other != nil {
			right = other.Type()
		}
		return nil, &TypeMismatchError{Left: c.Type(), Right: right}
	}
	if err := checkNames("Column", c.Name, other.Name); err != nil {
		return nil, err
	}
	calcs := c.calcs.Intersect(other.calcs)
	return &NumericColumn{
		Name:       c.Name,
		Kind:       c.Kind,
		SampleSize: c.SampleSize + other.SampleSize,
		Times:      mergeTimes(c.Times, other.Times),
		core:       mergeCore(&c.core, &other.core, c.SampleSize, other.SampleSize, calcs.Has),
		calcs:      calcs,
	}, nil
}

// Calculations lists the enabled calculation names.
func (c *NumericColumn) Calculations() []string { return c.calcs.Names() }

// Profile renders the current snapshot.
func (c *NumericColumn) Profile() map[string]any {
	stats := c.core.statistics(c.SampleSize, c.calcs.Has)
	stats["sample_size"] = c.SampleSize
	if c.Kind == FloatKind {
		stats["precision"] = nil
		if c.calcs.Has("precision") && c.SampleSize > 0 {
			stats["precision"] = map[string]float64{
				"min":  c.core.precMin,
				"max":  c.core.precMax,
				"mean": c.core.precSum / float64(c.SampleSize),
			}
		}
	}
	return map[string]any{
		"data type":  string(c.Kind),
		"statistics": stats,
		"times":      c.Times.snapshot(),
	}
}
