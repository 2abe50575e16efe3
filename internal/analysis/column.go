package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/KaramelBytes/colprof/internal/options"
	"github.com/KaramelBytes/colprof/internal/profiles"
)

var nullValues = map[string]struct{}{
	"": {}, "null": {}, "none": {}, "nan": {}, "na": {}, "n/a": {}, "nil": {},
}

func isNull(v string) bool {
	_, ok := nullValues[strings.ToLower(v)]
	return ok
}

type numberFormat struct {
	dec, thou rune
}

// ColumnProfile is the set of profiles kept for one tabular column. Null
// cells are counted here and never reach the underlying profiles.
type ColumnProfile struct {
	Name          string
	SampleSize    int
	NullCount     int
	IntCount      int
	FloatCount    int
	DateTimeCount int

	Category *profiles.CategoricalColumn
	Int      *profiles.NumericColumn
	Float    *profiles.NumericColumn
	Text     *profiles.TextColumn
	DateTime *profiles.DateTimeColumn
	Order    *profiles.OrderColumn
	Labels   *profiles.EntityProfile

	format numberFormat
}

// NewColumnProfile creates the profiles enabled in opt.Profiler.
func NewColumnProfile(name string, opt Options) (*ColumnProfile, error) {
	structured := opt.structured()
	enabled := map[string]bool{}
	for _, k := range options.EnabledColumns(structured) {
		enabled[k] = true
	}
	c := &ColumnProfile{Name: name, format: numberFormat{opt.DecimalSeparator, opt.ThousandsSeparator}}
	var err error
	if enabled["category"] {
		if c.Category, err = profiles.NewCategoricalColumn(name, structured.Sub("category")); err != nil {
			return nil, err
		}
	}
	if enabled["int"] {
		if c.Int, err = profiles.NewNumericColumn(name, profiles.IntKind, structured.Sub("int")); err != nil {
			return nil, err
		}
		c.Int.SetHistogram(opt.HistogramBins, opt.QuantileGroups)
	}
	if enabled["float"] {
		if c.Float, err = profiles.NewNumericColumn(name, profiles.FloatKind, structured.Sub("float")); err != nil {
			return nil, err
		}
		c.Float.SetHistogram(opt.HistogramBins, opt.QuantileGroups)
	}
	if enabled["text"] {
		if c.Text, err = profiles.NewTextColumn(name, structured.Sub("text")); err != nil {
			return nil, err
		}
		c.Text.SetHistogram(opt.HistogramBins, opt.QuantileGroups)
	}
	if enabled["datetime"] {
		c.DateTime = profiles.NewDateTimeColumn(name)
	}
	if enabled["order"] {
		c.Order = profiles.NewOrderColumn(name)
	}
	if enabled["data_labeler"] && opt.Classifier != nil {
		c.Labels = profiles.NewEntityProfile(opt.Classifier, opt.Postprocessor)
	}
	return c, nil
}

// Update folds a batch of raw cells into every enabled profile except the
// labeler; see UpdateLabels.
func (c *ColumnProfile) Update(cells []string) {
	var floats, ints []float64
	var dates []string
	strs := make([]string, 0, len(cells))
	order := make([]profiles.OrderKey, 0, len(cells))
	for _, raw := range cells {
		v := strings.TrimSpace(raw)
		if isNull(v) {
			c.NullCount++
			continue
		}
		strs = append(strs, v)
		if x, ok := parseNumeric(v, c.format); ok {
			order = append(order, profiles.OrderKey{Raw: v, Num: x, Numeric: true})
			c.FloatCount++
			floats = append(floats, x)
			if isInteger(v, c.format) {
				c.IntCount++
				ints = append(ints, x)
			}
			continue
		}
		order = append(order, profiles.OrderKey{Raw: v})
		if _, _, ok := profiles.ParseDateTime(v); ok {
			c.DateTimeCount++
			dates = append(dates, v)
		}
	}
	c.SampleSize += len(strs)
	if c.Category != nil {
		c.Category.Update(strs)
	}
	if c.Int != nil {
		c.Int.Update(ints)
	}
	if c.Float != nil {
		c.Float.Update(floats)
	}
	if c.Text != nil {
		c.Text.Update(strs)
	}
	if c.DateTime != nil {
		c.DateTime.Update(dates)
	}
	if c.Order != nil {
		c.Order.Update(order)
	}
}

// UpdateLabels runs the entity labeler over the non-null cells.
func (c *ColumnProfile) UpdateLabels(ctx context.Context, cells []string) error {
	if c.Labels == nil {
		return nil
	}
	rows := make([]string, 0, len(cells))
	for _, raw := range cells {
		if v := strings.TrimSpace(raw); !isNull(v) {
			rows = append(rows, v)
		}
	}
	return c.Labels.Update(ctx, rows)
}

// Merge returns a new column profile over both inputs.
func (c *ColumnProfile) Merge(other *ColumnProfile) (*ColumnProfile, error) {
	if c.Name != other.Name {
		return nil, &profiles.NameMismatchError{Kind: "Column", Left: c.Name, Right: other.Name}
	}
	out := &ColumnProfile{
		Name:          c.Name,
		SampleSize:    c.SampleSize + other.SampleSize,
		NullCount:     c.NullCount + other.NullCount,
		IntCount:      c.IntCount + other.IntCount,
		FloatCount:    c.FloatCount + other.FloatCount,
		DateTimeCount: c.DateTimeCount + other.DateTimeCount,
		format:        c.format,
	}
	var err error
	if c.Category != nil && other.Category != nil {
		if out.Category, err = c.Category.Merge(other.Category); err != nil {
			return nil, err
		}
	}
	if c.Int != nil && other.Int != nil {
		if out.Int, err = c.Int.Merge(other.Int); err != nil {
			return nil, err
		}
	}
	if c.Float != nil && other.Float != nil {
		if out.Float, err = c.Float.Merge(other.Float); err != nil {
			return nil, err
		}
	}
	if c.Text != nil && other.Text != nil {
		if out.Text, err = c.Text.Merge(other.Text); err != nil {
			return nil, err
		}
	}
	if c.DateTime != nil && other.DateTime != nil {
		if out.DateTime, err = c.DateTime.Merge(other.DateTime); err != nil {
			return nil, err
		}
	}
	if c.Order != nil && other.Order != nil {
		if out.Order, err = c.Order.Merge(other.Order); err != nil {
			return nil, err
		}
	}
	if c.Labels != nil && other.Labels != nil {
		if out.Labels, err = c.Labels.Merge(other.Labels); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DataType is the narrowest type every non-null value parsed as.
func (c *ColumnProfile) DataType() string {
	switch {
	case c.SampleSize == 0:
		return "unknown"
	case c.IntCount == c.SampleSize:
		return "int"
	case c.FloatCount == c.SampleSize:
		return "float"
	case c.DateTimeCount == c.SampleSize:
		return "datetime"
	default:
		return "text"
	}
}

// Categorical reports whether the category profile currently matches.
func (c *ColumnProfile) Categorical() bool {
	return c.Category != nil && c.Category.IsMatch()
}

// primary returns the profile describing the inferred data type.
func (c *ColumnProfile) primary() profiles.Profiler {
	switch c.DataType() {
	case "int":
		if c.Int != nil {
			return c.Int
		}
	case "float":
		if c.Float != nil {
			return c.Float
		}
	case "datetime":
		if c.DateTime != nil {
			return c.DateTime
		}
	}
	if c.Text != nil {
		return c.Text
	}
	return nil
}

// Statistics returns the statistics block of the primary profile, or nil.
func (c *ColumnProfile) Statistics() map[string]any {
	p := c.primary()
	if p == nil {
		return nil
	}
	stats, _ := p.Profile()["statistics"].(map[string]any)
	return stats
}

// Times collects calculation timings of every sub-profile, keyed by
// "<profile>.<calculation>".
func (c *ColumnProfile) Times() map[string]float64 {
	out := map[string]float64{}
	add := func(prefix string, t profiles.Times) {
		for k, v := range t {
			out[prefix+"."+k] += v
		}
	}
	if c.Category != nil {
		add("category", c.Category.Times)
	}
	if c.Int != nil {
		add("int", c.Int.Times)
	}
	if c.Float != nil {
		add("float", c.Float.Times)
	}
	if c.Text != nil {
		add("text", c.Text.Times)
	}
	if c.DateTime != nil {
		add("datetime", c.DateTime.Times)
	}
	if c.Order != nil {
		add("order", c.Order.Times)
	}
	if c.Labels != nil {
		add("data_labeler", c.Labels.Times)
	}
	return out
}

func (c *ColumnProfile) ratio(n int) float64 {
	if c.SampleSize == 0 {
		return 0
	}
	return float64(n) / float64(c.SampleSize)
}

// Profile renders the column snapshot.
func (c *ColumnProfile) Profile() map[string]any {
	stats := map[string]any{}
	for k, v := range c.Statistics() {
		stats[k] = v
	}
	if c.Order != nil {
		orderStats, _ := c.Order.Profile()["statistics"].(map[string]any)
		stats["order"] = orderStats["order"]
	}
	out := map[string]any{
		"column_name": c.Name,
		"data_type":   c.DataType(),
		"categorical": c.Categorical(),
		"sample_size": c.SampleSize,
		"null_count":  c.NullCount,
		"data_type_representation": map[string]float64{
			"int":      c.ratio(c.IntCount),
			"float":    c.ratio(c.FloatCount),
			"datetime": c.ratio(c.DateTimeCount),
		},
		"statistics": stats,
		"times":      c.Times(),
	}
	if c.Categorical() {
		out["category"] = c.Category.Profile()["statistics"]
	}
	if c.Labels != nil {
		labels := c.Labels.Profile()
		labels["char_sample_size"] = c.Labels.CharSampleSize
		labels["word_sample_size"] = c.Labels.WordSampleSize
		out["data_labels"] = labels
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
