package options

import "fmt"

// numericStats are the toggles fanned out by is_numeric_stats_enabled.
var numericStats = []string{"min", "max", "sum", "variance", "histogram_and_quantiles"}

// NewBooleanOption returns a group holding a single is_enabled flag.
func NewBooleanOption(enabled bool) *Group {
	return NewGroup("BooleanOption").Add("is_enabled", NewFlag(enabled))
}

func newColumnOptions(kind string) *Group {
	return NewGroup(kind).Add("is_enabled", NewFlag(true))
}

func newNumericalOptions(kind string) *Group {
	g := newColumnOptions(kind)
	for _, name := range numericStats {
		g.Add(name, NewBooleanOption(true))
	}
	g.addDerived("is_numeric_stats_enabled", derived{
		get: func(g *Group) bool {
			for _, name := range numericStats {
				if g.Sub(name).Enabled() {
					return true
				}
			}
			return false
		},
		set: func(g *Group, v any) {
			for _, name := range numericStats {
				g.Sub(name).children["is_enabled"].(leaf).assign(v)
			}
		},
	})
	g.checks = append(g.checks, func(g *Group, path string) []string {
		if g.Sub("variance").Enabled() && !g.Sub("sum").Enabled() {
			return []string{fmt.Sprintf("%s: The numeric stats must toggle on the sum if the variance is toggled on.", path)}
		}
		return nil
	})
	g.warnings = append(g.warnings, func(g *Group, path string) []string {
		if enabled, _ := g.IsPropEnabled("is_numeric_stats_enabled"); !enabled {
			return []string{fmt.Sprintf("%s.numeric_stats: The numeric stats are completely disabled.", path)}
		}
		return nil
	})
	return g
}

// NewNumericalOptions returns the generic numeric stats option set.
func NewNumericalOptions() *Group { return newNumericalOptions("NumericalOptions") }

// NewIntOptions returns options for integer columns.
func NewIntOptions() *Group { return newNumericalOptions("IntOptions") }

// NewFloatOptions returns options for float columns, adding precision.
func NewFloatOptions() *Group {
	return newNumericalOptions("FloatOptions").Add("precision", NewBooleanOption(true))
}

// NewTextOptions returns options for structured text columns, adding vocab.
func NewTextOptions() *Group {
	return newNumericalOptions("TextOptions").Add("vocab", NewBooleanOption(true))
}

func NewDateTimeOptions() *Group    { return newColumnOptions("DateTimeOptions") }
func NewOrderOptions() *Group       { return newColumnOptions("OrderOptions") }
func NewCategoricalOptions() *Group { return newColumnOptions("CategoricalOptions") }

// NewDataLabelerOptions returns options for the entity labeler: where to
// load the model from and how many samples to feed it.
func NewDataLabelerOptions() *Group {
	return newColumnOptions("DataLabelerOptions").
		Add("data_labeler_dirpath", NewSetting(StringSetting)).
		Add("max_sample_size", NewSetting(IntSetting))
}

// NewTextProfilerOptions returns options for the unstructured text profiler.
func NewTextProfilerOptions() *Group {
	return newColumnOptions("TextProfilerOptions").
		Add("vocab", NewBooleanOption(true)).
		Add("words", NewBooleanOption(true))
}

// NewStructuredOptions returns the option set for tabular profiling.
func NewStructuredOptions() *Group {
	return NewGroup("StructuredOptions").
		Add("int", NewIntOptions()).
		Add("float", NewFloatOptions()).
		Add("datetime", NewDateTimeOptions()).
		Add("text", NewTextOptions()).
		Add("order", NewOrderOptions()).
		Add("category", NewCategoricalOptions()).
		Add("data_labeler", NewDataLabelerOptions())
}

// NewUnstructuredOptions returns the option set for free-text profiling.
func NewUnstructuredOptions() *Group {
	return NewGroup("UnstructuredOptions").
		Add("text", NewTextProfilerOptions()).
		Add("data_labeler", NewDataLabelerOptions())
}

// NewProfilerOptions returns the full default option tree.
func NewProfilerOptions() *Group {
	return NewGroup("ProfilerOptions").
		Add("structured_options", NewStructuredOptions()).
		Add("unstructured_options", NewUnstructuredOptions())
}

// EnabledColumns lists the child groups of g that are enabled, in
// declaration order.
func EnabledColumns(g *Group) []string {
	var out []string
	for _, name := range g.order {
		if c, ok := g.children[name].(*Group); ok && c.Enabled() {
			out = append(out, name)
		}
	}
	return out
}
