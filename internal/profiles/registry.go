package profiles

import "fmt"

// PropertyChecker is satisfied by option groups; see options.Group.
type PropertyChecker interface {
	IsPropEnabled(name string) (bool, error)
}

// Calculation is a named, timed sub-computation run by a profiler on each batch.
// Name must match a property of the profiler's option group.
type Calculation[P, B any] struct {
	Name   string
	Timing string
	Fn     func(p P, batch B)
}

// Registry holds the calculations a profiler instance runs on update.
type Registry[P, B any] struct {
	calcs []Calculation[P, B]
}

// NewRegistry keeps the calculations whose option is enabled. A nil
// checker enables everything.
func NewRegistry[P, B any](all []Calculation[P, B], opts PropertyChecker) (Registry[P, B], error) {
	if opts == nil {
		return Registry[P, B]{calcs: append([]Calculation[P, B](nil), all...)}, nil
	}
	var kept []Calculation[P, B]
	for _, c := range all {
		enabled, err := opts.IsPropEnabled(c.Name)
		if err != nil {
			return Registry[P, B]{}, fmt.Errorf("calculation %s: %w", c.Name, err)
		}
		if enabled {
			kept = append(kept, c)
		}
	}
	return Registry[P, B]{calcs: kept}, nil
}

// Perform runs every calculation in order and records its elapsed time.
func (r Registry[P, B]) Perform(p P, batch B, times Times) {
	for _, c := range r.calcs {
		start := now()
		c.Fn(p, batch)
		times.track(c.Timing, start)
	}
}

// Has reports whether the named calculation is registered.
func (r Registry[P, B]) Has(name string) bool {
	for _, c := range r.calcs {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Names lists registered calculation names in run order.
func (r Registry[P, B]) Names() []string {
	out := make([]string, len(r.calcs))
	for i, c := range r.calcs {
		out[i] = c.Name
	}
	return out
}

// Intersect keeps the calculations present in both registries: a
// calculation missing on either side has incomplete state after a merge.
func (r Registry[P, B]) Intersect(o Registry[P, B]) Registry[P, B] {
	var kept []Calculation[P, B]
	for _, c := range r.calcs {
		if o.Has(c.Name) {
			kept = append(kept, c)
		}
	}
	return Registry[P, B]{calcs: kept}
}
