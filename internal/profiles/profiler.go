// Package profiles holds incremental, mergeable profilers for a single
// column or text field.
package profiles

// Profiler is the common read surface of every profile.
type Profiler interface {
	Type() string
	Profile() map[string]any
}

var (
	_ Profiler = (*CategoricalColumn)(nil)
	_ Profiler = (*NumericColumn)(nil)
	_ Profiler = (*TextColumn)(nil)
	_ Profiler = (*TextProfiler)(nil)
	_ Profiler = (*EntityProfile)(nil)
	_ Profiler = (*OrderColumn)(nil)
	_ Profiler = (*DateTimeColumn)(nil)
)

// Merge combines two profiles of the same concrete kind into a new one.
// Neither input is modified.
func Merge(a, b Profiler) (Profiler, error) {
	switch x := a.(type) {
	case *CategoricalColumn:
		if y, ok := b.(*CategoricalColumn); ok {
			return wrap(x.Merge(y))
		}
	case *NumericColumn:
		if y, ok := b.(*NumericColumn); ok {
			return wrap(x.Merge(y))
		}
	case *TextColumn:
		if y, ok := b.(*TextColumn); ok {
			return wrap(x.Merge(y))
		}
	case *TextProfiler:
		if y, ok := b.(*TextProfiler); ok {
			return wrap(x.Merge(y))
		}
	case *EntityProfile:
		if y, ok := b.(*EntityProfile); ok {
			return wrap(x.Merge(y))
		}
	case *OrderColumn:
		if y, ok := b.(*OrderColumn); ok {
			return wrap(x.Merge(y))
		}
	case *DateTimeColumn:
		if y, ok := b.(*DateTimeColumn); ok {
			return wrap(x.Merge(y))
		}
	}
	return nil, &TypeMismatchError{Left: typeName(a), Right: typeName(b)}
}

func wrap[T Profiler](p T, err error) (Profiler, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

func typeName(p Profiler) string {
	if p == nil {
		return "nil"
	}
	return p.Type()
}
