package profiles

import "fmt"

// TypeMismatchError is returned when two profiles of different kinds are merged.
type TypeMismatchError struct {
	Left  string
	Right string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("unsupported operand type(s) for merge: '%s' and '%s'", e.Left, e.Right)
}

// NameMismatchError is returned when merging profiles that describe different fields.
type NameMismatchError struct {
	Kind  string
	Left  string
	Right string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("%s names unmatched: %s != %s", e.Kind, e.Left, e.Right)
}

func checkNames(kind, a, b string) error {
	if a != b {
		return &NameMismatchError{Kind: kind, Left: a, Right: b}
	}
	return nil
}
