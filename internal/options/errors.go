package options

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrUnknownProperty is returned by IsPropEnabled for names the group does not define.
	ErrUnknownProperty = errors.New("unknown option property")
	// ErrGroupAssignment indicates a value was assigned to an option group instead of one of its leaves.
	ErrGroupAssignment = errors.New("cannot assign a value to an option group")
)

// UnknownOptionError reports a dotted path segment that does not resolve to a property.
type UnknownOptionError struct {
	Path string
	Attr string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("type object '%s' has no attribute '%s'", e.Path, e.Attr)
}

// ValidationError aggregates every message collected by Validate.
type ValidationError struct {
	errs *multierror.Error
}

func newValidationError(msgs []string) *ValidationError {
	var merr *multierror.Error
	for _, m := range msgs {
		merr = multierror.Append(merr, errors.New(m))
	}
	merr.ErrorFormat = func(es []error) string {
		lines := make([]string, len(es))
		for i, e := range es {
			lines[i] = e.Error()
		}
		return strings.Join(lines, "\n")
	}
	return &ValidationError{errs: merr}
}

func (e *ValidationError) Error() string { return e.errs.Error() }

// Messages returns the individual validation messages in walk order.
func (e *ValidationError) Messages() []string {
	out := make([]string, len(e.errs.Errors))
	for i, err := range e.errs.Errors {
		out[i] = err.Error()
	}
	return out
}

func (e *ValidationError) Unwrap() []error { return e.errs.WrappedErrors() }
