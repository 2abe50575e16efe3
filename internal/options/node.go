package options

import (
	"fmt"

	"github.com/spf13/cast"
)

// Node is one entry of an option tree: a leaf value or a *Group of named children.
type Node interface {
	clone() Node
	value() any
}

type leaf interface {
	Node
	assign(v any)
	check(path string) []string
}

// Flag is a boolean toggle. A value that could not be coerced to a bool is
// kept as-is so Validate can report it.
type Flag struct {
	raw any
}

// NewFlag returns a flag holding enabled.
func NewFlag(enabled bool) *Flag { return &Flag{raw: enabled} }

// Enabled reports the flag state; non-boolean values read as disabled.
func (f *Flag) Enabled() bool {
	b, ok := f.raw.(bool)
	return ok && b
}

func (f *Flag) assign(v any) {
	switch t := v.(type) {
	case bool:
		f.raw = t
	case string:
		if b, err := cast.ToBoolE(t); err == nil {
			f.raw = b
			return
		}
		f.raw = v
	default:
		f.raw = v
	}
}

func (f *Flag) check(path string) []string {
	if _, ok := f.raw.(bool); !ok {
		return []string{fmt.Sprintf("%s must be a Boolean.", path)}
	}
	return nil
}

func (f *Flag) clone() Node { return &Flag{raw: f.raw} }
func (f *Flag) value() any  { return f.raw }

// SettingKind is the expected type of a Setting value.
type SettingKind int

const (
	StringSetting SettingKind = iota
	IntSetting
)

// Setting is a non-boolean leaf such as a model directory or a sample cap.
// A nil value means "unset" and always validates.
type Setting struct {
	kind SettingKind
	raw  any
}

// NewSetting returns an unset leaf of the given kind.
func NewSetting(kind SettingKind) *Setting { return &Setting{kind: kind} }

// Value returns the stored value, nil when unset.
func (s *Setting) Value() any { return s.raw }

// String returns the value when it is a string.
func (s *Setting) String() (string, bool) {
	v, ok := s.raw.(string)
	return v, ok
}

// Int returns the value when it is an int.
func (s *Setting) Int() (int, bool) {
	v, ok := s.raw.(int)
	return v, ok
}

func (s *Setting) assign(v any) {
	if s.kind == IntSetting {
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, string:
			if i, err := cast.ToIntE(v); err == nil {
				s.raw = i
				return
			}
		}
	}
	s.raw = v
}

func (s *Setting) check(path string) []string {
	if s.raw == nil {
		return nil
	}
	switch s.kind {
	case StringSetting:
		if _, ok := s.raw.(string); !ok {
			return []string{fmt.Sprintf("%s must be a string.", path)}
		}
	case IntSetting:
		if _, ok := s.raw.(int); !ok {
			return []string{fmt.Sprintf("%s must be an integer.", path)}
		}
	}
	return nil
}

func (s *Setting) clone() Node { return &Setting{kind: s.kind, raw: s.raw} }
func (s *Setting) value() any  { return s.raw }
