package options

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// derived is a property computed from, and written through to, other children.
type derived struct {
	get func(g *Group) bool
	set func(g *Group, v any)
}

// rule inspects a group at path and returns messages.
type rule func(g *Group, path string) []string

// Group is a named collection of option nodes. Its enabled state is never
// stored separately: it is the "is_enabled" child when present.
type Group struct {
	kind     string
	order    []string
	children map[string]Node
	derived  map[string]derived
	derOrder []string
	checks   []rule
	warnings []rule
	logger   logrus.FieldLogger
}

// NewGroup returns an empty group whose validation paths start at kind.
func NewGroup(kind string) *Group {
	return &Group{kind: kind, children: map[string]Node{}, derived: map[string]derived{}}
}

// Add appends a named child, replacing any existing one with the same name.
func (g *Group) Add(name string, n Node) *Group {
	if _, ok := g.children[name]; !ok {
		g.order = append(g.order, name)
	}
	g.children[name] = n
	return g
}

func (g *Group) addDerived(name string, d derived) {
	g.derived[name] = d
	g.derOrder = append(g.derOrder, name)
}

// Kind returns the group's type name, e.g. "IntOptions".
func (g *Group) Kind() string { return g.kind }

// SetLogger sets the logger that receives validation warnings.
func (g *Group) SetLogger(l logrus.FieldLogger) { g.logger = l }

func (g *Group) log() logrus.FieldLogger {
	if g.logger == nil {
		return logrus.StandardLogger()
	}
	return g.logger
}

// Child returns the named child node.
func (g *Group) Child(name string) (Node, bool) {
	n, ok := g.children[name]
	return n, ok
}

// Sub returns the named child when it is a group.
func (g *Group) Sub(name string) *Group {
	if c, ok := g.children[name].(*Group); ok {
		return c
	}
	return nil
}

// Enabled reports the group's is_enabled flag. Groups without one are enabled.
func (g *Group) Enabled() bool {
	f, ok := g.children["is_enabled"].(*Flag)
	if !ok {
		return true
	}
	return f.Enabled()
}

// IsPropEnabled reports whether the named property is switched on.
// Leaf settings that are not toggles count as enabled.
func (g *Group) IsPropEnabled(name string) (bool, error) {
	if d, ok := g.derived[name]; ok {
		return d.get(g), nil
	}
	n, ok := g.children[name]
	if !ok {
		return false, fmt.Errorf("%w: %q does not exist in %s", ErrUnknownProperty, name, g.kind)
	}
	switch c := n.(type) {
	case *Flag:
		return c.Enabled(), nil
	case *Group:
		return c.Enabled(), nil
	}
	return true, nil
}

// Set applies dotted-path overrides such as {"int.min.is_enabled": false}.
// A path whose first segment is not a property here is offered to every
// descendant group; it fails only when nothing in the tree accepts it.
func (g *Group) Set(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		applied, err := g.apply("", k, values[k])
		if err != nil {
			return err
		}
		if !applied {
			name, _, _ := strings.Cut(k, ".")
			return &UnknownOptionError{Path: g.kind, Attr: name}
		}
	}
	return nil
}

func (g *Group) apply(prefix, key string, v any) (bool, error) {
	name, rest, nested := strings.Cut(key, ".")
	full := joinPath(prefix, name)

	if d, ok := g.derived[name]; ok {
		if nested {
			return true, &UnknownOptionError{Path: full, Attr: rest}
		}
		d.set(g, v)
		return true, nil
	}
	if n, ok := g.children[name]; ok {
		switch c := n.(type) {
		case *Group:
			if !nested {
				return true, fmt.Errorf("%w: %s", ErrGroupAssignment, full)
			}
			applied, err := c.apply(full, rest, v)
			if err != nil {
				return true, err
			}
			if !applied {
				attr, _, _ := strings.Cut(rest, ".")
				return true, &UnknownOptionError{Path: full, Attr: attr}
			}
			return true, nil
		case leaf:
			if nested {
				return true, &UnknownOptionError{Path: full, Attr: rest}
			}
			c.assign(v)
			return true, nil
		}
	}

	applied := false
	for _, childName := range g.order {
		c, ok := g.children[childName].(*Group)
		if !ok {
			continue
		}
		got, err := c.apply(joinPath(prefix, childName), key, v)
		if err != nil {
			return true, err
		}
		applied = applied || got
	}
	return applied, nil
}

// Lookup returns the value stored at a dotted path.
func (g *Group) Lookup(path string) (any, error) {
	name, rest, nested := strings.Cut(path, ".")
	if d, ok := g.derived[name]; ok && !nested {
		return d.get(g), nil
	}
	n, ok := g.children[name]
	if !ok {
		return nil, &UnknownOptionError{Path: g.kind, Attr: name}
	}
	if c, ok := n.(*Group); ok {
		if !nested {
			return c.Properties(), nil
		}
		return c.Lookup(rest)
	}
	if nested {
		return nil, &UnknownOptionError{Path: name, Attr: rest}
	}
	return n.value(), nil
}

// Properties returns a deep copy of the tree as nested maps, including
// derived properties.
func (g *Group) Properties() map[string]any {
	out := make(map[string]any, len(g.children)+len(g.derived))
	for _, name := range g.order {
		out[name] = g.children[name].value()
	}
	for _, name := range g.derOrder {
		out[name] = g.derived[name].get(g)
	}
	return out
}

func (g *Group) value() any { return g.Properties() }

// Clone returns an independent deep copy.
func (g *Group) Clone() *Group {
	c := &Group{
		kind:     g.kind,
		order:    append([]string(nil), g.order...),
		children: make(map[string]Node, len(g.children)),
		derived:  g.derived,
		derOrder: g.derOrder,
		checks:   g.checks,
		warnings: g.warnings,
		logger:   g.logger,
	}
	for k, n := range g.children {
		c.children[k] = n.clone()
	}
	return c
}

func (g *Group) clone() Node { return g.Clone() }

// Check walks the tree and returns validation errors and soft warnings.
// Warnings for a group are produced only when its subtree has no errors.
func (g *Group) Check() (errs, warns []string) {
	return g.walk(g.kind)
}

func (g *Group) walk(path string) (errs, warns []string) {
	for _, name := range g.order {
		p := joinPath(path, name)
		switch c := g.children[name].(type) {
		case leaf:
			errs = append(errs, c.check(p)...)
		case *Group:
			e, w := c.walk(p)
			errs = append(errs, e...)
			warns = append(warns, w...)
		}
	}
	for _, r := range g.checks {
		errs = append(errs, r(g, path)...)
	}
	if len(errs) == 0 {
		for _, r := range g.warnings {
			warns = append(warns, r(g, path)...)
		}
	}
	return errs, warns
}

// Validate checks the whole tree. Warnings are logged. With raiseError set,
// a non-empty error list is returned as a single *ValidationError; otherwise
// the list is returned and err is nil.
func (g *Group) Validate(raiseError bool) ([]string, error) {
	errs, warns := g.Check()
	for _, w := range warns {
		g.log().WithField("option", g.kind).Warn(w)
	}
	if raiseError && len(errs) > 0 {
		return errs, newValidationError(errs)
	}
	return errs, nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
