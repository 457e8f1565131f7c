package bindgen

import (
	"strings"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/spec"
)

// Options configures generation.
type Options struct {
	// Package is the package name of the generated file.
	Package string
}

type state int

const (
	stateInput state = iota
	stateResolve
	stateEmit
	stateDone
)

// generator runs INPUT -> RESOLVE -> EMIT -> DONE over one finalized
// specification. It needs only the specification, never the contract
// source, so generation cannot create a build-order cycle with the
// contract that owns the spec.
type generator struct {
	spec  *spec.Spec
	opts  Options
	state state

	// symbol table built during RESOLVE
	types   map[string]typeSym
	imports map[string]bool
	out     strings.Builder
}

type typeSym struct {
	entry  spec.Entry
	goName string
}

// Generate emits Go source with one type definition per user-defined
// type entry and one Client method per function entry, in declaration
// order. Unresolved or colliding names abort generation.
func Generate(s *spec.Spec, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "bindings"
	}
	g := &generator{
		spec:    s,
		opts:    opts,
		types:   make(map[string]typeSym),
		imports: make(map[string]bool),
	}
	if err := g.resolve(); err != nil {
		return nil, err
	}
	return g.emit()
}

// resolve builds the local symbol table mapping named references to
// generated type definitions. Two entry names that export to the same
// Go identifier are a fatal collision.
func (g *generator) resolve() error {
	g.state = stateResolve

	goNames := make(map[string]string)
	for _, e := range g.spec.Entries() {
		if _, isFn := e.(spec.FunctionEntry); isFn {
			continue
		}
		goName := exportName(e.EntryName())
		if prev, clash := goNames[goName]; clash {
			return errors.New(errors.PhaseGen, errors.KindDuplicateName).
				Detail("entries %q and %q both generate type %s", prev, e.EntryName(), goName).
				Build()
		}
		goNames[goName] = e.EntryName()
		g.types[e.EntryName()] = typeSym{entry: e, goName: goName}
	}

	for _, e := range g.spec.Entries() {
		if err := g.checkRefs(e); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) checkRefs(e spec.Entry) error {
	check := func(t spec.TypeRef) error {
		for _, name := range namedIn(t, nil) {
			if _, ok := g.types[name]; !ok {
				return errors.UnresolvedReference(e.EntryName(), name)
			}
		}
		return nil
	}
	switch e := e.(type) {
	case spec.FunctionEntry:
		for _, p := range e.Params {
			if err := check(p.Type); err != nil {
				return err
			}
		}
		return check(e.Return)
	case spec.StructEntry:
		for _, f := range e.Fields {
			if err := check(f.Type); err != nil {
				return err
			}
		}
	case spec.UnionEntry:
		for _, c := range e.Cases {
			if c.Payload == nil {
				continue
			}
			if err := check(c.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func namedIn(t spec.TypeRef, acc []string) []string {
	switch t := t.(type) {
	case spec.Named:
		acc = append(acc, t.Name)
	case spec.Vec:
		acc = namedIn(t.Elem, acc)
	case spec.Map:
		acc = namedIn(t.Key, acc)
		acc = namedIn(t.Value, acc)
	case spec.Option:
		acc = namedIn(t.Elem, acc)
	case spec.Result:
		acc = namedIn(t.OK, acc)
		acc = namedIn(t.Err, acc)
	}
	return acc
}

// exportName turns a specification name into an exported Go
// identifier: lower_snake_case parts become CamelCase, names that are
// already CamelCase pass through.
func exportName(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			sb.WriteRune(toUpper(r))
			upper = false
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
