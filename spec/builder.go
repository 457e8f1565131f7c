package spec

import (
	"strings"

	"github.com/wippyai/contract-sdk/errors"
)

// Spec is a finalized, immutable interface specification. Entries keep
// their declaration order; the order is significant to external tooling
// and is preserved through serialization.
type Spec struct {
	entries []Entry
	byName  map[string]Entry
	encoded []byte
}

// Entries returns the entries in declaration order.
func (s *Spec) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Lookup returns the entry with the given name, if any.
func (s *Spec) Lookup(name string) (Entry, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Functions returns the function entries in declaration order.
func (s *Spec) Functions() []FunctionEntry {
	var out []FunctionEntry
	for _, e := range s.entries {
		if f, ok := e.(FunctionEntry); ok {
			out = append(out, f)
		}
	}
	return out
}

// Builder accumulates specification entries and validates them at
// finalize time. It is not safe for concurrent use.
type Builder struct {
	entries []Entry
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an entry in declaration order.
func (b *Builder) Add(e Entry) *Builder {
	b.entries = append(b.entries, e)
	return b
}

// Len returns the number of accumulated entries.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Finalize validates the accumulated entries and produces an immutable
// Spec. It checks that every named reference resolves to a type entry,
// that no two entries share a name (identical duplicate functions
// collapse to one; conflicting signatures are rejected), and that no
// type contains itself without passing through an indirection point.
func (b *Builder) Finalize() (*Spec, error) {
	entries, byName, err := dedupe(normalizeEntries(b.entries))
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if err := checkCases(e); err != nil {
			return nil, err
		}
		if err := checkResolved(e, byName); err != nil {
			return nil, err
		}
	}

	if err := checkAcyclic(entries, byName); err != nil {
		return nil, err
	}

	s := &Spec{entries: entries, byName: byName}
	s.encoded = encodeSpec(s)
	return s, nil
}

// normalizeEntries fills in the implied void return on function entries
// so equality checks and the codec see one canonical form.
func normalizeEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		if f, ok := e.(FunctionEntry); ok && f.Return == nil {
			f.Return = PrimVoid
			e = f
		}
		out[i] = e
	}
	return out
}

// checkCases enforces discriminant uniqueness inside one entry. A union
// or enum with two cases behind one discriminant would decode
// ambiguously, always binding the first.
func checkCases(e Entry) error {
	switch e := e.(type) {
	case UnionEntry:
		seen := make(map[string]bool, len(e.Cases))
		for _, c := range e.Cases {
			if seen[c.Name] {
				return errors.InvalidData(errors.PhaseSpec, []string{e.Name},
					"union case "+c.Name+" declared more than once")
			}
			seen[c.Name] = true
		}
	case EnumEntry:
		return checkEnumCases(e.Name, e.Cases)
	case ErrorEnumEntry:
		return checkEnumCases(e.Name, e.Cases)
	}
	return nil
}

func checkEnumCases(name string, cases []EnumCase) error {
	names := make(map[string]bool, len(cases))
	values := make(map[uint32]string, len(cases))
	for _, c := range cases {
		if names[c.Name] {
			return errors.InvalidData(errors.PhaseSpec, []string{name},
				"enum case "+c.Name+" declared more than once")
		}
		names[c.Name] = true
		if prev, dup := values[c.Value]; dup {
			return errors.InvalidData(errors.PhaseSpec, []string{name},
				"enum cases "+prev+" and "+c.Name+" share one discriminant")
		}
		values[c.Value] = c.Name
	}
	return nil
}

// dedupe enforces name uniqueness. Two function entries with the same
// name are allowed only when structurally identical; type entries must
// be unique unconditionally.
func dedupe(in []Entry) ([]Entry, map[string]Entry, error) {
	entries := make([]Entry, 0, len(in))
	byName := make(map[string]Entry, len(in))
	for _, e := range in {
		prev, seen := byName[e.EntryName()]
		if !seen {
			byName[e.EntryName()] = e
			entries = append(entries, e)
			continue
		}
		pf, prevFn := prev.(FunctionEntry)
		ef, curFn := e.(FunctionEntry)
		if prevFn && curFn {
			if entryEqual(pf, ef) {
				continue
			}
			return nil, nil, errors.SignatureConflict(e.EntryName())
		}
		return nil, nil, errors.DuplicateName(e.EntryName())
	}
	return entries, byName, nil
}

func checkResolved(e Entry, byName map[string]Entry) error {
	for _, ref := range namedRefs(e) {
		target, ok := byName[ref]
		if !ok {
			return errors.UnresolvedReference(e.EntryName(), ref)
		}
		if _, isFn := target.(FunctionEntry); isFn {
			return errors.UnresolvedReference(e.EntryName(), ref)
		}
	}
	return nil
}

// namedRefs collects every Named reference inside an entry, including
// those behind indirection points.
func namedRefs(e Entry) []string {
	var refs []string
	visit := func(t TypeRef) {
		refs = append(refs, collectNamed(t, nil)...)
	}
	switch e := e.(type) {
	case FunctionEntry:
		for _, p := range e.Params {
			visit(p.Type)
		}
		visit(e.Return)
	case StructEntry:
		for _, f := range e.Fields {
			visit(f.Type)
		}
	case UnionEntry:
		for _, c := range e.Cases {
			if c.Payload != nil {
				visit(c.Payload)
			}
		}
	}
	return refs
}

func collectNamed(t TypeRef, acc []string) []string {
	switch t := t.(type) {
	case Named:
		acc = append(acc, t.Name)
	case Vec:
		acc = collectNamed(t.Elem, acc)
	case Map:
		acc = collectNamed(t.Key, acc)
		acc = collectNamed(t.Value, acc)
	case Option:
		acc = collectNamed(t.Elem, acc)
	case Result:
		acc = collectNamed(t.OK, acc)
		acc = collectNamed(t.Err, acc)
	}
	return acc
}

// checkAcyclic rejects type graphs where an entry contains itself
// without an indirection point in between. Vec, Map and Option break
// the chain because their encoded size does not depend on the element
// type's size; struct fields, union payloads and Result arms do not.
func checkAcyclic(entries []Entry, byName map[string]Entry) error {
	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(entries))
	var stack []string

	var visitEntry func(name string) error
	var visitType func(t TypeRef) error

	visitType = func(t TypeRef) error {
		switch t := t.(type) {
		case Named:
			return visitEntry(t.Name)
		case Result:
			if err := visitType(t.OK); err != nil {
				return err
			}
			return visitType(t.Err)
		}
		// Vec, Map, Option and primitives are indirection points or leaves.
		return nil
	}

	visitEntry = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case onStack:
			cycle := append(cycleFrom(stack, name), name)
			return errors.RecursiveType(cycle)
		}
		state[name] = onStack
		stack = append(stack, name)
		defer func() {
			stack = stack[:len(stack)-1]
			state[name] = done
		}()

		switch e := byName[name].(type) {
		case StructEntry:
			for _, f := range e.Fields {
				if err := visitType(f.Type); err != nil {
					return err
				}
			}
		case UnionEntry:
			for _, c := range e.Cases {
				if c.Payload == nil {
					continue
				}
				if err := visitType(c.Payload); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, e := range entries {
		if _, isFn := e.(FunctionEntry); isFn {
			continue
		}
		if err := visitEntry(e.EntryName()); err != nil {
			return err
		}
	}
	return nil
}

func cycleFrom(stack []string, name string) []string {
	for i, n := range stack {
		if n == name {
			return append([]string(nil), stack[i:]...)
		}
	}
	return append([]string(nil), stack...)
}

// Equal reports structural equality of two specifications. Entry order
// does not matter; entry contents do.
func Equal(a, b *Spec) bool {
	if len(a.entries) != len(b.entries) {
		return false
	}
	for name, ea := range a.byName {
		eb, ok := b.byName[name]
		if !ok || !entryEqual(ea, eb) {
			return false
		}
	}
	return true
}

func entryEqual(a, b Entry) bool {
	switch a := a.(type) {
	case FunctionEntry:
		b, ok := b.(FunctionEntry)
		if !ok || a.Name != b.Name || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i].Name != b.Params[i].Name || !typeEqual(a.Params[i].Type, b.Params[i].Type) {
				return false
			}
		}
		return typeEqual(a.Return, b.Return)
	case StructEntry:
		b, ok := b.(StructEntry)
		if !ok || a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !typeEqual(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case UnionEntry:
		b, ok := b.(UnionEntry)
		if !ok || a.Name != b.Name || len(a.Cases) != len(b.Cases) {
			return false
		}
		for i := range a.Cases {
			if a.Cases[i].Name != b.Cases[i].Name {
				return false
			}
			ap, bp := a.Cases[i].Payload, b.Cases[i].Payload
			if (ap == nil) != (bp == nil) {
				return false
			}
			if ap != nil && !typeEqual(ap, bp) {
				return false
			}
		}
		return true
	case EnumEntry:
		b, ok := b.(EnumEntry)
		return ok && a.Name == b.Name && casesEqual(a.Cases, b.Cases)
	case ErrorEnumEntry:
		b, ok := b.(ErrorEnumEntry)
		return ok && a.Name == b.Name && casesEqual(a.Cases, b.Cases)
	}
	return false
}

func casesEqual(a, b []EnumCase) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func typeEqual(a, b TypeRef) bool {
	switch a := a.(type) {
	case Prim:
		b, ok := b.(Prim)
		return ok && a == b
	case Vec:
		b, ok := b.(Vec)
		return ok && typeEqual(a.Elem, b.Elem)
	case Map:
		b, ok := b.(Map)
		return ok && typeEqual(a.Key, b.Key) && typeEqual(a.Value, b.Value)
	case Option:
		b, ok := b.(Option)
		return ok && typeEqual(a.Elem, b.Elem)
	case Result:
		b, ok := b.(Result)
		return ok && typeEqual(a.OK, b.OK) && typeEqual(a.Err, b.Err)
	case Named:
		b, ok := b.(Named)
		return ok && a.Name == b.Name
	}
	return false
}

// Signature renders a function entry as a human-readable signature line.
func Signature(f FunctionEntry) string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	if f.Return != nil && !typeEqual(f.Return, PrimVoid) {
		sb.WriteString(" -> ")
		sb.WriteString(f.Return.String())
	}
	return sb.String()
}
