package convert

import (
	"reflect"

	"github.com/wippyai/contract-sdk/spec"
)

// Unit is the Go representation of the void type. Use *Unit for union
// cases that carry no payload.
type Unit struct{}

// Union marks a Go struct as a tagged union. Embed UnionTag and declare
// one exported pointer field per case; exactly one field is non-nil at
// a time. A case with no payload uses *Unit.
type Union interface {
	isUnion()
}

// UnionTag is embedded in union structs to mark them as tagged unions.
type UnionTag struct{}

func (UnionTag) isUnion() {}

// EnumCase is one declared variant of an integer enum.
type EnumCase = spec.EnumCase

// Enum is implemented by integer types that represent a closed set of
// named u32 discriminants.
type Enum interface {
	EnumCases() []EnumCase
}

// ErrorEnum is an Enum that is also an error. Its values encode as
// error-tagged values carrying the case value as the code.
type ErrorEnum interface {
	Enum
	error
}

// TypeKind discriminates compiled type shapes.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindBool
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindString
	KindBytes
	KindSymbol
	KindAddress
	KindVec
	KindMap
	KindOption
	KindStruct
	KindUnion
	KindEnum
	KindErrorEnum
)

// CompiledField is one struct field with its conversion plan.
type CompiledField struct {
	Name     string // Go field name
	SpecName string // lower_snake_case field name in the specification
	Index    int    // Go struct field index
	Type     *CompiledType
}

// CompiledCase is one union case with its conversion plan. Payload is
// nil for *Unit cases.
type CompiledCase struct {
	Name    string // lower_snake_case discriminant symbol
	GoName  string // Go field name
	Index   int    // Go struct field index
	Payload *CompiledType
}

// CompiledType holds both halves of a type's derivation: the run-time
// conversion plan and the specification type reference. Both come from
// one walk over the Go type so they can never disagree.
type CompiledType struct {
	GoType reflect.Type
	Kind   TypeKind
	Ref    spec.TypeRef

	Elem   *CompiledType   // vec element, option element
	Key    *CompiledType   // map key
	Value  *CompiledType   // map value
	Fields []CompiledField // struct
	Cases  []CompiledCase  // union
	Enum   []EnumCase      // enum, error-enum

	// Entry is the user-defined-type entry for named kinds, nil for
	// primitives and anonymous composites.
	Entry spec.Entry
}
