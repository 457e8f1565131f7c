package spec

import "fmt"

// TypeRef describes the shape of a value inside an interface specification.
// It is a closed union: primitive kinds plus the composite forms below.
type TypeRef interface {
	isTypeRef()
	String() string
}

// Prim is a primitive type reference.
type Prim byte

const (
	PrimVoid Prim = iota
	PrimBool
	PrimU32
	PrimI32
	PrimU64
	PrimI64
	PrimU128
	PrimI128
	PrimString
	PrimBytes
	PrimSymbol
	PrimAddress
	PrimLedgerKey
)

func (Prim) isTypeRef() {}

func (p Prim) String() string {
	switch p {
	case PrimVoid:
		return "void"
	case PrimBool:
		return "bool"
	case PrimU32:
		return "u32"
	case PrimI32:
		return "i32"
	case PrimU64:
		return "u64"
	case PrimI64:
		return "i64"
	case PrimU128:
		return "u128"
	case PrimI128:
		return "i128"
	case PrimString:
		return "string"
	case PrimBytes:
		return "bytes"
	case PrimSymbol:
		return "symbol"
	case PrimAddress:
		return "address"
	case PrimLedgerKey:
		return "ledger_key"
	default:
		return fmt.Sprintf("prim(%d)", byte(p))
	}
}

// Vec is a homogeneous sequence type reference.
type Vec struct {
	Elem TypeRef
}

func (Vec) isTypeRef() {}

func (v Vec) String() string {
	return "vec<" + v.Elem.String() + ">"
}

// Map is an ordered key/value mapping type reference.
type Map struct {
	Key   TypeRef
	Value TypeRef
}

func (Map) isTypeRef() {}

func (m Map) String() string {
	return "map<" + m.Key.String() + ", " + m.Value.String() + ">"
}

// Option is an optional value type reference. Absence encodes as void.
type Option struct {
	Elem TypeRef
}

func (Option) isTypeRef() {}

func (o Option) String() string {
	return "option<" + o.Elem.String() + ">"
}

// Result is a success-or-error type reference.
type Result struct {
	OK  TypeRef
	Err TypeRef
}

func (Result) isTypeRef() {}

func (r Result) String() string {
	return "result<" + r.OK.String() + ", " + r.Err.String() + ">"
}

// Named references a user-defined type entry by name.
type Named struct {
	Name string
}

func (Named) isTypeRef() {}

func (n Named) String() string {
	return n.Name
}

// Entry is one declaration inside an interface specification.
type Entry interface {
	isEntry()
	EntryName() string
}

// Param is one named function parameter.
type Param struct {
	Name string
	Type TypeRef
}

// FunctionEntry describes one callable contract function.
type FunctionEntry struct {
	Name   string
	Doc    string
	Params []Param
	Return TypeRef
}

func (FunctionEntry) isEntry() {}

// EntryName returns the function name.
func (f FunctionEntry) EntryName() string { return f.Name }

// Field is one named struct field.
type Field struct {
	Name string
	Type TypeRef
}

// StructEntry describes a user-defined struct type. Field order is the
// encoding order.
type StructEntry struct {
	Name   string
	Doc    string
	Fields []Field
}

func (StructEntry) isEntry() {}

// EntryName returns the struct name.
func (s StructEntry) EntryName() string { return s.Name }

// UnionCase is one variant of a union. Payload is nil for unit variants.
type UnionCase struct {
	Name    string
	Payload TypeRef
}

// UnionEntry describes a user-defined tagged union. The case name is the
// symbol discriminant stored as the first element of the encoded object.
type UnionEntry struct {
	Name  string
	Doc   string
	Cases []UnionCase
}

func (UnionEntry) isEntry() {}

// EntryName returns the union name.
func (u UnionEntry) EntryName() string { return u.Name }

// EnumCase is one variant of an integer enum.
type EnumCase struct {
	Name  string
	Value uint32
}

// EnumEntry describes a user-defined integer enum. The case value is the
// u32 discriminant stored as the first element of the encoded object.
type EnumEntry struct {
	Name  string
	Doc   string
	Cases []EnumCase
}

func (EnumEntry) isEntry() {}

// EntryName returns the enum name.
func (e EnumEntry) EntryName() string { return e.Name }

// ErrorEnumEntry describes a user-defined error enum. Values encode as
// error-tagged values carrying the case value as the code.
type ErrorEnumEntry struct {
	Name  string
	Doc   string
	Cases []EnumCase
}

func (ErrorEnumEntry) isEntry() {}

// EntryName returns the error enum name.
func (e ErrorEnumEntry) EntryName() string { return e.Name }
