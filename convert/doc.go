// Package convert derives tagged value conversions for Go types by
// reflection.
//
// A Compiler walks a Go type once and produces a CompiledType holding
// two synchronized artifacts: the run-time conversion plan executed by
// ToVal and FromVal, and the specification type reference used by
// interface extraction. Because both come from the same walk, the
// specification can never describe a shape the conversion code does
// not produce.
//
// Supported Go types: bool, uint32, int32, uint64, int64, val.U128,
// val.I128, string, []byte, val.Symbol, val.Address, slices, maps,
// pointers (options), structs, unions (structs embedding UnionTag) and
// uint32-based enums implementing Enum or ErrorEnum.
package convert
