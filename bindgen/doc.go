// Package bindgen generates typed Go client bindings from a finalized
// interface specification.
//
// Generation runs a small state machine: INPUT takes one specification,
// RESOLVE builds the symbol table and rejects unresolved or colliding
// names, EMIT writes one type definition per user-defined type and one
// Client method per function in declaration order. Client methods
// convert arguments to tagged values, call the host invoke primitive,
// and decode the result, surfacing failures as typed invocation errors
// that keep "the callee rejected the call" distinct from "the return
// value does not decode".
//
// The generator reads only the specification, never the contract
// source.
package bindgen
