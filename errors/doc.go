// Package errors provides structured error types for the contract SDK.
//
// Errors carry a Phase (where processing failed) and a Kind (what went
// wrong), plus optional context: the field path, the Go and spec type
// names involved, the offending value, and a wrapped cause.
//
// Conversion kinds (wrong_tag, not_an_object, missing_field,
// unknown_variant, out_of_range) are always recoverable by the immediate
// caller and are returned as typed results at every layer, never panics.
// Specification kinds (unresolved_reference, duplicate_name,
// signature_conflict, recursive_type) are detected at build time and are
// fatal to the build; their messages name the offending declaration.
//
// InvocationError is a separate type used by generated client stubs to
// keep "the callee rejected the call" distinguishable from "the callee
// returned something this binding cannot decode".
package errors
