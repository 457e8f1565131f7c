// Package spec models machine-readable contract interface
// specifications: the callable functions and user-defined types a
// contract exposes, each described by a closed recursive type-reference
// union.
//
// A Builder accumulates entries in declaration order and validates them
// at finalize time. Finalization rejects unresolved named references,
// duplicate names, conflicting function signatures and unindirected
// recursive types, and produces a deterministic binary serialization
// that external tooling reads back with Decode.
package spec
