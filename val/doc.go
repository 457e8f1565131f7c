// Package val implements the tagged value representation exchanged with
// the execution host.
//
// A Val is a single 64-bit word: the low byte is a Tag, the remaining 56
// bits are the body. Small scalars (void, bool, 32-bit integers, reduced
// range 64/128-bit integers, short symbols, error codes) live entirely in
// the body. Everything else is an opaque object handle that the host
// resolves to host-owned storage; the core reads, writes, and compares
// those objects only through the Env primitive set and never holds a raw
// pointer into host memory.
//
// Every (type, value) pair has exactly one canonical encoding: the
// constructors in this package always pick the inline form when the value
// fits. Decoding is strict and returns a typed error for a mismatched tag
// or malformed payload.
//
// Compare defines a total, stable ordering over all values, which makes
// map objects canonical: NewMap sorts by key, so the same logical key set
// always produces the same encoding.
//
// Handles are scoped to the current invocation: an Env may reject a handle
// minted in a scope that has since ended. Nothing in this package retains
// handles across calls.
package val
