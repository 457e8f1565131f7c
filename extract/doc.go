// Package extract derives interface specifications from Go contract
// declarations.
//
// An Extractor walks registered functions and types with one compiler,
// so every specification entry and the conversion code behind it come
// from a single type-reference table. Build finalizes the entries into
// a spec and its canonical bytes; Handlers exposes the matching
// dispatch functions for host registration.
package extract
