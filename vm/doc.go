// Package vm runs wasm contracts against a host environment.
//
// A Runtime wraps a wazero runtime and exposes the host primitive set
// to guests as the contract_host import module. Tagged values cross
// the boundary as raw u64 words; object handles never leave the host.
// Contract binaries embed their interface specification in the
// contractspec custom section, which LoadContract reads to register
// one dispatch handler per declared function.
package vm
