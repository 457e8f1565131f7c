// Package contractsdk is a development kit for building and hosting smart
// contracts that exchange data as 64-bit tagged values.
//
// Small scalars travel inline in a single machine word; larger values live
// in host objects addressed by handle. Contract interfaces are described by
// a compact binary spec embedded in the contract binary, and Go bindings are
// generated from that spec.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	contract-sdk/        Root package documentation
//	├── val/             Tagged 64-bit values, object kinds, canonical ordering
//	├── host/            In-process host: object store, storage, events, deploy
//	├── convert/         Reflection-based conversion between Go types and values
//	├── spec/            Contract interface entries, validation, binary codec
//	├── extract/         Derive a spec and dispatch handlers from Go functions
//	├── bindgen/         Generate Go client bindings from a spec
//	├── vm/              Run wasm contracts against the host via wazero
//	├── errors/          Structured error types for debugging
//	└── cmd/spectool/    Inspect, browse, and generate bindings from specs
//
// # Quick Start
//
// Register a Go contract, derive its spec, and invoke it:
//
//	h := host.New()
//
//	x := extract.New()
//	if err := x.Contract(Token{}); err != nil {
//	    log.Fatal(err)
//	}
//	s, raw, err := x.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	addr, err := host.NewDeployer(h, operator).Deploy(x.Handlers())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ret, err := h.Invoke(addr, "balance", []val.Val{owner.Val()})
//
// Generate a typed client from the spec:
//
//	src, err := bindgen.Generate(s, bindgen.Options{Package: "token"})
//
// # Value Model
//
// Every value is a val.Val: an 8-bit tag and a 56-bit body. Booleans, void,
// small integers, short symbols, and error codes are inline and comparable
// without host access. Strings, byte arrays, wide integers, vectors, maps,
// and addresses are host objects; their handles are scoped to the invocation
// that created them unless frozen into storage.
//
// Comparison is total: values order first by category, then by content.
// Maps hold their keys in this order, so map iteration and encoding are
// deterministic.
//
// # Thread Safety
//
// Host is safe for concurrent use. A Storage or Context handed to a contract
// function is bound to one invocation and must not be retained past it.
package contractsdk
