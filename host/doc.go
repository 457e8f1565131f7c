// Package host provides an in-memory host environment for running and
// testing contracts without a wasm guest.
//
// Host implements val.Env: it owns the object store behind object handles,
// dispatches Invoke calls to registered native contract functions, and
// enforces handle scoping: every invocation runs in its own scope and
// ending the scope invalidates every handle minted during it.
//
// Around the value boundary it carries the collaborators a contract needs:
// per-contract persistent Storage keyed by tagged values, an ordered event
// log, a Deployer with deterministic address derivation, and a JSON ledger
// snapshot loader/saver for reproducible test states.
package host
