// Package governorengine implements the token-weighted governance engine
// inside the governance context.
//
// The module owns the governor lifecycle (initialize, proposal type
// registry), proposal orchestration (create, vote, execute), deterministic
// basis-point threshold evaluation, and governance event production through
// outbox-backed workers. Business rules live in the domain/application
// layers; persistence, the voting power oracle, and transports stay behind
// ports and adapters.
package governorengine
