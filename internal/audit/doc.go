// Package audit defines the canonical audit event model and delivery sinks
// used by the authcore engine.
//
// Events are emitted asynchronously through [Dispatcher] so that sink
// latency never blocks the authentication request path.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling internal package.
//   - Block the caller when a sink is slow (buffering and drop policy are
//     the dispatcher's responsibility).
package audit
