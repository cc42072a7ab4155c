// Package ratelimit implements in-memory request throttling for the
// authentication surface.
//
// # Mechanisms
//
//   - Fixed-window counters per IP, one budget for general traffic and a
//     materially stricter one for authentication attempts.
//   - Sliding-window failure tracking per IP and per IP+identifier pair
//     inside a trailing window; enough per-IP failures hard-block the IP,
//     enough per-pair failures impose a progressive response delay.
//
// All state lives in mutex-guarded maps owned by the [Limiter] instance —
// there are no package-level singletons, so tests construct isolated
// limiters and a future multi-instance deployment can swap in a shared
// store behind the same call sites. Expired blocks are treated as absent
// on read; [Limiter.Sweep] exists purely to bound memory under sustained
// attack traffic and must be driven by the owner on a timer.
//
// # What this package must NOT do
//
//   - Spawn goroutines (the owner drives Sweep).
//   - Import authcore or any sibling internal package.
//   - Perform I/O.
package ratelimit
