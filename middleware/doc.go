// Package middleware exposes HTTP adapters for bearer-token guarding,
// CSRF double-submit enforcement, and general rate limiting built on top
// of the authcore engine.
//
// # Guards
//
//   - [RequireAuth] — verifies the Authorization bearer token and injects
//     claims into the request context.
//   - [CSRF] — compares the X-CSRF-Token header against the csrf_token
//     cookie on state-changing methods.
//   - [RateLimit] — applies the general request window per client IP.
//
// Each guard extracts HTTP facts (header, cookie, remote address), calls
// the engine, and translates the outcome into a status code.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// implement authentication logic itself. All decisions are delegated to
// the engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly.
//   - Keep limiter or lockout state of its own.
//   - Make authorization decisions beyond pass/reject from the engine.
package middleware
