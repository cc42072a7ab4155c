// Package authcore provides the authentication and abuse-resistance core
// for a content-management backend: JWT access/refresh token lifecycle with
// in-memory revocation, Argon2id credential verification, layered rate
// limiting with IP blocking and progressive delay, account lockout
// coordination, and double-submit CSRF tokens.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. All mutable security state (revocation set, limiter
// maps, lockout bookkeeping) is owned by the Engine instance — there are
// no module-level singletons, so tests construct isolated engines and a
// multi-instance deployment can later inject a shared store without
// touching call sites.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// sentinel errors, and value types (TokenPair, AdmitDecision, LockStatus,
// AuditEvent). Internal coordination — rate limiting, lockout accounting,
// audit dispatch, metric storage — lives under internal/ and is never
// exported. The host application supplies the one external collaborator,
// a [CredentialStore], and composes the HTTP boundary itself (the
// middleware package covers the common cases).
//
// # What this package must NOT do
//
//   - Perform network or disk I/O outside of CredentialStore calls.
//   - Persist revocation or limiter state; both are explicitly ephemeral
//     and single-instance.
//   - Import any sub-package that re-imports authcore (no import cycles).
package authcore
