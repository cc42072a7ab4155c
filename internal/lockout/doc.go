// Package lockout coordinates persistent failed-attempt accounting and
// account lock state for credential records.
//
// The credential store owns the durable record; this package owns the
// read-modify-write discipline around it. Concurrent attempts against the
// same identity are serialized on a per-identity mutex, and the coordinator
// keeps the in-flight count of the current failure series so a stale read
// taken before password verification cannot undercount.
//
// [Check] is a pure decision function over a record snapshot, independently
// testable from the persistence side.
package lockout
