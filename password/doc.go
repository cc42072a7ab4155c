// Package password implements credential hashing, verification, strength
// scoring, and random generation with Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The [Hasher] supports transparent parameter upgrades: if the stored hash
// was produced with weaker parameters, [Hasher.NeedsUpgrade] returns true so
// the caller can re-hash on the next successful login.
//
// Hashing is deliberately CPU-bound. The [Hasher] bounds the number of
// concurrent hashing operations with a weighted semaphore so a login storm
// cannot turn the cost factor into a denial-of-service vector; Hash and
// Verify honor context cancellation while waiting for a slot.
//
// # Architecture boundaries
//
// This package owns hashing, verification, and the pure strength scorer.
// When a hash is applied (login, password change) is the Engine's call.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other authcore package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
