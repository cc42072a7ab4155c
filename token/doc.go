// Package token implements the JWT lifecycle for authcore: issuance and
// verification of short-lived access tokens and long-lived refresh tokens,
// plus an in-memory revocation set.
//
// Access and refresh tokens are signed with distinct HS256 secrets so that
// a compromised refresh-signing key cannot be used to forge access tokens.
// A token is valid only when its signature verifies, it has not expired,
// its issuer and audience match the configured values, and it is absent
// from the revocation set. The revocation check runs before the signature
// is trusted.
//
// # Architecture boundaries
//
// This package owns token encoding, verification, and revocation state.
// Policy decisions (when to issue, when to revoke) belong to the Engine.
//
// # What this package must NOT do
//
//   - Perform network or disk I/O.
//   - Import authcore or any sibling package.
package token
