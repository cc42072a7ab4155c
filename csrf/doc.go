// Package csrf implements the double-submit token pattern.
//
// A [Guard] generates opaque CSPRNG-backed tokens. The host delivers one
// copy in a cookie and expects the client to echo it back in a header or
// form field; validation requires both copies to be present and equal. No
// server-side state is kept — security rests on the attacker's inability
// to read the cookie cross-origin.
//
// Comparison is constant-time. The token is opaque random material, so
// timing leakage is a secondary concern, but the non-early-exit compare
// costs nothing here.
package csrf
