package authcore

import "errors"

var (
	// ErrEngineNotReady is returned when a method is called on an engine
	// that was not built through the Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidCredentials covers both a wrong password and an unknown
	// identity; the two are deliberately indistinguishable to callers so
	// responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned while a credential record's lock window
	// is still open. The remaining duration travels via LockStatus.
	ErrAccountLocked = errors.New("account locked")
	// ErrRateLimited is returned when a fixed-window budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrIPBlocked is returned when the source IP is hard-blocked; every
	// request from that IP short-circuits until the block expires.
	ErrIPBlocked = errors.New("ip blocked")
	// ErrTokenExpired is returned for a token whose exp is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for a malformed token, bad signature, or
	// issuer/audience mismatch.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenRevoked is returned for a token present in the revocation
	// set, regardless of its signature and expiry.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrCSRFMismatch is returned when double-submit validation fails.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
	// ErrHashingFailure reports an infrastructure failure in the password
	// primitive. 5xx-class; logged with detail, surfaced generically.
	ErrHashingFailure = errors.New("password hashing failure")
	// ErrInvalidHashFormat reports a stored hash that could not be parsed.
	// Defensive; should not occur in normal operation.
	ErrInvalidHashFormat = errors.New("invalid stored hash format")
	// ErrPasswordPolicy is returned when a new password fails the
	// strength rule set.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is returned when a password change submits the
	// current password as the new one.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrCredentialStoreUnavailable wraps failures from the host's
	// credential repository.
	ErrCredentialStoreUnavailable = errors.New("credential store unavailable")
	// ErrIdentityNotFound is the sentinel a CredentialStore implementation
	// returns for a lookup miss. The engine collapses it into
	// ErrInvalidCredentials; it never escapes to a client.
	ErrIdentityNotFound = errors.New("identity not found")
)
