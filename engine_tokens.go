package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FrancescoMain/korsvagen-web-sub000/token"
)

// mapTokenErr translates token-package failures into the public taxonomy.
// Detail from the underlying parser stays attached for logs; callers
// classify with errors.Is.
func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, token.ErrRevoked):
		return fmt.Errorf("%w: %v", ErrTokenRevoked, err)
	case errors.Is(err, token.ErrExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

// IssuePair mints a fresh access/refresh pair for an already-authenticated
// principal. Login calls this internally; hosts use it for flows that
// establish identity through another channel.
func (e *Engine) IssuePair(userID, email, role string) (*TokenPair, error) {
	pair, err := e.tokens.IssuePair(userID, email, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return pair, nil
}

// VerifyAccess validates an access token and returns its claims. The
// revocation check runs before signature verification so a revoked token
// is rejected even when key material has rotated underneath it.
func (e *Engine) VerifyAccess(tokenString string) (*Claims, error) {
	start := e.now()

	claims, err := e.tokens.VerifyAccess(tokenString)

	if e.metrics != nil && e.config.Metrics.EnableLatencyHistograms {
		e.metrics.Observe(MetricValidateLatency, e.now().Sub(start))
	}
	if err != nil {
		e.metricInc(MetricTokenRejected)
		return nil, mapTokenErr(err)
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token without consuming it.
func (e *Engine) VerifyRefresh(tokenString string) (*Claims, error) {
	claims, err := e.tokens.VerifyRefresh(tokenString)
	if err != nil {
		e.metricInc(MetricTokenRejected)
		return nil, mapTokenErr(err)
	}
	return claims, nil
}

// Refresh rotates a refresh token: the presented token is verified,
// revoked, and replaced by a fresh pair carrying the same principal. A
// replayed refresh token therefore fails with ErrTokenRevoked.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)

	claims, err := e.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditRefreshFailure, false, "", "", ip, err, nil)
		return nil, mapTokenErr(err)
	}

	e.tokens.Revoke(refreshToken)
	e.metricInc(MetricTokenRevoked)

	pair, err := e.tokens.IssuePair(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditRefreshSuccess, true, claims.UserID, claims.Email, ip, nil, nil)

	return pair, nil
}

// Logout revokes the session's tokens. Both arguments are optional:
// revocation is attempted for whichever tokens the caller still holds.
// Revoking an already-revoked or expired token is not an error.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)
	userID := ""

	for _, ts := range []string{accessToken, refreshToken} {
		if ts == "" {
			continue
		}
		if userID == "" {
			if claims, err := e.tokens.VerifyAccess(ts); err == nil {
				userID = claims.UserID
			} else if claims, err := e.tokens.VerifyRefresh(ts); err == nil {
				userID = claims.UserID
			}
		}
		e.tokens.Revoke(ts)
		e.metricInc(MetricTokenRevoked)
	}

	e.emitAudit(ctx, auditLogout, true, userID, "", ip, nil, nil)
	return nil
}

// Revoke invalidates a single token immediately. The token does not need
// to verify; a malformed token is still reject-listed until its assumed
// lifetime passes.
func (e *Engine) Revoke(ctx context.Context, tokenString string) {
	if tokenString == "" {
		return
	}
	e.tokens.Revoke(tokenString)
	e.metricInc(MetricTokenRevoked)
	e.emitAudit(ctx, auditTokenRevoked, true, "", "", clientIPFromContext(ctx), nil, nil)
}

// IsRevoked reports whether a token sits on the revocation list.
func (e *Engine) IsRevoked(tokenString string) bool {
	return e.tokens.IsRevoked(tokenString)
}

// ExtractBearer pulls the token out of an Authorization header value.
// Returns "" when the header is absent or not in Bearer form.
func ExtractBearer(headerValue string) string {
	return token.ExtractBearer(headerValue)
}

// AccessTTL exposes the configured access-token lifetime, useful for
// setting cookie expiries alongside issued pairs.
func (e *Engine) AccessTTL() time.Duration {
	return e.config.Token.AccessTTL
}

// RefreshTTL exposes the configured refresh-token lifetime.
func (e *Engine) RefreshTTL() time.Duration {
	return e.config.Token.RefreshTTL
}
