package token

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired reports a token whose exp claim is in the past.
	ErrExpired = errors.New("token expired")
	// ErrInvalid reports a malformed token, a bad signature, or an
	// issuer/audience mismatch.
	ErrInvalid = errors.New("token invalid")
	// ErrRevoked reports a token present in the revocation set.
	ErrRevoked = errors.New("token revoked")
)

// Config defines the token manager parameters.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
	Now           func() time.Time
}

// Claims is the claim set carried by both access and refresh tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Pair bundles the two tokens issued for a successful authentication.
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	TokenType    string
}

// Manager issues and verifies access and refresh tokens. Safe for
// concurrent use after construction.
type Manager struct {
	config  Config
	revoked *RevocationSet
	now     func() time.Time
}

// NewManager validates cfg and creates a [Manager] with an empty
// revocation set.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("access and refresh secrets are required")
	}
	if subtle.ConstantTimeCompare(cfg.AccessSecret, cfg.RefreshSecret) == 1 {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must be >= access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{
		config:  cfg,
		revoked: NewRevocationSet(cfg.Now),
		now:     cfg.Now,
	}, nil
}

// IssueAccess signs a new access token for the given subject.
func (m *Manager) IssueAccess(userID, email, role string) (string, error) {
	return m.issue(userID, email, role, m.config.AccessSecret, m.config.AccessTTL)
}

// IssueRefresh signs a new refresh token for the given subject.
func (m *Manager) IssueRefresh(userID, email, role string) (string, error) {
	return m.issue(userID, email, role, m.config.RefreshSecret, m.config.RefreshTTL)
}

// IssuePair issues an access+refresh token pair in one call.
func (m *Manager) IssuePair(userID, email, role string) (*Pair, error) {
	access, err := m.IssueAccess(userID, email, role)
	if err != nil {
		return nil, err
	}
	refresh, err := m.IssueRefresh(userID, email, role)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.config.AccessTTL / time.Second),
		TokenType:    "Bearer",
	}, nil
}

func (m *Manager) issue(userID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    m.config.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

// VerifyAccess runs the full validity check for an access token and returns
// its claims. Failures are classified as [ErrExpired], [ErrInvalid], or
// [ErrRevoked].
func (m *Manager) VerifyAccess(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, m.config.AccessSecret)
}

// VerifyRefresh runs the full validity check for a refresh token and
// returns its claims.
func (m *Manager) VerifyRefresh(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, m.config.RefreshSecret)
}

func (m *Manager) verify(tokenStr string, secret []byte) (*Claims, error) {
	// Revocation wins over every other outcome, including expiry: a token
	// that was explicitly revoked must never read as merely expired.
	if m.revoked.Contains(tokenStr) {
		return nil, ErrRevoked
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalid
	}

	return claims, nil
}

// Revoke inserts the token string into the revocation set. Idempotent.
// The token's embedded exp bounds how long the entry is retained; a token
// that cannot be decoded is retained for the refresh TTL as a ceiling.
func (m *Manager) Revoke(tokenStr string) {
	if tokenStr == "" {
		return
	}

	evictAt := m.now().Add(m.config.RefreshTTL)
	if exp := unverifiedExpiry(tokenStr); exp != nil {
		evictAt = *exp
	}
	m.revoked.Add(tokenStr, evictAt)
}

// IsRevoked reports revocation-set membership without verifying the token.
func (m *Manager) IsRevoked(tokenStr string) bool {
	return m.revoked.Contains(tokenStr)
}

// SweepRevoked evicts revocation entries whose tokens have expired on
// their own. Returns the number of evicted entries.
func (m *Manager) SweepRevoked() int {
	return m.revoked.Sweep()
}

// RevokedCount returns the current revocation-set size.
func (m *Manager) RevokedCount() int {
	return m.revoked.Len()
}

// unverifiedExpiry decodes the exp claim without validating the signature.
// Revocation only ever denies; a forged exp can at worst retain the entry
// longer than needed.
func unverifiedExpiry(tokenStr string) *time.Time {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	tok, _, err := parser.ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return nil
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return nil
	}
	t := claims.ExpiresAt.Time
	return &t
}

// ExtractBearer parses an Authorization header value of the form
// "Bearer <token>". It returns "" rather than an error on malformed input;
// deciding what a missing token means is the caller's job.
func ExtractBearer(headerValue string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(headerValue, prefix) {
		return ""
	}
	return strings.TrimSpace(headerValue[len(prefix):])
}
