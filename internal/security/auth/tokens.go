// Package auth issues and verifies the signed bearer tokens that carry
// identity and role claims. Stateless: no server-side session store.
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yourorg/bookingdesk/internal/domain"
)

var (
	// ErrInvalidCredential is returned for any signature, format, or claim
	// failure. The caller must re-authenticate.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrExpiredCredential is returned when the token's exp has passed.
	ErrExpiredCredential = errors.New("credential expired")
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 30 * time.Minute

// Claims are the JWT claims carried by a bearer token
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified subject of a bearer token
type Identity struct {
	Username string
	Role     domain.Role
}

// TokenManager signs tokens with an Ed25519 private key and verifies them
// with the corresponding public key. Keys are process-wide configuration,
// loaded once at startup; key material must never appear in logs or errors.
type TokenManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	issuer     string
	ttl        time.Duration
}

// NewTokenManager creates a token manager. ttl <= 0 falls back to DefaultTTL.
func NewTokenManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, issuer string, ttl time.Duration) *TokenManager {
	if issuer == "" {
		issuer = "bookingdesk"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		ttl:        ttl,
	}
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token for the given username and role, expiring after the
// configured TTL. Returns the token string and its expiry.
func (tm *TokenManager) Issue(username string, role domain.Role) (string, time.Time, error) {
	if tm.privateKey == nil {
		return "", time.Time{}, fmt.Errorf("token manager has no signing key")
	}
	if username == "" {
		return "", time.Time{}, fmt.Errorf("username required")
	}

	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(tm.privateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token's signature and claims and returns the identity it
// carries. Expired tokens yield ErrExpiredCredential; every other signature,
// format, or claim problem yields ErrInvalidCredential. Failures that are not
// credential problems propagate unwrapped so they surface as internal errors.
func (tm *TokenManager) Verify(tokenString string) (*Identity, error) {
	if tm.publicKey == nil {
		return nil, fmt.Errorf("token manager has no verification key")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.publicKey, nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredential
		}
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.Subject == "" {
		return nil, ErrInvalidCredential
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return nil, ErrInvalidCredential
	}

	return &Identity{
		Username: claims.Subject,
		Role:     role,
	}, nil
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
