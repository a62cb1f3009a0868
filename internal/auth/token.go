package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kestrelgames/gamestore/internal/catalog"
)

// Claims carries the principal a session token authenticates, in place of
// the original's opaque secrets.token_urlsafe(32) lookup token: a signed
// JWT lets the lobby and developer listeners validate a token without a
// catalog round trip, while the catalog's session tables remain the
// revocation list (LOGOUT deletes the row; ValidateSession also checks the
// row still exists).
type Claims struct {
	PrincipalID   int64                 `json:"principal_id"`
	PrincipalKind catalog.PrincipalKind `json:"principal_kind"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates session tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer builds a TokenIssuer over the configured JWT secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue signs a token for principal/kind with the given lifetime.
func (i *TokenIssuer) Issue(principalID int64, kind catalog.PrincipalKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		PrincipalID:   principalID,
		PrincipalKind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning its claims.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("auth: invalid session token")
	}
	return claims, nil
}
