package utils // package utils provides helper functions for token creation and hashing

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken represents a signed JWT along with its expiry.  The Token
// field contains the serialized JWT string.  Session tokens are stateless:
// validity is determined solely by signature and expiry, and the embedded
// claims are a snapshot of the account at issuance time.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenClaims is the identity snapshot embedded in every session token.
// The admin console reads full_name straight from the token, so it is
// carried alongside the authorization claims.
type TokenClaims struct {
	ID       uint64 // user id (sub)
	Email    string // account email at issuance
	Role     string // role at issuance; may go stale until the token expires
	FullName string // display name at issuance
}

// NewSessionToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the identity snapshot and a TTL in hours, and returns a
// SessionToken containing the signed token and its expiration time.  The
// JWT carries sub, email, role, full_name plus the standard exp and iat
// claims.
func NewSessionToken(secret string, c TokenClaims, ttlHours int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":       c.ID,
		"email":     c.Email,
		"role":      c.Role,
		"full_name": c.FullName,
		"exp":       exp.Unix(),
		"iat":       time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}
