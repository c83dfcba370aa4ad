package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and validates session tokens. The signing secret is
// injected at construction; business code never reads it from the
// environment. Tokens carry a fixed validity window and there is no
// refresh or revocation path: expiry is the only invalidation.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
}

var errMissingSecret = errors.New("jwt: signing secret is required")

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errMissingSecret
	}
	return &TokenIssuer{Secret: []byte(secret), TTL: ttl}, nil
}

// SessionClaims assert {identity id, mobile, role} for one session.
type SessionClaims struct {
	IdentityID string `json:"uid"`
	Mobile     string `json:"mobile"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a session token for the given identity.
func (m *TokenIssuer) Issue(identityID, mobile, role string) (string, time.Time, error) {
	exp := time.Now().Add(m.TTL)
	claims := &SessionClaims{
		IdentityID: identityID,
		Mobile:     mobile,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse validates a session token and returns its claims.
func (m *TokenIssuer) Parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
