package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by ParseClaims for opaque tokens.
var ErrNotJWT = errors.New("token is not a JWT")

type tokenClaims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	Role   string `json:"role"`
	UserID string `json:"id"`
}

// Claims are the fields of an access token this client cares about. The
// signature is never verified here; the API does that.
type Claims struct {
	Subject   string
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time // zero when the token has no exp
}

// Expired reports whether the token carried an exp at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes token without verifying its signature.
func ParseClaims(token string) (Claims, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, errors.Join(ErrNotJWT, err)
	}

	out := Claims{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
