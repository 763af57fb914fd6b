// ABOUTME: JWT issuance and verification for the bearer authentication path
// ABOUTME: Uses HS256 signing with a server-held secret and a configurable validity window

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (username string, err error)
}

// TokenIssuer defines the interface for token issuance
type TokenIssuer interface {
	Issue(p *Principal) (string, error)
}

// TokenCodec issues and verifies HS256 signed JWTs. The authorities claim is
// a snapshot of the principal's authorities at issuance time; revoking a
// principal's authorities has no effect on already-issued, unexpired tokens.
// The bearer gate compensates by re-resolving authorities from the live
// credential store on every request.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
}

// NewTokenCodec creates a codec with the given secret and validity window.
func NewTokenCodec(secret []byte, validity time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, validity: validity}
}

// Issue creates a signed token bound to the principal's username and its
// current authority set.
func (c *TokenCodec) Issue(p *Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         p.Username,
		"authorities": p.Authorities,
		"iat":         now.Unix(),
		"exp":         now.Add(c.validity).Unix(),
		"jti":         uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the token signature and expiry, and extracts the subject
// username from the "sub" claim. Any structural, signature, or expiry failure
// is returned as an error; callers treat that as "no identity", never as a
// pipeline failure.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}
