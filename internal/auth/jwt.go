// Package auth provides the signed-in identity, session tokens and the hosted
// identity provider client.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. User visits /auth/signin → redirected to the hosted sign-in pages
//  2. The provider calls back /auth/callback with a code
//  3. Server exchanges the code (plus PKCE verifier) for a verified id_token
//  4. Server syncs users/{uid}, issues a session JWT and stores it in an
//     HttpOnly cookie
//  5. On subsequent API calls, middleware reads the cookie, validates the JWT,
//     and puts the Identity in the request context
//
// WHY A SESSION JWT AND NOT THE PROVIDER'S id_token?
// The id_token is meant for this server only once, at sign-in. The session
// token is ours: we choose its lifetime, its claims and its secret, and the
// middleware can check it without calling the provider.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"uid","name":"Alice","picture":"https://...","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "mentorchat"

// DefaultSessionTTL is used when NewTokenService is given a zero ttl.
const DefaultSessionTTL = 15 * time.Minute

// TokenService handles session JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and session
// lifetime. The secret should be at least 32 bytes of random data in
// production, for example JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens issued by Generate. Handlers use it as the
// session cookie MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the session payload. "sub" holds the uid; the profile claims use
// the OIDC standard names so they read the same as the provider's id_token.
type claims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Generate signs a session token for id that expires after the service TTL.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, s.ttl)
}

// GenerateWithDuration signs a session token with a custom lifetime.
// Tests use a negative duration to produce expired tokens.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	if id.UID == "" {
		return "", errors.New("auth: cannot issue a session without a uid")
	}

	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
		Name:  id.DisplayName,
		Email: id.Email,
	}
	if id.PhotoURL != nil {
		c.Picture = *id.PhotoURL
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token and returns the identity it
// carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid
//   - Token is not expired, and has an expiry at all
//   - Issuer matches
//   - Algorithm is HS256. Without this an attacker could send an
//     "alg":"none" token, or an RS256 token verified with our secret as
//     the public key.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, errors.New("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Identity{}, errors.New("auth: token has no subject")
	}

	id := Identity{UID: c.Subject, DisplayName: c.Name, Email: c.Email}
	if c.Picture != "" {
		pic := c.Picture
		id.PhotoURL = &pic
	}
	return id, nil
}
