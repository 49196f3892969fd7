package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "plantkeeper"

// sessionTTL is how long a login cookie stays valid. A day matches the
// rhythm of the app — people check their plants daily, not per-minute.
const sessionTTL = 24 * time.Hour

// Identity is the authenticated caller, as carried in the JWT and in the
// request context. Username is included alongside the internal ID because
// plant ownership is keyed by username.
type Identity struct {
	UserID   string
	Username string
}

// TokenService signs and verifies session JWTs with an HMAC secret.
// The same secret must be used for both; at least 16 characters, ideally
// 32+ bytes of randomness (openssl rand -hex 32).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the default session TTL.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: sessionTTL}, nil
}

// claims embeds the registered claims (sub = user ID, exp, iat, iss) and
// adds the username, which ownership checks need without a DB lookup.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate signs a session token for the given identity.
func (s *TokenService) Generate(id Identity) (string, error) {
	now := time.Now()

	c := claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns the identity it
// encodes. Signature, expiry, issuer, and algorithm (HS256 only — guards
// against algorithm-confusion tokens) are all checked.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" || c.Username == "" {
		return Identity{}, fmt.Errorf("auth: token missing identity")
	}

	return Identity{UserID: c.Subject, Username: c.Username}, nil
}
