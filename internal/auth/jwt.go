// Package auth issues and validates the bearer tokens that guard the search
// endpoints. Tokens are HS256 JWTs whose subject names the calling client.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTokenTTL is how long issued tokens are valid.
	DefaultTokenTTL = 24 * time.Hour

	DefaultIssuer   = "norikae"
	DefaultAudience = "norikae-api"
)

var (
	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrAccessTokenExpired = errors.New("access token has expired")
	ErrMissingSubject     = errors.New("token subject is required")
)

// JWTClaims are the claims carried by an access token. Subject is the
// client ID used for rate limiting.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// JWTConfig holds configuration for a JWTService. Zero fields take the
// package defaults.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration

	// Now is the clock used for issuing and for expiry checks.
	Now func() time.Time
}

// JWTService issues and validates access tokens with a single shared key.
type JWTService struct {
	key    []byte
	issuer string
	aud    string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService creates a JWTService.
func NewJWTService(cfg JWTConfig) *JWTService {
	s := &JWTService{
		key:    []byte(cfg.SigningKey),
		issuer: orDefault(cfg.Issuer, DefaultIssuer),
		aud:    orDefault(cfg.Audience, DefaultAudience),
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.aud),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return s
}

// GenerateAccessToken signs a token for subject and returns it with its
// expiry.
func (s *JWTService) GenerateAccessToken(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, ErrMissingSubject
	}

	issued := s.now()
	claims := s.claims(subject, issued)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// ValidateAccessToken checks the signature, issuer, audience and expiry of
// raw. Expired tokens fail with ErrAccessTokenExpired; every other problem
// wraps ErrInvalidAccessToken.
func (s *JWTService) ValidateAccessToken(raw string) (*JWTClaims, error) {
	claims := &JWTClaims{}

	token, err := s.parser.ParseWithClaims(raw, claims, s.signingKey)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrAccessTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	case !token.Valid:
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

func (s *JWTService) claims(subject string, issued time.Time) *JWTClaims {
	return &JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.aud},
		IssuedAt:  jwt.NewNumericDate(issued),
		NotBefore: jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
	}}
}

func (s *JWTService) signingKey(*jwt.Token) (interface{}, error) {
	return s.key, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
