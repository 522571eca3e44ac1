// Package tokens issues and verifies the signed session tokens handed to an
// organization's admin after login.
//
// Tokens are HMAC-signed JWTs carrying the admin's subject id and the
// organization name. They are not stored anywhere; verification checks the
// signature, the algorithm and the expiry.
package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is written to the iss claim.
const Issuer = "orgmanager"

var (
	// ErrExpiredToken means the signature was valid but the token is past exp.
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidToken covers bad signatures, wrong algorithms and garbage input.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMalformedHeader means the Authorization header is not "Bearer <token>".
	ErrMalformedHeader = errors.New("invalid authorization header format")
	// ErrMissingHeader means the Authorization header is empty.
	ErrMissingHeader = errors.New("authorization header missing")
)

// Claims is the payload of a session token.
type Claims struct {
	AdminID          string `json:"adminId"`
	OrganizationName string `json:"organizationName"`
	jwt.RegisteredClaims
}

// Config configures a Service.
type Config struct {
	Secret    []byte
	Algorithm string        // HS256, HS384 or HS512
	TTL       time.Duration // lifetime of issued tokens
}

// Service signs and verifies tokens with one secret and algorithm.
type Service struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// New validates cfg and returns a Service.
func New(cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("tokens: signing secret is required")
	}
	method, err := SigningMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("tokens: TTL must be positive")
	}
	return &Service{
		secret: cfg.Secret,
		method: method,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// SigningMethod resolves an HMAC algorithm name.
func SigningMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("tokens: unsupported signing algorithm %q", alg)
	}
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token for the given admin and organization.
func (s *Service) Issue(adminID, organizationName string) (string, error) {
	now := s.now().UTC()
	claims := &Claims{
		AdminID:          adminID,
		OrganizationName: organizationName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Verify parses raw and returns its claims. Errors are ErrExpiredToken or
// ErrInvalidToken, wrapped with the parser's reason.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.AdminID == "" || claims.OrganizationName == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearer returns the token part of an Authorization header value.
// The value must be exactly two space-separated parts, the first of which is
// "bearer" in any case.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}
