package auth

import (
	"errors"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingSubject   = errors.New("missing subject in claims")
	ErrInvalidRole      = errors.New("missing or unknown role in claims")
)

// Claims are the JWT claims this service understands. The subject is the
// actor ID and Role selects what the actor may do.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
}

// Actor converts validated claims into the domain actor
func (c *Claims) Actor() (shared.Actor, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return shared.Actor{}, ErrMissingSubject
	}
	role, err := shared.ParseRole(c.Role)
	if err != nil {
		return shared.Actor{}, ErrInvalidRole
	}
	return shared.NewActor(id, role), nil
}

// ExpiresAtTime returns the token's expiration time, or zero if unset
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// JWTService signs and validates HS256 access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// IssueInput describes the token to mint
type IssueInput struct {
	ActorID uuid.UUID
	Role    shared.Role
	Name    string
	// TTL overrides the configured expiration when positive
	TTL time.Duration
}

// Issue mints a signed access token
func (s *JWTService) Issue(input IssueInput) (string, time.Time, error) {
	if input.ActorID == uuid.Nil {
		return "", time.Time{}, ErrMissingSubject
	}
	if !input.Role.IsValid() {
		return "", time.Time{}, ErrInvalidRole
	}

	ttl := s.expiration
	if input.TTL > 0 {
		ttl = input.TTL
	}
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.ActorID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: input.Role.String(),
		Name: input.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token and returns its claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// ValidateActor validates the token and resolves the actor it names
func (s *JWTService) ValidateActor(tokenString string) (shared.Actor, *Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return shared.Actor{}, nil, err
	}
	actor, err := claims.Actor()
	if err != nil {
		return shared.Actor{}, nil, err
	}
	return actor, claims, nil
}

// Expiration returns the default token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}
