// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"storefront/internal/domain/service"
)

// jwtInspector reads backend-issued access tokens without verifying them.
type jwtInspector struct {
	parser *jwt.Parser
}

// NewJWTInspector is the constructor for the token inspector.
func NewJWTInspector() service.TokenInspector {
	return &jwtInspector{parser: jwt.NewParser()}
}

// Inspect parses the token claims. Only the shape is checked.
func (s *jwtInspector) Inspect(token string) (*service.TokenClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}

	result := &service.TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		result.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	if role, ok := claims["role"].(string); ok {
		result.Role = role
	}

	return result, nil
}
