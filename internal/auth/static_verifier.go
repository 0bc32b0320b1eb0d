package auth

import (
	"strings"

	"filehub/internal/domain"
	"filehub/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// StaticVerifier treats the bearer token itself as the user id.
// Only for local development and tests: it authenticates nothing.
type StaticVerifier struct{}

// NewStaticVerifier creates a development verifier
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

func (StaticVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	userID := strings.TrimSpace(tokenString)
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}, nil
}

func (StaticVerifier) Close() error { return nil }
