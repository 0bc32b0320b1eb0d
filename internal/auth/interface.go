package auth

import "filehub/internal/domain/models"

// TokenVerifier defines the interface for bearer token verification.
// This keeps the middleware agnostic to how identities are issued.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid or expired.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
