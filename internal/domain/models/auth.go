package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the bearer token payload. Only the subject is used: it is the
// opaque user id that owns folders, files and grants.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
