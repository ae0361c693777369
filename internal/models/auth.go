package models

import "github.com/golang-jwt/jwt/v5"

// StaffRole is the role carried by an admin portal token.
type StaffRole string

const (
	RoleAdmin   StaffRole = "ADMIN"
	RoleAdvisor StaffRole = "ADVISOR"
	RoleViewer  StaffRole = "VIEWER"
)

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	return r == RoleAdmin || r == RoleAdvisor || r == RoleViewer
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string    `json:"user_id"`
	Role   StaffRole `json:"role"`
	jwt.RegisteredClaims
}
