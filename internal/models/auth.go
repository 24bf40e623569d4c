package models

import "github.com/golang-jwt/jwt/v5"

// UserRole determines what an authenticated caller may do.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleGroupLeader UserRole = "GROUP_LEADER"
	RoleWorker      UserRole = "WORKER"
)

// JWTClaims represents the JWT payload for access tokens issued by the
// identity service. This API only validates tokens, it never issues them.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry administrator privileges.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
