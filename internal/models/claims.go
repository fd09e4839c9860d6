package models

import "github.com/golang-jwt/jwt/v5"

// Principal types carried in tokens.
const (
	SubjectAdmin = "admin"
	SubjectUser  = "user"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	SubjectType  string   `json:"subject_type"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	if c.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the token belongs to an admin-panel account.
func (c *UserClaims) IsAdmin() bool {
	return c.SubjectType == SubjectAdmin
}
