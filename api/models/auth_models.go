// api/models/auth_models.go
package models

import "github.com/Annany2002/nebula-admin/internal/admin"

// LoginRequest defines the structure for login requests
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and its owner.
type LoginResponse struct {
	Token string            `json:"token"`
	User  admin.UserProfile `json:"user"`
}
