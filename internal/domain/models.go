// internal/domain/models.go
package domain

import "time"

// AdminUser is an account allowed to sign in to the admin panel.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// GetUsername satisfies admin.User.
func (u *AdminUser) GetUsername() string {
	return u.Username
}
