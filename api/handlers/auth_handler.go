// api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-admin/api/models"
	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/auth"
	"github.com/Annany2002/nebula-admin/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	Auth auth.Authenticator
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(authenticator auth.Authenticator) *AuthHandler {
	return &AuthHandler{Auth: authenticator}
}

// Login handles login requests and issues a JWT on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		customLog.Warnf("Handler: Login binding error: %v", err)
		_ = c.Error(err)
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token: res.Token,
		User:  admin.UserProfile{Username: res.User.Username},
	})
}
