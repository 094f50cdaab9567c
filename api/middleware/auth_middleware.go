// api/middleware/auth_middleware.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-admin/internal/auth"
)

// AuthMiddleware resolves the Authorization header through authenticator and
// stores the user on the context.
func AuthMiddleware(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticator.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			customLog.Printf("AuthMiddleware: Authentication failed for %s: %v", c.Request.URL.Path, err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}
