package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-admin/internal/domain"
	"github.com/Annany2002/nebula-admin/internal/i18n"
	"github.com/Annany2002/nebula-admin/internal/logger"
)

const (
	userKey     = "adminUser"
	languageKey = "language"
)

var (
	customLog       = logger.NewLogger()
	defaultLanguage = i18n.NewResolver(nil, nil)
)

// Language resolves the request's Accept-Language header once and stores
// the manager on the context.
func Language(resolver *i18n.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(languageKey, resolver.Manager(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// LanguageFrom returns the request's language manager.
func LanguageFrom(c *gin.Context) *i18n.Manager {
	if v, ok := c.Get(languageKey); ok {
		if m, ok := v.(*i18n.Manager); ok {
			return m
		}
	}
	return defaultLanguage.Manager(c.GetHeader("Accept-Language"))
}

// UserFrom returns the authenticated user, or nil on public routes.
func UserFrom(c *gin.Context) *domain.AdminUser {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.AdminUser); ok {
			return u
		}
	}
	return nil
}
