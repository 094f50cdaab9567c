// api/router.go
package api

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/nebula-admin/api/handlers"
	"github.com/Annany2002/nebula-admin/api/middleware"
	"github.com/Annany2002/nebula-admin/config"
	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/auth"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

func init() {
	// Report validation failures under the JSON field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// SetupRouter initializes the Gin router and mounts the admin API under
// cfg.AdminPrefix.
func SetupRouter(schema *admin.Schema, authenticator auth.Authenticator, cfg *config.Config) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery

	if cfg.AllowCORS {
		router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}
	router.Use(middleware.Language(schema.Languages()))
	router.Use(middleware.ErrorHandler())
	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(admin.NotFound(admin.CodeNotFound, i18n.T(admin.CodeNotFound)))
	})

	authHandler := handlers.NewAuthHandler(authenticator)
	adminHandler := handlers.NewAdminHandler(schema)
	tableHandler := handlers.NewTableHandler(schema)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)

	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	base := router.Group(prefix(cfg.AdminPrefix))

	// --- Public Routes ---
	base.POST("/get-settings/", adminHandler.GetSettings)
	base.POST("/auth/login/", middleware.RateLimitMiddleware(loginLimiter), authHandler.Login)

	// --- Protected Routes ---
	protected := base.Group("")
	protected.Use(middleware.AuthMiddleware(authenticator))
	{
		protected.GET("/schema/", adminHandler.GetSchema)
		protected.POST("/graph/:group/:category/", adminHandler.GetGraph)

		tables := protected.Group("/table/:group/:category")
		tables.POST("/list/", tableHandler.List)
		tables.POST("/retrieve/:pk/", tableHandler.Retrieve)
		tables.POST("/create/", tableHandler.Create)
		tables.PATCH("/update/:pk/", tableHandler.Update)
		tables.POST("/action/:action/", tableHandler.Action)
		tables.POST("/autocomplete/", tableHandler.Autocomplete)

		protected.POST("/autocomplete/:group/:category/", tableHandler.Autocomplete)
	}

	return router
}

func prefix(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return ""
	}
	return p
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept-Language"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
