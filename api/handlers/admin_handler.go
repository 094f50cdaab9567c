// api/handlers/admin_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-admin/api/middleware"
	"github.com/Annany2002/nebula-admin/api/models"
	"github.com/Annany2002/nebula-admin/internal/admin"
)

// AdminHandler serves the panel-wide endpoints.
type AdminHandler struct {
	Schema *admin.Schema
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(schema *admin.Schema) *AdminHandler {
	return &AdminHandler{Schema: schema}
}

// GetSchema returns the UI metadata tree for the current user.
func (h *AdminHandler) GetSchema(c *gin.Context) {
	fc := fieldContext(c)
	c.JSON(http.StatusOK, h.Schema.GenerateSchema(fc.User, fc.Language))
}

// GetSettings returns the public panel settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Schema.Settings(middleware.LanguageFrom(c)))
}

// GetGraph returns chart data for a graphs category.
func (h *AdminHandler) GetGraph(c *gin.Context) {
	graphs, err := h.Schema.Graphs(c.Param("group"), c.Param("category"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.GraphRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := graphs.GetData(c.Request.Context(), req.Data(), fieldContext(c))
	if err != nil {
		customLog.Warnf("Handler: Graph %s/%s failed: %v", c.Param("group"), c.Param("category"), err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
