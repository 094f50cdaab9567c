// api/handlers/table_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-admin/api/models"
	"github.com/Annany2002/nebula-admin/internal/admin"
)

// TableHandler serves the table category endpoints.
type TableHandler struct {
	Schema *admin.Schema
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(schema *admin.Schema) *TableHandler {
	return &TableHandler{Schema: schema}
}

// table resolves the :group/:category path pair, attaching the error when
// it does not name a table.
func (h *TableHandler) table(c *gin.Context) (*admin.CategoryTable, bool) {
	t, err := h.Schema.Table(c.Param("group"), c.Param("category"))
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return t, true
}

// List returns one page of records.
func (h *TableHandler) List(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	var req models.ListRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := t.List(c.Request.Context(), req.Query(), fieldContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Retrieve returns one record.
func (h *TableHandler) Retrieve(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	result, err := t.Retrieve(c.Request.Context(), c.Param("pk"), fieldContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create inserts a record from the raw JSON body.
func (h *TableHandler) Create(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	var input map[string]any
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := t.Create(c.Request.Context(), input, fieldContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Printf("Handler: Created %s/%s record %v", c.Param("group"), c.Param("category"), result.PK)
	c.JSON(http.StatusOK, result)
}

// Update applies a partial update from the raw JSON body.
func (h *TableHandler) Update(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	var input map[string]any
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := t.Update(c.Request.Context(), c.Param("pk"), input, fieldContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Action runs a named bulk action.
func (h *TableHandler) Action(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	var req models.ActionRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	fc := fieldContext(c)
	result, err := t.PerformAction(c.Request.Context(), c.Param("action"), req.Data(), fc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result.Body(fc.Language))
}

// Autocomplete returns choices for a related or choice field.
func (h *TableHandler) Autocomplete(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	var req models.AutocompleteRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := t.Autocomplete(c.Request.Context(), req.Query(), fieldContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
