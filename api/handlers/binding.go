package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/nebula-admin/api/middleware"
	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// bindJSON decodes and validates the body. An empty body binds the zero
// value and is still validated. Decoding failures become a 400
// validation_error; validator errors pass through for the error handler.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = validate(obj)
	}
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return err
	}
	return admin.NewAPIError(http.StatusBadRequest, admin.CodeValidation, i18n.Raw(err.Error())).WithCause(err)
}

func validate(obj any) error {
	if v, ok := obj.(*map[string]any); ok {
		*v = map[string]any{}
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

func fieldContext(c *gin.Context) admin.FieldContext {
	fc := admin.FieldContext{Language: middleware.LanguageFrom(c)}
	if user := middleware.UserFrom(c); user != nil {
		fc.User = user
	}
	return fc
}
