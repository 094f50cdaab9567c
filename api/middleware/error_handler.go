// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// ErrorHandler turns the last error attached to the context into the
// {message, code, field_errors} body, localized for the request.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		apiErr := toAPIError(err)

		entry := customLog.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"status": apiErr.Status,
			"code":   apiErr.Code,
		})
		if apiErr.Status >= http.StatusInternalServerError {
			entry.Errorf("ErrorHandler: %v", err)
		} else {
			entry.Infof("ErrorHandler: %v", err)
		}

		if c.Writer.Written() {
			customLog.Warnln("ErrorHandler: Response already written before handling error.")
			return
		}
		c.AbortWithStatusJSON(apiErr.Status, apiErr.Body(LanguageFrom(c)))
	}
}

func toAPIError(err error) *admin.APIError {
	if apiErr, ok := admin.AsAPIError(err); ok {
		return apiErr
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fieldErrors := make(map[string]*admin.FieldError, len(validationErrs))
		for _, fe := range validationErrs {
			fieldErrors[fe.Field()] = fieldError(fe)
		}
		return admin.ValidationError(fieldErrors).WithCause(err)
	}
	return admin.NewAPIError(http.StatusInternalServerError, admin.CodeInternal, i18n.T(admin.CodeInternal)).WithCause(err)
}

// fieldError maps a validator tag to the admin field error codes.
func fieldError(fe validator.FieldError) *admin.FieldError {
	limit := map[string]any{"limit": fe.Param()}
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return admin.NewFieldError(admin.CodeFieldRequired, i18n.T(admin.CodeFieldRequired))
	case "min", "gte":
		if isString {
			return admin.NewFieldError(admin.CodeMinLength, i18n.T(admin.CodeMinLength).With(limit))
		}
		return admin.NewFieldError(admin.CodeMinValue, i18n.T(admin.CodeMinValue).With(limit))
	case "max", "lte":
		if isString {
			return admin.NewFieldError(admin.CodeMaxLength, i18n.T(admin.CodeMaxLength).With(limit))
		}
		return admin.NewFieldError(admin.CodeMaxValue, i18n.T(admin.CodeMaxValue).With(limit))
	case "oneof":
		return admin.NewFieldError(admin.CodeInvalidChoice, i18n.T(admin.CodeInvalidChoice).With(map[string]any{"value": fe.Value()}))
	default:
		return admin.NewFieldError(admin.CodeValidation, i18n.Raw(fe.Error()))
	}
}
