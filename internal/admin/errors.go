package admin

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// Error codes carried in API error bodies.
const (
	CodeValidation         = "validation_error"
	CodeFieldRequired      = "field_required"
	CodeInvalidType        = "invalid_type"
	CodeInvalidChoice      = "invalid_choice"
	CodeInvalidDatetime    = "invalid_datetime"
	CodeMinLength          = "min_length"
	CodeMaxLength          = "max_length"
	CodeMinValue           = "min_value"
	CodeMaxValue           = "max_value"
	CodeRecordNotFound     = "record_not_found"
	CodeRelatedNotFound    = "related_not_found"
	CodePKNotFound         = "pk_not_found"
	CodeFieldNotFound      = "field_not_found_in_schema"
	CodeConnectionRefused  = "connection_refused_error"
	CodeDBIntegrity        = "db_integrity_error"
	CodeDBErrorList        = "db_error_list"
	CodeDBErrorRetrieve    = "db_error_retrieve"
	CodeDBErrorCreate      = "db_error_create"
	CodeDBErrorUpdate      = "db_error_update"
	CodeDBErrorDelete      = "db_error_delete"
	CodeUserActionError    = "user_action_error"
	CodeActionNotFound     = "action_not_found"
	CodeEmptySelection     = "empty_selection"
	CodeFiltersError       = "filters_exception"
	CodeOrderingNotAllowed = "ordering_field_not_allowed"
	CodeSearchNotEnabled   = "search_not_enabled"
	CodeAutocomplete       = "autocomplete_error"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal_error"
)

// FieldError is a validation failure of a single field.
type FieldError struct {
	Code    string
	Message i18n.Text
}

// NewFieldError returns a field error with an explicit message.
func NewFieldError(code string, message i18n.Text) *FieldError {
	return &FieldError{Code: code, Message: message}
}

func fieldError(code string, args map[string]any) *FieldError {
	return NewFieldError(code, i18n.T(code).With(args))
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// APIError is the single error type the engine hands to the HTTP layer.
type APIError struct {
	Status      int
	Code        string
	Message     i18n.Text
	FieldErrors map[string]*FieldError
	Cause       error
}

// NewAPIError builds an APIError.
func NewAPIError(status int, code string, message i18n.Text) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// WithCause attaches the underlying error, kept for logs and errors.Is.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d): %s", e.Code, e.Status, e.Message)
	if len(e.FieldErrors) > 0 {
		slugs := make([]string, 0, len(e.FieldErrors))
		for slug := range e.FieldErrors {
			slugs = append(slugs, slug)
		}
		sort.Strings(slugs)
		fmt.Fprintf(&b, " [fields: %s]", strings.Join(slugs, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// FieldErrorBody is the wire form of a FieldError.
type FieldErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorBody is the wire form of an APIError.
type ErrorBody struct {
	Message     string                    `json:"message"`
	Code        string                    `json:"code"`
	FieldErrors map[string]FieldErrorBody `json:"field_errors"`
}

// Body localizes the error for a response.
func (e *APIError) Body(lang *i18n.Manager) ErrorBody {
	body := ErrorBody{Message: lang.Get(e.Message), Code: e.Code}
	if len(e.FieldErrors) > 0 {
		body.FieldErrors = make(map[string]FieldErrorBody, len(e.FieldErrors))
		for slug, fe := range e.FieldErrors {
			body.FieldErrors[slug] = FieldErrorBody{Message: lang.Get(fe.Message), Code: fe.Code}
		}
	}
	return body
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ValidationError aggregates per-field errors into one 400 response.
func ValidationError(fieldErrors map[string]*FieldError) *APIError {
	err := NewAPIError(http.StatusBadRequest, CodeValidation, i18n.T(CodeValidation))
	err.FieldErrors = fieldErrors
	return err
}

// RecordNotFound reports a missing record by primary key.
func RecordNotFound(pkName string, pk any) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeRecordNotFound,
		i18n.T(CodeRecordNotFound).With(map[string]any{"pk_name": pkName, "pk": pk}))
}

// PKNotFound reports a request without a primary key.
func PKNotFound(pkName string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodePKNotFound,
		i18n.T(CodePKNotFound).With(map[string]any{"pk_name": pkName}))
}

// RelatedNotFound reports a related key that does not resolve.
func RelatedNotFound(field string, key any) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeRelatedNotFound,
		i18n.T(CodeRelatedNotFound).With(map[string]any{"field": field, "key": key}))
}

// FieldNotFoundInSchema reports an input key the schema does not know.
func FieldNotFoundInSchema(field string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeFieldNotFound,
		i18n.T(CodeFieldNotFound).With(map[string]any{"field": field}))
}

// ConnectionRefused reports an unreachable backend.
func ConnectionRefused(err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeConnectionRefused,
		i18n.T(CodeConnectionRefused).With(map[string]any{"error": err})).WithCause(err)
}

// IntegrityError surfaces a constraint violation with the raw backend text.
func IntegrityError(err error) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeDBIntegrity, i18n.Raw(err.Error())).WithCause(err)
}

// DatabaseError is the generic backend failure for code (db_error_*).
func DatabaseError(code string, err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, code, i18n.T(code)).WithCause(err)
}

// UserActionError is what a failing action handler turns into.
func UserActionError(message i18n.Text) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeUserActionError, message)
}

// NotFound is a 404 for unknown groups, categories and disabled operations.
func NotFound(code string, message i18n.Text) *APIError {
	return NewAPIError(http.StatusNotFound, code, message)
}
