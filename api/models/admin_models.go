// api/models/admin_models.go
package models

import "github.com/Annany2002/nebula-admin/internal/admin"

// ListRequest is the body of a table list call. Page and limit are clamped
// by the engine, out of range values are never rejected.
type ListRequest struct {
	Page     int            `json:"page"`
	Limit    int            `json:"limit"`
	Search   string         `json:"search" binding:"max=255"`
	Ordering string         `json:"ordering" binding:"max=128"`
	Filters  map[string]any `json:"filters"`
}

// Query converts the request for the engine.
func (r ListRequest) Query() admin.ListQuery {
	return admin.ListQuery{Page: r.Page, Limit: r.Limit, Search: r.Search, Ordering: r.Ordering, Filters: r.Filters}
}

// ActionRequest is the body of a table action call.
type ActionRequest struct {
	PKs       []any             `json:"pks"`
	FormData  map[string]any    `json:"form_data"`
	Filters   admin.ListFilters `json:"filters"`
	SendToAll bool              `json:"send_to_all"`
}

// Data converts the request for the engine.
func (r ActionRequest) Data() admin.ActionData {
	return admin.ActionData{PKs: r.PKs, FormData: r.FormData, Filters: r.Filters, SendToAll: r.SendToAll}
}

// AutocompleteRequest asks for the choices of one field.
type AutocompleteRequest struct {
	SearchString   string         `json:"search_string" binding:"max=255"`
	FieldSlug      string         `json:"field_slug" binding:"required"`
	IsFilter       bool           `json:"is_filter"`
	FormData       map[string]any `json:"form_data"`
	ExistedChoices []admin.Record `json:"existed_choices"`
	ActionName     string         `json:"action_name"`
	Limit          int            `json:"limit"`
}

// Query converts the request for the engine.
func (r AutocompleteRequest) Query() admin.AutocompleteQuery {
	return admin.AutocompleteQuery{
		SearchString:   r.SearchString,
		FieldSlug:      r.FieldSlug,
		IsFilter:       r.IsFilter,
		FormData:       r.FormData,
		ExistedChoices: r.ExistedChoices,
		ActionName:     r.ActionName,
		Limit:          r.Limit,
	}
}

// GraphRequest is the body of a chart data call.
type GraphRequest struct {
	Search  string         `json:"search" binding:"max=255"`
	Filters map[string]any `json:"filters"`
}

// Data converts the request for the engine.
func (r GraphRequest) Data() admin.GraphData {
	return admin.GraphData{Search: r.Search, Filters: r.Filters}
}
