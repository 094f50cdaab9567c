package admin

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Annany2002/nebula-admin/internal/core"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// User is the authenticated identity the engine sees.
type User interface {
	GetUsername() string
}

// UserProfile is the wire form of the current user.
type UserProfile struct {
	Username string `json:"username"`
}

// DeserializeAction tells fields why input is being deserialized.
type DeserializeAction int

const (
	ActionCreate DeserializeAction = iota
	ActionUpdate
	ActionTableAction
)

func (a DeserializeAction) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionTableAction:
		return "table_action"
	default:
		return "unknown"
	}
}

// FieldContext carries request-scoped data into field code. It is passed
// explicitly; nothing in the engine reads ambient state.
type FieldContext struct {
	User     User
	Language *i18n.Manager
	// Record is the raw record being serialized.
	Record map[string]any
	// Model is the backend-native record, when the backend has one.
	Model any
}

// Record is a {key, title} pair identifying a related record.
type Record struct {
	Key   any    `json:"key"`
	Title string `json:"title"`
}

// KeyString normalizes a key for comparison; JSON numbers decode as float64
// while backends return int64.
func KeyString(key any) string {
	switch k := key.(type) {
	case nil:
		return ""
	case float64:
		if k == math.Trunc(k) && math.Abs(k) < 1<<53 {
			return strconv.FormatInt(int64(k), 10)
		}
		return strconv.FormatFloat(k, 'f', -1, 64)
	case float32:
		return KeyString(float64(k))
	case json.Number:
		if n, err := k.Int64(); err == nil {
			return strconv.FormatInt(n, 10)
		}
		return k.String()
	case []byte:
		return string(k)
	case map[string]any:
		return KeyString(k["key"])
	case Record:
		return KeyString(k.Key)
	default:
		return fmt.Sprint(k)
	}
}

// ListQuery is the canonical list request.
type ListQuery struct {
	Page     int            `json:"page"`
	Limit    int            `json:"limit"`
	Search   string         `json:"search"`
	Ordering string         `json:"ordering"`
	Filters  map[string]any `json:"filters"`
}

// Ordering is a validated sort instruction.
type Ordering struct {
	Field string
	Desc  bool
}

// ListPlan is a ListQuery after clamping and allow-list validation. Backends
// receive only plans.
type ListPlan struct {
	core.Pagination
	Search   string
	Ordering *Ordering
	Filters  []Filter
}

// TableListResult is one page of serialized rows.
type TableListResult struct {
	Data       []*OrderedMap[any] `json:"data"`
	TotalCount int64              `json:"total_count"`
}

// RetrieveResult holds one serialized row.
type RetrieveResult struct {
	Data *OrderedMap[any] `json:"data"`
}

// CreateResult holds the primary key of a new record.
type CreateResult struct {
	PK any `json:"pk"`
}

// UpdateResult holds the primary key of an updated record.
type UpdateResult struct {
	PK any `json:"pk"`
}

// AutocompleteQuery asks for choices of one field.
type AutocompleteQuery struct {
	SearchString   string         `json:"search_string"`
	FieldSlug      string         `json:"field_slug"`
	IsFilter       bool           `json:"is_filter"`
	FormData       map[string]any `json:"form_data"`
	ExistedChoices []Record       `json:"existed_choices"`
	ActionName     string         `json:"action_name"`
	Limit          int            `json:"limit"`
}

// AutocompleteResult lists matching choices.
type AutocompleteResult struct {
	Results []Record `json:"results"`
}
