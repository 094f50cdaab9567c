package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/Annany2002/nebula-admin/internal/core"
	"github.com/Annany2002/nebula-admin/internal/i18n"
	"github.com/Annany2002/nebula-admin/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// TableSpec is the read-only view of a table category handed to its backend.
type TableSpec struct {
	Schema         *FieldsSchema
	Filters        *FieldsSchema
	SearchFields   []string
	OrderingFields []string
	PKName         string
}

// DataSource is the data-access port of a table category. List is mandatory;
// Retriever, Creator, Updater and RelationLookup are optional and their
// presence is what the category advertises.
type DataSource interface {
	// Bind validates the TableSpec against the backend model. It is called once
	// when the category is constructed.
	Bind(spec TableSpec) error
	List(ctx context.Context, plan ListPlan, fc FieldContext) (TableListResult, error)
}

// Retriever loads one record.
type Retriever interface {
	Retrieve(ctx context.Context, pk string, fc FieldContext) (RetrieveResult, error)
}

// Creator inserts a record from raw input.
type Creator interface {
	Create(ctx context.Context, input map[string]any, fc FieldContext) (CreateResult, error)
}

// Updater applies a partial update from raw input.
type Updater interface {
	Update(ctx context.Context, pk string, input map[string]any, fc FieldContext) (UpdateResult, error)
}

// PKNamer is implemented by sources that know their primary key name.
type PKNamer interface {
	PKName() string
}

// TableConfig declares a table category.
type TableConfig struct {
	Slug           string
	Title          i18n.Text
	Icon           string
	Schema         *FieldsSchema
	Filters        *FieldsSchema
	OrderingFields []string
	SearchFields   []string
	SearchHelp     i18n.Text
	PKName         string
	Actions        []Action
	Source         DataSource
}

// CategoryTable is the table engine: it validates requests, dispatches them to
// its DataSource and runs actions and autocomplete. It holds no per-request state.
type CategoryTable struct {
	categoryBase
	spec       TableSpec
	searchHelp i18n.Text
	actions    []Action
	source     DataSource
}

// NewCategoryTable validates cfg and binds the data source.
func NewCategoryTable(cfg TableConfig) (*CategoryTable, error) {
	if cfg.Slug == "" {
		return nil, errors.New("table category: slug must not be empty")
	}
	if cfg.Schema == nil {
		return nil, fmt.Errorf("table category %q: table schema is required", cfg.Slug)
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("table category %q: data source is required", cfg.Slug)
	}

	seen := make(map[string]bool, len(cfg.Actions))
	for _, a := range cfg.Actions {
		if a.Name == "" {
			return nil, fmt.Errorf("table category %q: action name must not be empty", cfg.Slug)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("table category %q: duplicate action %q", cfg.Slug, a.Name)
		}
		if a.Handler == nil {
			return nil, fmt.Errorf("table category %q: action %q has no handler", cfg.Slug, a.Name)
		}
		seen[a.Name] = true
	}

	pkName := cfg.PKName
	if pkName == "" {
		if namer, ok := cfg.Source.(PKNamer); ok {
			pkName = namer.PKName()
		}
	}
	if pkName == "" {
		pkName = "id"
	}

	t := &CategoryTable{
		categoryBase: categoryBase{slug: cfg.Slug, title: cfg.Title, icon: cfg.Icon},
		spec: TableSpec{
			Schema:         cfg.Schema,
			Filters:        cfg.Filters,
			SearchFields:   append([]string(nil), cfg.SearchFields...),
			OrderingFields: append([]string(nil), cfg.OrderingFields...),
			PKName:         pkName,
		},
		searchHelp: cfg.SearchHelp,
		actions:    append([]Action(nil), cfg.Actions...),
		source:     cfg.Source,
	}
	if t.searchHelp.IsZero() && len(cfg.SearchFields) > 0 {
		t.searchHelp = i18n.T("search_help").With(map[string]any{"fields": strings.Join(cfg.SearchFields, ", ")})
	}

	if err := cfg.Source.Bind(t.spec); err != nil {
		return nil, fmt.Errorf("table category %q: %w", cfg.Slug, err)
	}
	return t, nil
}

// MustCategoryTable is NewCategoryTable for static wiring; it panics on error.
func MustCategoryTable(cfg TableConfig) *CategoryTable {
	t, err := NewCategoryTable(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *CategoryTable) Type() string { return CategoryTypeTable }

// Spec returns the validated table spec.
func (t *CategoryTable) Spec() TableSpec { return t.spec }

// Source returns the bound data source.
func (t *CategoryTable) Source() DataSource { return t.source }

func (t *CategoryTable) CanRetrieve() bool {
	_, ok := t.source.(Retriever)
	return ok
}

func (t *CategoryTable) CanCreate() bool {
	_, ok := t.source.(Creator)
	return ok
}

func (t *CategoryTable) CanUpdate() bool {
	_, ok := t.source.(Updater)
	return ok
}

// TableInfoSchemaData is the table part of a category description.
type TableInfoSchemaData struct {
	TableSchema    FieldsSchemaData              `json:"table_schema"`
	TableFilters   *FieldsSchemaData             `json:"table_filters"`
	OrderingFields []string                      `json:"ordering_fields"`
	SearchEnabled  bool                          `json:"search_enabled"`
	SearchHelp     *string                       `json:"search_help"`
	PKName         string                        `json:"pk_name"`
	CanRetrieve    bool                          `json:"can_retrieve"`
	CanCreate      bool                          `json:"can_create"`
	CanUpdate      bool                          `json:"can_update"`
	Actions        *OrderedMap[ActionSchemaData] `json:"actions"`
}

func (t *CategoryTable) GenerateSchema(user User, lang *i18n.Manager) CategorySchemaData {
	data := t.baseSchema(t.Type(), lang)

	info := &TableInfoSchemaData{
		TableSchema:    t.spec.Schema.GenerateSchema(user, lang),
		OrderingFields: append([]string{}, t.spec.OrderingFields...),
		SearchEnabled:  len(t.spec.SearchFields) > 0,
		SearchHelp:     optText(lang, t.searchHelp),
		PKName:         t.spec.PKName,
		CanRetrieve:    t.CanRetrieve(),
		CanCreate:      t.CanCreate(),
		CanUpdate:      t.CanUpdate(),
		Actions:        NewOrderedMap[ActionSchemaData](len(t.actions)),
	}
	if t.spec.Filters != nil {
		filters := t.spec.Filters.GenerateSchema(user, lang)
		info.TableFilters = &filters
	}
	for _, a := range t.actions {
		info.Actions.Set(a.Name, a.generateSchema(user, lang))
	}

	data.TableInfo = info
	return data
}

// Plan validates a list query: pagination is clamped, ordering is checked
// against the allow-list and filters against the filters schema. Nothing
// reaches the backend unless this succeeds.
func (t *CategoryTable) Plan(q ListQuery) (ListPlan, error) {
	plan := ListPlan{
		Pagination: core.NormalizePagination(q.Page, q.Limit),
		Search:     strings.TrimSpace(q.Search),
	}

	if q.Ordering != "" {
		field, desc := core.ParseOrdering(q.Ordering)
		if !slices.Contains(t.spec.OrderingFields, field) {
			return ListPlan{}, NewAPIError(http.StatusBadRequest, CodeOrderingNotAllowed,
				i18n.T(CodeOrderingNotAllowed).With(map[string]any{"field": field}))
		}
		plan.Ordering = &Ordering{Field: field, Desc: desc}
	}

	if plan.Search != "" && len(t.spec.SearchFields) == 0 {
		return ListPlan{}, NewAPIError(http.StatusBadRequest, CodeSearchNotEnabled, i18n.T(CodeSearchNotEnabled))
	}

	if len(q.Filters) > 0 {
		if t.spec.Filters == nil {
			return ListPlan{}, filterError(firstKey(q.Filters))
		}
		filters, err := t.spec.Filters.ParseFilters(q.Filters)
		if err != nil {
			return ListPlan{}, err
		}
		plan.Filters = filters
	}
	return plan, nil
}

// List returns one page of serialized rows.
func (t *CategoryTable) List(ctx context.Context, q ListQuery, fc FieldContext) (TableListResult, error) {
	plan, err := t.Plan(q)
	if err != nil {
		return TableListResult{}, err
	}
	return t.source.List(ctx, plan, fc)
}

func methodNotAllowed() *APIError {
	return NotFound(CodeMethodNotAllowed, i18n.T(CodeMethodNotAllowed))
}

// Retrieve loads one record by primary key.
func (t *CategoryTable) Retrieve(ctx context.Context, pk string, fc FieldContext) (RetrieveResult, error) {
	r, ok := t.source.(Retriever)
	if !ok {
		return RetrieveResult{}, methodNotAllowed()
	}
	if pk == "" {
		return RetrieveResult{}, PKNotFound(t.spec.PKName)
	}
	return r.Retrieve(ctx, pk, fc)
}

// Create inserts a record.
func (t *CategoryTable) Create(ctx context.Context, input map[string]any, fc FieldContext) (CreateResult, error) {
	c, ok := t.source.(Creator)
	if !ok {
		return CreateResult{}, methodNotAllowed()
	}
	return c.Create(ctx, input, fc)
}

// Update applies a partial update.
func (t *CategoryTable) Update(ctx context.Context, pk string, input map[string]any, fc FieldContext) (UpdateResult, error) {
	u, ok := t.source.(Updater)
	if !ok {
		return UpdateResult{}, methodNotAllowed()
	}
	if pk == "" {
		return UpdateResult{}, PKNotFound(t.spec.PKName)
	}
	return u.Update(ctx, pk, input, fc)
}

// Autocomplete picks the schema the query refers to (action form, filters or
// table), resolves the field and delegates to it.
func (t *CategoryTable) Autocomplete(ctx context.Context, q AutocompleteQuery, fc FieldContext) (AutocompleteResult, error) {
	var schema *FieldsSchema
	switch {
	case q.ActionName != "":
		action, ok := t.action(q.ActionName)
		if !ok {
			return AutocompleteResult{}, autocompleteError(fmt.Sprintf("action %q not found", q.ActionName))
		}
		if action.FormSchema == nil {
			return AutocompleteResult{}, autocompleteError(fmt.Sprintf("action %q has no form schema", q.ActionName))
		}
		schema = action.FormSchema
	case q.IsFilter:
		if t.spec.Filters == nil {
			return AutocompleteResult{}, autocompleteError("table has no filters")
		}
		schema = t.spec.Filters
	default:
		schema = t.spec.Schema
	}

	field, ok := schema.Field(q.FieldSlug)
	if !ok {
		return AutocompleteResult{}, autocompleteError(
			fmt.Sprintf("field %q not found; available fields: %s", q.FieldSlug, schema.describe()))
	}
	ac, ok := field.(Autocompleter)
	if !ok {
		return AutocompleteResult{}, autocompleteError(fmt.Sprintf("field %q does not support autocomplete", q.FieldSlug))
	}

	lookup, _ := t.source.(RelationLookup)
	results, err := ac.Autocomplete(ctx, AutocompleteRequest{
		Slug:    q.FieldSlug,
		Query:   q,
		Limit:   core.ClampLimit(q.Limit),
		Lookup:  lookup,
		Context: fc,
	})
	if err != nil {
		return AutocompleteResult{}, err
	}
	if results == nil {
		results = []Record{}
	}
	return AutocompleteResult{Results: results}, nil
}

func autocompleteError(reason string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeAutocomplete,
		i18n.T(CodeAutocomplete).With(map[string]any{"reason": reason}))
}
