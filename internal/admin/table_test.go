package admin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

func newTerminalTable(t *testing.T, source admin.DataSource, actions ...admin.Action) *admin.CategoryTable {
	t.Helper()
	table, err := admin.NewCategoryTable(admin.TableConfig{
		Slug:           "terminal",
		Title:          i18n.Raw("Terminals"),
		Icon:           "mdi-terminal",
		Schema:         terminalSchema(),
		Filters:        filterSchema(),
		OrderingFields: []string{"id", "title"},
		SearchFields:   []string{"title"},
		Actions:        actions,
		Source:         source,
	})
	require.NoError(t, err)
	return table
}

func TestNewCategoryTableErrors(t *testing.T) {
	noop := func(context.Context, admin.ActionRequest) (admin.ActionResult, error) { return admin.ActionResult{}, nil }

	testCases := []struct {
		name string
		cfg  admin.TableConfig
	}{
		{"missing slug", admin.TableConfig{Schema: terminalSchema(), Source: &listSource{}}},
		{"missing schema", admin.TableConfig{Slug: "t", Source: &listSource{}}},
		{"missing source", admin.TableConfig{Slug: "t", Schema: terminalSchema()}},
		{"duplicate action", admin.TableConfig{Slug: "t", Schema: terminalSchema(), Source: &listSource{},
			Actions: []admin.Action{{Name: "a", Handler: noop}, {Name: "a", Handler: noop}}}},
		{"action without handler", admin.TableConfig{Slug: "t", Schema: terminalSchema(), Source: &listSource{},
			Actions: []admin.Action{{Name: "a"}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := admin.NewCategoryTable(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestCategoryTablePlan(t *testing.T) {
	table := newTerminalTable(t, &listSource{})

	testCases := []struct {
		name      string
		query     admin.ListQuery
		wantPage  int
		wantLimit int
		wantCode  string
	}{
		{"defaults", admin.ListQuery{}, 1, 25, ""},
		{"negative page", admin.ListQuery{Page: -3, Limit: 10}, 1, 10, ""},
		{"limit above max", admin.ListQuery{Page: 2, Limit: 1000}, 2, 150, ""},
		{"negative limit", admin.ListQuery{Limit: -1}, 1, 1, ""},
		{"ordering not allowed", admin.ListQuery{Ordering: "-merchant_id"}, 0, 0, admin.CodeOrderingNotAllowed},
		{"unknown filter", admin.ListQuery{Filters: map[string]any{"pin": "1"}}, 0, 0, admin.CodeFiltersError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := table.Plan(tc.query)
			if tc.wantCode != "" {
				apiErr, ok := admin.AsAPIError(err)
				require.True(t, ok)
				assert.Equal(t, tc.wantCode, apiErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, plan.Page)
			assert.Equal(t, tc.wantLimit, plan.Limit)
			assert.Equal(t, (plan.Page-1)*plan.Limit, plan.Offset)
		})
	}

	plan, err := table.Plan(admin.ListQuery{Ordering: "-title", Search: "  Test "})
	require.NoError(t, err)
	assert.Equal(t, &admin.Ordering{Field: "title", Desc: true}, plan.Ordering)
	assert.Equal(t, "Test", plan.Search)
}

func TestCategoryTableSearchDisabled(t *testing.T) {
	table, err := admin.NewCategoryTable(admin.TableConfig{Slug: "t", Schema: terminalSchema(), Source: &listSource{}})
	require.NoError(t, err)

	_, err = table.Plan(admin.ListQuery{Search: "x"})
	apiErr, ok := admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, admin.CodeSearchNotEnabled, apiErr.Code)

	_, err = table.Plan(admin.ListQuery{Filters: map[string]any{"id": 1}})
	apiErr, ok = admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, admin.CodeFiltersError, apiErr.Code)
}

func TestCategoryTableOrderingCheckedBeforeBackend(t *testing.T) {
	source := &listSource{}
	table := newTerminalTable(t, source)

	_, err := table.List(context.Background(), admin.ListQuery{Ordering: "pin"}, admin.FieldContext{})
	assert.Error(t, err)
	assert.Equal(t, 0, source.listCalls)

	source.rows = []map[string]any{{"id": int64(1), "title": "Test terminal", "merchant_id": admin.Record{Key: int64(1), Title: "M"}}}
	result, err := table.List(context.Background(), admin.ListQuery{Ordering: "id", Limit: 500}, admin.FieldContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, source.listCalls)
	assert.Equal(t, 150, source.lastPlan.Limit)
	assert.Equal(t, int64(1), result.TotalCount)
	title, _ := result.Data[0].Get("title")
	assert.Equal(t, "Test terminal", title)
}

func TestCategoryTableCapabilities(t *testing.T) {
	ctx := context.Background()

	listOnly := newTerminalTable(t, &listSource{})
	assert.False(t, listOnly.CanRetrieve())
	assert.False(t, listOnly.CanCreate())
	assert.False(t, listOnly.CanUpdate())

	_, err := listOnly.Retrieve(ctx, "1", admin.FieldContext{})
	apiErr, ok := admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, admin.CodeMethodNotAllowed, apiErr.Code)

	_, err = listOnly.Create(ctx, map[string]any{}, admin.FieldContext{})
	apiErr, _ = admin.AsAPIError(err)
	assert.Equal(t, admin.CodeMethodNotAllowed, apiErr.Code)

	source := &crudSource{}
	source.rows = []map[string]any{{"id": int64(5), "title": "five"}}
	full := newTerminalTable(t, source)
	assert.True(t, full.CanRetrieve())
	assert.True(t, full.CanCreate())
	assert.True(t, full.CanUpdate())

	_, err = full.Retrieve(ctx, "", admin.FieldContext{})
	apiErr, _ = admin.AsAPIError(err)
	assert.Equal(t, admin.CodePKNotFound, apiErr.Code)

	got, err := full.Retrieve(ctx, "5", admin.FieldContext{})
	require.NoError(t, err)
	title, _ := got.Data.Get("title")
	assert.Equal(t, "five", title)

	created, err := full.Create(ctx, map[string]any{"title": "test", "merchant_id": float64(1)}, admin.FieldContext{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.PK)

	info := full.GenerateSchema(testUser("admin"), enManager()).TableInfo
	require.NotNil(t, info)
	assert.True(t, info.CanCreate)
	assert.Equal(t, "id", info.PKName)
	assert.True(t, info.SearchEnabled)
	if assert.NotNil(t, info.SearchHelp) {
		assert.Equal(t, "Available search fields: title", *info.SearchHelp)
	}
	assert.NotNil(t, info.TableFilters)
}

func TestCategoryTableAutocomplete(t *testing.T) {
	ctx := context.Background()
	source := &crudSource{related: []admin.Record{
		{Key: int64(1), Title: "Alpha"},
		{Key: int64(2), Title: "Beta"},
		{Key: int64(3), Title: "Gamma"},
	}}
	table := newTerminalTable(t, source)

	t.Run("existing selection is kept", func(t *testing.T) {
		result, err := table.Autocomplete(ctx, admin.AutocompleteQuery{
			FieldSlug:      "merchant_id",
			SearchString:   "al",
			ExistedChoices: []admin.Record{{Key: float64(3)}, {Key: float64(1)}},
			Limit:          10,
		}, admin.FieldContext{})
		require.NoError(t, err)
		assert.Equal(t, []admin.Record{{Key: int64(1), Title: "Alpha"}, {Key: int64(3), Title: "Gamma"}}, result.Results)
		assert.Equal(t, []any{int64(3)}, source.fetched)
	})

	t.Run("filters schema", func(t *testing.T) {
		result, err := table.Autocomplete(ctx, admin.AutocompleteQuery{FieldSlug: "status", IsFilter: true}, admin.FieldContext{})
		require.NoError(t, err)
		assert.Equal(t, []admin.Record{{Key: "new", Title: "new"}}, result.Results)
	})

	t.Run("empty results are not nil", func(t *testing.T) {
		result, err := table.Autocomplete(ctx, admin.AutocompleteQuery{FieldSlug: "merchant_id", SearchString: "zzz"}, admin.FieldContext{})
		require.NoError(t, err)
		assert.NotNil(t, result.Results)
		assert.Empty(t, result.Results)
	})

	errorCases := []struct {
		name  string
		query admin.AutocompleteQuery
	}{
		{"unknown field", admin.AutocompleteQuery{FieldSlug: "pin"}},
		{"field without autocomplete", admin.AutocompleteQuery{FieldSlug: "title"}},
		{"unknown action", admin.AutocompleteQuery{FieldSlug: "merchant_id", ActionName: "nope"}},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := table.Autocomplete(ctx, tc.query, admin.FieldContext{})
			apiErr, ok := admin.AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, admin.CodeAutocomplete, apiErr.Code)
			assert.Equal(t, 400, apiErr.Status)
		})
	}
}
