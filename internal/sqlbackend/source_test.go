package sqlbackend_test

import (
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
	"github.com/Annany2002/nebula-admin/internal/sqlbackend"
)

const testDDL = `
CREATE TABLE currency (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(255) NOT NULL,
	num_code SMALLINT NOT NULL UNIQUE,
	char_code VARCHAR(10) NOT NULL UNIQUE,
	depth INTEGER NOT NULL DEFAULT 2
);
CREATE TABLE merchant (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(255) NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE terminal (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(255) NOT NULL,
	description TEXT,
	merchant_id INTEGER NOT NULL REFERENCES merchant(id),
	currency_id INTEGER REFERENCES currency(id),
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

type testUser string

func (u testUser) GetUsername() string { return string(u) }

func testFieldContext() admin.FieldContext {
	return admin.FieldContext{User: testUser("admin"), Language: i18n.NewResolver(nil, nil).Manager("en")}
}

// testDBSetup creates the payments tables in a fresh sqlite file and
// reflects them.
func testDBSetup(t *testing.T) (*sql.DB, *sqlbackend.Metadata) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test_admin.db") + "?_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testDDL)
	require.NoError(t, err)

	meta, err := sqlbackend.Reflect(context.Background(), db)
	require.NoError(t, err)
	return db, meta
}

func seed(t *testing.T, db *sql.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func newTerminalTable(t *testing.T, db *sql.DB, meta *sqlbackend.Metadata) (*admin.CategoryTable, *sqlbackend.Source) {
	t.Helper()

	source := sqlbackend.MustNew(db, meta, "terminal")
	table, err := admin.NewCategoryTable(admin.TableConfig{
		Slug:   "terminal",
		Schema: sqlbackend.MustAutoSchema(source.Table(), []string{"id", "title", "description", "merchant_id", "currency_id", "is_active", "created_at"}),
		Filters: admin.MustFieldsSchema([]admin.NamedField{
			admin.F("id", &admin.IntegerField{}),
			admin.F("title", &admin.StringField{}),
			admin.F("merchant_id", &admin.RelatedField{RelName: "merchant"}),
			admin.F("is_active", &admin.BooleanField{}),
			admin.F("created_at", &admin.DateTimeField{Range: true}),
		}),
		OrderingFields: []string{"id", "title"},
		SearchFields:   []string{"title", "description"},
		Actions:        []admin.Action{source.DeleteAction()},
		Source:         source,
	})
	require.NoError(t, err)
	return table, source
}

func newCurrencyTable(t *testing.T, db *sql.DB, meta *sqlbackend.Metadata) *admin.CategoryTable {
	t.Helper()

	source := sqlbackend.MustNew(db, meta, "currency")
	table, err := admin.NewCategoryTable(admin.TableConfig{
		Slug:   "currency",
		Schema: sqlbackend.MustAutoSchema(source.Table(), []string{"id", "title", "num_code", "char_code", "terminals"}),
		Source: source,
	})
	require.NoError(t, err)
	return table
}

func get(t *testing.T, m *admin.OrderedMap[any], key string) any {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestReflect(t *testing.T) {
	_, meta := testDBSetup(t)
	assert := assert.New(t)

	terminal, ok := meta.Table("terminal")
	require.True(t, ok)

	pk, ok := terminal.PK()
	assert.True(ok)
	assert.Equal("id", pk.Name)

	merchant, ok := terminal.Relation("merchant")
	require.True(t, ok)
	assert.Equal(sqlbackend.Relation{Name: "merchant", Kind: sqlbackend.ManyToOne, Target: "merchant", LocalColumn: "merchant_id", RemoteColumn: "id"}, merchant)

	currency, _ := meta.Table("currency")
	backref, ok := currency.Relation("terminals")
	require.True(t, ok)
	assert.Equal(sqlbackend.OneToMany, backref.Kind)
	assert.Equal("currency_id", backref.RemoteColumn)

	var names []string
	for _, table := range meta.Tables() {
		names = append(names, table.Name)
	}
	assert.Equal([]string{"currency", "merchant", "terminal"}, names)
}

func TestAutoSchema(t *testing.T) {
	_, meta := testDBSetup(t)
	assert := assert.New(t)

	terminal, _ := meta.Table("terminal")
	schema, err := sqlbackend.AutoSchema(terminal, nil)
	require.NoError(t, err)
	assert.Equal([]string{"id", "title", "description", "merchant_id", "currency_id", "is_active", "created_at"}, schema.Slugs())

	id, _ := schema.Field("id")
	assert.True(id.Base().ReadOnly)

	title, _ := schema.Field("title")
	require.IsType(t, &admin.StringField{}, title)
	assert.Equal(255, title.(*admin.StringField).MaxLength)
	assert.True(title.Base().Required)

	merchant, _ := schema.Field("merchant_id")
	require.IsType(t, &admin.RelatedField{}, merchant)
	assert.Equal("merchant", merchant.(*admin.RelatedField).RelName)
	assert.True(merchant.Base().Required)

	active, _ := schema.Field("is_active")
	assert.IsType(&admin.BooleanField{}, active)
	assert.False(active.Base().Required, "column with a default is optional")

	created, _ := schema.Field("created_at")
	assert.IsType(&admin.DateTimeField{}, created)

	currency, _ := meta.Table("currency")
	currencySchema, err := sqlbackend.AutoSchema(currency, nil)
	require.NoError(t, err)
	terminals, ok := currencySchema.Field("terminals")
	require.True(t, ok)
	assert.True(terminals.(*admin.RelatedField).Many)

	_, err = sqlbackend.AutoSchema(terminal, []string{"missing"})
	assert.Error(err)
}

func TestBindErrors(t *testing.T) {
	db, meta := testDBSetup(t)

	_, err := sqlbackend.New(db, meta, "missing")
	assert.ErrorIs(t, err, sqlbackend.ErrTableNotFound)

	cases := []struct {
		name string
		cfg  func(source *sqlbackend.Source) admin.TableConfig
	}{
		{"unknown column", func(source *sqlbackend.Source) admin.TableConfig {
			return admin.TableConfig{Slug: "t", Source: source, Schema: admin.MustFieldsSchema([]admin.NamedField{
				admin.F("nope", &admin.StringField{}),
			})}
		}},
		{"unknown search field", func(source *sqlbackend.Source) admin.TableConfig {
			return admin.TableConfig{Slug: "t", Source: source, SearchFields: []string{"nope"},
				Schema: admin.MustFieldsSchema([]admin.NamedField{admin.F("title", &admin.StringField{})})}
		}},
		{"unknown ordering field", func(source *sqlbackend.Source) admin.TableConfig {
			return admin.TableConfig{Slug: "t", Source: source, OrderingFields: []string{"nope"},
				Schema: admin.MustFieldsSchema([]admin.NamedField{admin.F("title", &admin.StringField{})})}
		}},
		{"many flag mismatch", func(source *sqlbackend.Source) admin.TableConfig {
			return admin.TableConfig{Slug: "t", Source: source, Schema: admin.MustFieldsSchema([]admin.NamedField{
				admin.F("merchant_id", &admin.RelatedField{Many: true, RelName: "merchant"}),
			})}
		}},
		{"wrong pk name", func(source *sqlbackend.Source) admin.TableConfig {
			return admin.TableConfig{Slug: "t", Source: source, PKName: "title",
				Schema: admin.MustFieldsSchema([]admin.NamedField{admin.F("title", &admin.StringField{})})}
		}},
		{"column written twice", func(source *sqlbackend.Source) admin.TableConfig {
			return admin.TableConfig{Slug: "t", Source: source, Schema: admin.MustFieldsSchema([]admin.NamedField{
				admin.F("merchant_id", &admin.IntegerField{}),
				admin.F("merchant", &admin.RelatedField{}),
			})}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := admin.NewCategoryTable(tc.cfg(sqlbackend.MustNew(db, meta, "terminal")))
			assert.Error(t, err)
		})
	}
}

func TestSourceCreateAndRetrieve(t *testing.T) {
	db, meta := testDBSetup(t)
	seed(t, db,
		`INSERT INTO merchant (title) VALUES ('Shop')`,
		`INSERT INTO currency (title, num_code, char_code) VALUES ('Ruble', 643, 'RUB')`,
	)
	table, _ := newTerminalTable(t, db, meta)
	ctx := context.Background()
	fc := testFieldContext()
	assert := assert.New(t)

	created, err := table.Create(ctx, map[string]any{
		"title":       "test",
		"merchant_id": float64(1),
		"currency_id": float64(1),
	}, fc)
	require.NoError(t, err)
	assert.Equal(int64(1), created.PK)

	got, err := table.Retrieve(ctx, "1", fc)
	require.NoError(t, err)
	assert.Equal("test", get(t, got.Data, "title"))
	assert.Equal(map[string]any{"key": int64(1), "title": "Shop"}, get(t, got.Data, "merchant_id"))
	assert.Equal(map[string]any{"key": int64(1), "title": "Ruble"}, get(t, got.Data, "currency_id"))
	assert.Equal(true, get(t, got.Data, "is_active"))
	assert.Nil(get(t, got.Data, "description"))
	assert.NotNil(get(t, got.Data, "created_at"))

	t.Run("missing record", func(t *testing.T) {
		_, err := table.Retrieve(ctx, "42", fc)
		apiErr, ok := admin.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(admin.CodeRecordNotFound, apiErr.Code)
	})

	t.Run("non numeric pk", func(t *testing.T) {
		_, err := table.Retrieve(ctx, "abc", fc)
		apiErr, ok := admin.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(admin.CodeRecordNotFound, apiErr.Code)
	})

	t.Run("related key does not exist", func(t *testing.T) {
		_, err := table.Create(ctx, map[string]any{"title": "bad", "merchant_id": float64(99)}, fc)
		apiErr, ok := admin.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(admin.CodeRelatedNotFound, apiErr.Code)
		assert.Equal(http.StatusBadRequest, apiErr.Status)
	})

	t.Run("validation errors are aggregated", func(t *testing.T) {
		_, err := table.Create(ctx, map[string]any{"description": "only"}, fc)
		apiErr, ok := admin.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(admin.CodeValidation, apiErr.Code)
		assert.Contains(apiErr.FieldErrors, "title")
		assert.Contains(apiErr.FieldErrors, "merchant_id")
	})
}

func TestSourceIntegrityError(t *testing.T) {
	db, meta := testDBSetup(t)
	seed(t, db, `INSERT INTO currency (title, num_code, char_code) VALUES ('Ruble', 643, 'RUB')`)
	table := newCurrencyTable(t, db, meta)

	_, err := table.Create(context.Background(), map[string]any{
		"title": "Duplicate", "num_code": float64(643), "char_code": "RUB",
	}, testFieldContext())
	apiErr, ok := admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, admin.CodeDBIntegrity, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSourceList(t *testing.T) {
	db, meta := testDBSetup(t)
	seed(t, db,
		`INSERT INTO merchant (title) VALUES ('Shop'), ('Cafe')`,
		`INSERT INTO terminal (id, title, merchant_id, is_active, created_at) VALUES
			(1, 'Test terminal', 1, 1, '2024-01-10 10:00:00'),
			(2, 'Another test', 2, 0, '2024-02-10 10:00:00'),
			(5, 'Production', 1, 1, '2024-03-10 10:00:00')`,
	)
	table, source := newTerminalTable(t, db, meta)
	ctx := context.Background()
	fc := testFieldContext()
	assert := assert.New(t)

	ids := func(res admin.TableListResult) []any {
		out := make([]any, 0, len(res.Data))
		for _, row := range res.Data {
			out = append(out, get(t, row, "id"))
		}
		return out
	}

	t.Run("default order is by pk", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{}, fc)
		require.NoError(t, err)
		assert.Equal(int64(3), res.TotalCount)
		assert.Equal([]any{int64(1), int64(2), int64(5)}, ids(res))
		assert.Equal(map[string]any{"key": int64(2), "title": "Cafe"}, get(t, res.Data[1], "merchant_id"))
	})

	t.Run("exact filter", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{Filters: map[string]any{"id": float64(5)}}, fc)
		require.NoError(t, err)
		assert.Equal(int64(1), res.TotalCount)
		assert.Equal([]any{int64(5)}, ids(res))
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{Search: "Test"}, fc)
		require.NoError(t, err)
		assert.Equal(int64(2), res.TotalCount)
		assert.Equal([]any{int64(1), int64(2)}, ids(res))
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{Search: "%"}, fc)
		require.NoError(t, err)
		assert.Equal(int64(0), res.TotalCount)
		assert.NotNil(res.Data)
	})

	t.Run("related and boolean filters", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{Filters: map[string]any{
			"merchant_id": []any{map[string]any{"key": float64(1)}},
			"is_active":   true,
		}}, fc)
		require.NoError(t, err)
		assert.Equal([]any{int64(1), int64(5)}, ids(res))
	})

	t.Run("date range filter", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{Filters: map[string]any{
			"created_at": map[string]any{"from": "2024-02-01T00:00:00Z", "to": "2024-03-01T00:00:00Z"},
		}}, fc)
		require.NoError(t, err)
		assert.Equal([]any{int64(2)}, ids(res))
	})

	t.Run("ordering and pagination", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{Ordering: "-title", Limit: 2, Page: 1}, fc)
		require.NoError(t, err)
		assert.Equal(int64(3), res.TotalCount)
		assert.Equal([]any{int64(1), int64(5)}, ids(res))

		res, err = table.List(ctx, admin.ListQuery{Ordering: "-title", Limit: 2, Page: 2}, fc)
		require.NoError(t, err)
		assert.Equal([]any{int64(2)}, ids(res))
	})

	t.Run("page past the end", func(t *testing.T) {
		res, err := table.List(ctx, admin.ListQuery{Page: 10}, fc)
		require.NoError(t, err)
		assert.Equal(int64(3), res.TotalCount)
		assert.Empty(res.Data)
	})

	assert.Equal("id", source.PKName())
}

func TestSourceUpdate(t *testing.T) {
	db, meta := testDBSetup(t)
	seed(t, db,
		`INSERT INTO merchant (title) VALUES ('Shop'), ('Cafe')`,
		`INSERT INTO terminal (title, description, merchant_id) VALUES ('Old', 'keep me', 1)`,
	)
	table, _ := newTerminalTable(t, db, meta)
	ctx := context.Background()
	fc := testFieldContext()
	assert := assert.New(t)

	res, err := table.Update(ctx, "1", map[string]any{
		"title":       "New",
		"merchant_id": map[string]any{"key": float64(2), "title": "Cafe"},
	}, fc)
	require.NoError(t, err)
	assert.Equal(int64(1), res.PK)

	got, err := table.Retrieve(ctx, "1", fc)
	require.NoError(t, err)
	assert.Equal("New", get(t, got.Data, "title"))
	assert.Equal("keep me", get(t, got.Data, "description"))
	assert.Equal(map[string]any{"key": int64(2), "title": "Cafe"}, get(t, got.Data, "merchant_id"))

	t.Run("unknown key", func(t *testing.T) {
		_, err := table.Update(ctx, "1", map[string]any{"secret": "x"}, fc)
		apiErr, ok := admin.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(admin.CodeFieldNotFound, apiErr.Code)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := table.Update(ctx, "7", map[string]any{"title": "x"}, fc)
		apiErr, ok := admin.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(admin.CodeRecordNotFound, apiErr.Code)
	})

	t.Run("read-only pk is ignored", func(t *testing.T) {
		_, err := table.Update(ctx, "1", map[string]any{"id": float64(9)}, fc)
		require.NoError(t, err)
		_, err = table.Retrieve(ctx, "1", fc)
		assert.NoError(err)
	})
}

func TestSourceOneToMany(t *testing.T) {
	db, meta := testDBSetup(t)
	seed(t, db,
		`INSERT INTO merchant (title) VALUES ('Shop')`,
		`INSERT INTO currency (title, num_code, char_code) VALUES ('Ruble', 643, 'RUB')`,
		`INSERT INTO terminal (title, merchant_id, currency_id) VALUES ('A', 1, 1), ('B', 1, NULL), ('C', 1, NULL)`,
	)
	table := newCurrencyTable(t, db, meta)
	ctx := context.Background()
	fc := testFieldContext()
	assert := assert.New(t)

	got, err := table.Retrieve(ctx, "1", fc)
	require.NoError(t, err)
	assert.Equal([]any{map[string]any{"key": int64(1), "title": "A"}}, get(t, got.Data, "terminals"))

	_, err = table.Update(ctx, "1", map[string]any{"terminals": []any{float64(2), map[string]any{"key": float64(3)}}}, fc)
	require.NoError(t, err)

	got, err = table.Retrieve(ctx, "1", fc)
	require.NoError(t, err)
	assert.Equal([]any{
		map[string]any{"key": int64(2), "title": "B"},
		map[string]any{"key": int64(3), "title": "C"},
	}, get(t, got.Data, "terminals"))

	_, err = table.Update(ctx, "1", map[string]any{"terminals": []any{float64(99)}}, fc)
	apiErr, ok := admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(admin.CodeRelatedNotFound, apiErr.Code)

	created, err := table.Create(ctx, map[string]any{
		"title": "Dollar", "num_code": float64(840), "char_code": "USD", "terminals": []any{float64(1)},
	}, fc)
	require.NoError(t, err)
	got, err = table.Retrieve(ctx, admin.KeyString(created.PK), fc)
	require.NoError(t, err)
	assert.Equal([]any{map[string]any{"key": int64(1), "title": "A"}}, get(t, got.Data, "terminals"))

	list, err := table.List(ctx, admin.ListQuery{}, fc)
	require.NoError(t, err)
	require.Len(t, list.Data, 2)
	assert.Equal([]any{
		map[string]any{"key": int64(2), "title": "B"},
		map[string]any{"key": int64(3), "title": "C"},
	}, get(t, list.Data[0], "terminals"))
}

func TestSourceAutocomplete(t *testing.T) {
	db, meta := testDBSetup(t)
	seed(t, db, `INSERT INTO merchant (title) VALUES ('Shop'), ('Cafe'), ('Shoe store')`)
	table, _ := newTerminalTable(t, db, meta)
	ctx := context.Background()
	fc := testFieldContext()
	assert := assert.New(t)

	res, err := table.Autocomplete(ctx, admin.AutocompleteQuery{FieldSlug: "merchant_id", SearchString: "sho"}, fc)
	require.NoError(t, err)
	assert.Equal([]admin.Record{{Key: int64(1), Title: "Shop"}, {Key: int64(3), Title: "Shoe store"}}, res.Results)

	res, err = table.Autocomplete(ctx, admin.AutocompleteQuery{
		FieldSlug:      "merchant_id",
		SearchString:   "sho",
		ExistedChoices: []admin.Record{{Key: float64(2), Title: "Cafe"}},
	}, fc)
	require.NoError(t, err)
	assert.Equal([]admin.Record{
		{Key: int64(1), Title: "Shop"},
		{Key: int64(3), Title: "Shoe store"},
		{Key: int64(2), Title: "Cafe"},
	}, res.Results)

	res, err = table.Autocomplete(ctx, admin.AutocompleteQuery{FieldSlug: "merchant_id", IsFilter: true, Limit: 1}, fc)
	require.NoError(t, err)
	assert.Equal([]admin.Record{{Key: int64(1), Title: "Shop"}}, res.Results)
}

func TestSourceDeleteAction(t *testing.T) {
	db, meta := testDBSetup(t)
	seed(t, db,
		`INSERT INTO merchant (title) VALUES ('Shop')`,
		`INSERT INTO terminal (title, merchant_id) VALUES ('Test one', 1), ('Test two', 1), ('Live', 1), ('Live two', 1)`,
	)
	table, _ := newTerminalTable(t, db, meta)
	ctx := context.Background()
	fc := testFieldContext()
	assert := assert.New(t)

	count := func() int64 {
		res, err := table.List(ctx, admin.ListQuery{}, fc)
		require.NoError(t, err)
		return res.TotalCount
	}

	result, err := table.PerformAction(ctx, "delete", admin.ActionData{PKs: []any{float64(1), "abc"}}, fc)
	require.NoError(t, err)
	require.NotNil(t, result.Message)
	assert.Equal("The entries were successfully deleted.", result.Body(fc.Language).Message.Text)
	assert.Equal(int64(3), count())

	_, err = table.PerformAction(ctx, "delete", admin.ActionData{
		SendToAll: true,
		Filters:   admin.ListFilters{Search: "live"},
	}, fc)
	require.NoError(t, err)
	assert.Equal(int64(1), count())

	_, err = table.PerformAction(ctx, "delete", admin.ActionData{
		SendToAll: true,
		Filters:   admin.ListFilters{Filters: map[string]any{"nope": float64(1)}},
	}, fc)
	apiErr, ok := admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(admin.CodeFiltersError, apiErr.Code)
	assert.Equal(int64(1), count())
}

func TestSourceJSONRoundTrip(t *testing.T) {
	db, _ := testDBSetup(t)
	seed(t, db, `CREATE TABLE doc (id INTEGER PRIMARY KEY AUTOINCREMENT, meta JSON)`)
	meta, err := sqlbackend.Reflect(context.Background(), db)
	require.NoError(t, err)

	source := sqlbackend.MustNew(db, meta, "doc")
	table, err := admin.NewCategoryTable(admin.TableConfig{
		Slug:   "doc",
		Schema: sqlbackend.MustAutoSchema(source.Table(), nil),
		Source: source,
	})
	require.NoError(t, err)
	ctx := context.Background()
	fc := testFieldContext()

	tests := []struct {
		name  string
		value any
	}{
		{"bool", true},
		{"numeric string", "42"},
		{"plain string", "hello"},
		{"object", map[string]any{"theme": "dark", "tags": []any{"a", "b"}}},
		{"null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := table.Create(ctx, map[string]any{"meta": tt.value}, fc)
			require.NoError(t, err)

			got, err := table.Retrieve(ctx, admin.KeyString(created.PK), fc)
			require.NoError(t, err)
			assert.Equal(t, tt.value, get(t, got.Data, "meta"))

			_, err = table.Update(ctx, admin.KeyString(created.PK), map[string]any{"meta": tt.value}, fc)
			require.NoError(t, err)
			got, err = table.Retrieve(ctx, admin.KeyString(created.PK), fc)
			require.NoError(t, err)
			assert.Equal(t, tt.value, get(t, got.Data, "meta"))
		})
	}
}
