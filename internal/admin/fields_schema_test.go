package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

func TestNewFieldsSchemaErrors(t *testing.T) {
	title := admin.F("title", &admin.StringField{})

	testCases := []struct {
		name    string
		fields  []admin.NamedField
		opts    []admin.SchemaOption
		wantErr string
	}{
		{"no fields", nil, nil, "at least one field"},
		{"empty slug", []admin.NamedField{admin.F("", &admin.StringField{})}, nil, "slug must not be empty"},
		{"nil field", []admin.NamedField{admin.F("title", nil)}, nil, "is nil"},
		{"duplicate", []admin.NamedField{title, admin.F("title", &admin.StringField{})}, nil, "duplicate field"},
		{"unknown list_display", []admin.NamedField{title}, []admin.SchemaOption{admin.WithListDisplay("id")}, "list_display"},
		{"unknown readonly", []admin.NamedField{title}, []admin.SchemaOption{admin.WithReadOnly("id")}, "read-only"},
		{"unknown validator", []admin.NamedField{title}, []admin.SchemaOption{admin.WithValidator("id", nil)}, "validator"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := admin.NewFieldsSchema(tc.fields, tc.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	assert.Panics(t, func() { admin.MustFieldsSchema(nil) })
}

func TestFieldsSchemaGenerateSchema(t *testing.T) {
	assert := assert.New(t)
	schema := terminalSchema()
	lang := enManager()

	first, err := json.Marshal(schema.GenerateSchema(testUser("admin"), lang))
	assert.NoError(err)
	second, err := json.Marshal(schema.GenerateSchema(testUser("admin"), lang))
	assert.NoError(err)
	assert.JSONEq(string(first), string(second))

	data := schema.GenerateSchema(nil, lang)
	assert.Equal([]string{"id", "title", "merchant_id", "is_active"}, data.Fields.Keys())
	assert.Equal([]string{"id", "title", "merchant_id", "is_active"}, data.ListDisplay)
	assert.True(strings.Index(string(first), `"id"`) < strings.Index(string(first), `"is_active"`))

	withDisplay := admin.MustFieldsSchema(schema.Fields(), admin.WithListDisplay("title"))
	assert.Equal([]string{"title"}, withDisplay.ListDisplay())
}

func TestFieldsSchemaSerializeOrder(t *testing.T) {
	assert := assert.New(t)
	schema := terminalSchema()

	out, err := schema.Serialize(context.Background(), map[string]any{
		"is_active":   int64(0),
		"merchant_id": admin.Record{Key: int64(7), Title: "Shop"},
		"title":       "Test terminal",
		"id":          int64(1),
	}, admin.FieldContext{})
	require.NoError(t, err)

	assert.Equal(schema.Slugs(), out.Keys())
	raw, err := json.Marshal(out)
	assert.NoError(err)
	assert.Equal(`{"id":1,"title":"Test terminal","merchant_id":{"key":7,"title":"Shop"},"is_active":false}`, string(raw))
}

func TestFieldsSchemaDeserialize(t *testing.T) {
	ctx := context.Background()
	schema := terminalSchema()

	t.Run("create applies defaults and skips read-only", func(t *testing.T) {
		out, err := schema.Deserialize(ctx, map[string]any{
			"id":          float64(99),
			"title":       "Test terminal",
			"merchant_id": map[string]any{"key": float64(1)},
		}, admin.ActionCreate, admin.FieldContext{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"title": "Test terminal", "merchant_id": int64(1), "is_active": true}, out.ToMap())
	})

	t.Run("update is partial", func(t *testing.T) {
		out, err := schema.Deserialize(ctx, map[string]any{"title": "Renamed"}, admin.ActionUpdate, admin.FieldContext{})
		require.NoError(t, err)
		assert.Equal(t, []string{"title"}, out.Keys())
		assert.False(t, out.Has("is_active"))
		assert.False(t, out.Has("merchant_id"))
	})

	t.Run("errors are aggregated", func(t *testing.T) {
		_, err := schema.Deserialize(ctx, map[string]any{
			"title":     strings.Repeat("x", 40),
			"is_active": "yes",
		}, admin.ActionCreate, admin.FieldContext{})

		apiErr, ok := admin.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, 400, apiErr.Status)
		assert.Equal(t, admin.CodeValidation, apiErr.Code)
		assert.Len(t, apiErr.FieldErrors, 3)
		assert.Equal(t, admin.CodeMaxLength, apiErr.FieldErrors["title"].Code)
		assert.Equal(t, admin.CodeFieldRequired, apiErr.FieldErrors["merchant_id"].Code)
		assert.Equal(t, admin.CodeInvalidType, apiErr.FieldErrors["is_active"].Code)

		body := apiErr.Body(enManager())
		assert.Equal(t, "Validation error", body.Message)
		assert.Equal(t, "Field is required", body.FieldErrors["merchant_id"].Message)
	})
}

func TestFieldsSchemaValidators(t *testing.T) {
	ctx := context.Background()
	schema := admin.MustFieldsSchema([]admin.NamedField{
		admin.F("code", &admin.StringField{FieldBase: admin.FieldBase{Required: true}}),
		admin.F("note", &admin.StringField{}),
	},
		admin.WithValidator("code", func(_ context.Context, value any, _ admin.FieldContext) (any, error) {
			s := value.(string)
			if s != strings.ToUpper(s) {
				return nil, admin.NewFieldError("not_upper", i18n.Raw("must be upper case"))
			}
			return "X-" + s, nil
		}),
		admin.WithValidator("note", func(context.Context, any, admin.FieldContext) (any, error) {
			return nil, errors.New("storage offline")
		}),
		admin.WithReadOnly("note"),
	)

	out, err := schema.Deserialize(ctx, map[string]any{"code": "USD", "note": "skipped"}, admin.ActionCreate, admin.FieldContext{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"code": "X-USD"}, out.ToMap())

	_, err = schema.Deserialize(ctx, map[string]any{"code": "usd"}, admin.ActionCreate, admin.FieldContext{})
	apiErr, ok := admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "not_upper", apiErr.FieldErrors["code"].Code)
}

func TestFieldsSchemaFunctionField(t *testing.T) {
	assert := assert.New(t)
	schema := admin.MustFieldsSchema([]admin.NamedField{
		admin.F("title", &admin.StringField{}),
		admin.F("shout", &admin.FunctionField{Fn: func(_ context.Context, fc admin.FieldContext) (any, error) {
			return strings.ToUpper(fc.Record["title"].(string)) + " by " + fc.User.GetUsername(), nil
		}}),
	})

	field, ok := schema.Field("shout")
	assert.True(ok)
	assert.True(schema.ReadOnly("shout"))
	assert.False(field.Base().ReadOnly)

	out, err := schema.Serialize(context.Background(), map[string]any{"title": "hi"}, admin.FieldContext{User: testUser("root")})
	assert.NoError(err)
	value, _ := out.Get("shout")
	assert.Equal("HI by root", value)

	in, err := schema.Deserialize(context.Background(), map[string]any{"title": "x", "shout": "ignored"}, admin.ActionUpdate, admin.FieldContext{})
	assert.NoError(err)
	assert.Equal([]string{"title"}, in.Keys())
}

func TestFieldsSchemaReadOnlyIsPerSchema(t *testing.T) {
	shared := &admin.StringField{}
	locked := admin.MustFieldsSchema([]admin.NamedField{
		admin.F("title", &admin.StringField{}),
		admin.F("note", shared),
	}, admin.WithReadOnly("note"))
	open := admin.MustFieldsSchema([]admin.NamedField{
		admin.F("title", &admin.StringField{}),
		admin.F("note", shared),
	})

	testCases := []struct {
		name     string
		schema   *admin.FieldsSchema
		readOnly bool
		want     map[string]any
	}{
		{"read-only schema", locked, true, map[string]any{"title": "a"}},
		{"writable schema", open, false, map[string]any{"title": "a", "note": "n"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.readOnly, tc.schema.ReadOnly("note"))

			data := tc.schema.GenerateSchema(testUser("root"), enManager())
			note, ok := data.Fields.Get("note")
			require.True(t, ok)
			assert.Equal(t, tc.readOnly, note.ReadOnly)

			out, err := tc.schema.Deserialize(context.Background(), map[string]any{"title": "a", "note": "n"}, admin.ActionCreate, admin.FieldContext{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.ToMap())
		})
	}
	assert.False(t, shared.ReadOnly)
}

func TestFieldsSchemaRejectUnknown(t *testing.T) {
	schema := terminalSchema()
	assert.NoError(t, schema.RejectUnknown(map[string]any{"title": "x"}))

	err := schema.RejectUnknown(map[string]any{"zeta": 1, "alpha": 2, "title": "x"})
	apiErr, ok := admin.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, admin.CodeFieldNotFound, apiErr.Code)
	assert.Equal(t, `Field "alpha" is not part of the schema.`, apiErr.Body(enManager()).Message)
}
