package admin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

func fieldCode(err error) string {
	var fe *admin.FieldError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

func TestFieldDeserialize(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		field    admin.Field
		input    any
		want     any
		wantCode string
	}{
		{"integer from json number", &admin.IntegerField{}, float64(5), int64(5), ""},
		{"integer rejects fraction", &admin.IntegerField{}, 5.5, nil, admin.CodeInvalidType},
		{"integer rejects string", &admin.IntegerField{}, "5", nil, admin.CodeInvalidType},
		{"integer below min", &admin.IntegerField{MinValue: admin.Ptr[int64](1)}, float64(0), nil, admin.CodeMinValue},
		{"integer above max", &admin.IntegerField{MaxValue: admin.Ptr[int64](10)}, float64(11), nil, admin.CodeMaxValue},
		{"decimal keeps fraction", &admin.IntegerField{InputMode: "decimal"}, 12.5, 12.5, ""},
		{"required nil", &admin.IntegerField{FieldBase: admin.FieldBase{Required: true}}, nil, nil, admin.CodeFieldRequired},
		{"optional nil", &admin.StringField{}, nil, nil, ""},
		{"string ok", &admin.StringField{MaxLength: 5}, "hello", "hello", ""},
		{"string too long", &admin.StringField{MaxLength: 4}, "hello", nil, admin.CodeMaxLength},
		{"string too short", &admin.StringField{MinLength: 2}, "h", nil, admin.CodeMinLength},
		{"string counts runes", &admin.StringField{MaxLength: 3}, "абв", "абв", ""},
		{"string wrong type", &admin.StringField{}, true, nil, admin.CodeInvalidType},
		{"boolean ok", &admin.BooleanField{}, true, true, ""},
		{"boolean wrong type", &admin.BooleanField{}, "true", nil, admin.CodeInvalidType},
		{"array ok", &admin.ArrayField{}, []any{"a", "b"}, []any{"a", "b"}, ""},
		{"array wrong type", &admin.ArrayField{}, "a,b", nil, admin.CodeInvalidType},
		{"image from url object", &admin.ImageField{}, map[string]any{"url": "/a.png"}, "/a.png", ""},
		{"related single key object", &admin.RelatedField{}, map[string]any{"key": float64(3), "title": "x"}, int64(3), ""},
		{"related single scalar", &admin.RelatedField{}, "abc", "abc", ""},
		{"related many", &admin.RelatedField{Many: true}, []any{map[string]any{"key": float64(1)}, float64(2)}, []any{int64(1), int64(2)}, ""},
		{"related many not a list", &admin.RelatedField{Many: true}, float64(1), nil, admin.CodeInvalidType},
		{"related required empty list", &admin.RelatedField{FieldBase: admin.FieldBase{Required: true}, Many: true}, []any{}, nil, admin.CodeFieldRequired},
		{"datetime invalid", &admin.DateTimeField{}, "yesterday", nil, admin.CodeInvalidDatetime},
		{"datetime range without flag", &admin.DateTimeField{}, map[string]any{"from": "2024-01-01"}, nil, admin.CodeInvalidDatetime},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.field.Deserialize(ctx, tc.input, admin.ActionCreate, admin.FieldContext{})
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, fieldCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDateTimeField(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	field := &admin.DateTimeField{Range: true}

	moment := time.Date(2024, 3, 1, 10, 30, 0, 0, time.FixedZone("UTC+3", 3*3600))
	out, err := field.Serialize(ctx, moment, admin.FieldContext{})
	assert.NoError(err)
	assert.Equal("2024-03-01T07:30:00.000000Z", out)

	out, err = field.Serialize(ctx, "2024-03-01 07:30:00", admin.FieldContext{})
	assert.NoError(err)
	assert.Equal("2024-03-01T07:30:00.000000Z", out)

	parsed, err := field.Deserialize(ctx, "2024-03-01T07:30:00Z", admin.ActionCreate, admin.FieldContext{})
	assert.NoError(err)
	if ts, ok := parsed.(time.Time); assert.True(ok) {
		assert.True(ts.Equal(time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)))
	}

	parsed, err = field.Deserialize(ctx, map[string]any{"from": "2024-01-01", "to": nil}, admin.ActionCreate, admin.FieldContext{})
	assert.NoError(err)
	r, ok := parsed.(admin.DateRange)
	assert.True(ok)
	if assert.NotNil(r.From) {
		assert.Equal(2024, r.From.Year())
	}
	assert.Nil(r.To)
}

func TestChoiceField(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	field := &admin.ChoiceField{Choices: []admin.Choice{
		{Value: "new", Title: i18n.Raw("New")},
		{Value: "paid", Title: i18n.Raw("Paid")},
	}}

	out, err := field.Serialize(ctx, "paid", admin.FieldContext{})
	assert.NoError(err)
	assert.Equal(map[string]any{"value": "paid", "title": "Paid"}, out)

	value, err := field.Deserialize(ctx, map[string]any{"value": "new"}, admin.ActionCreate, admin.FieldContext{})
	assert.NoError(err)
	assert.Equal("new", value)

	_, err = field.Deserialize(ctx, "refunded", admin.ActionCreate, admin.FieldContext{})
	assert.Equal(admin.CodeInvalidChoice, fieldCode(err))

	results, err := field.Autocomplete(ctx, admin.AutocompleteRequest{
		Query: admin.AutocompleteQuery{SearchString: "pa", ExistedChoices: []admin.Record{{Key: "new"}}},
		Limit: 10,
	})
	assert.NoError(err)
	assert.Equal([]admin.Record{{Key: "paid", Title: "Paid"}, {Key: "new", Title: "New"}}, results)
}

func TestFieldSerialize(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	out, _ := (&admin.BooleanField{}).Serialize(ctx, int64(1), admin.FieldContext{})
	assert.Equal(true, out)

	out, _ = (&admin.ImageField{}).Serialize(ctx, "/img/logo.png", admin.FieldContext{})
	assert.Equal(map[string]any{"url": "/img/logo.png"}, out)

	out, _ = (&admin.JSONField{}).Serialize(ctx, `{"a":1}`, admin.FieldContext{})
	assert.Equal(map[string]any{"a": float64(1)}, out)

	out, _ = (&admin.IntegerField{InputMode: "decimal"}).Serialize(ctx, []byte("10.25"), admin.FieldContext{})
	assert.Equal(10.25, out)

	out, _ = (&admin.RelatedField{}).Serialize(ctx, admin.Record{Key: int64(1), Title: "Merchant"}, admin.FieldContext{})
	assert.Equal(map[string]any{"key": int64(1), "title": "Merchant"}, out)

	out, _ = (&admin.RelatedField{Many: true}).Serialize(ctx, nil, admin.FieldContext{})
	assert.Equal([]any{}, out)
}

func TestFieldGenerateSchema(t *testing.T) {
	assert := assert.New(t)
	lang := enManager()

	data := (&admin.StringField{MaxLength: 255}).GenerateSchema(nil, "merchant_title", lang)
	assert.Equal(admin.TypeString, data.Type)
	assert.Equal("Merchant title", data.Label)
	assert.Nil(data.HelpText)
	if assert.NotNil(data.MaxLength) {
		assert.Equal(255, *data.MaxLength)
	}

	data = (&admin.RelatedField{
		FieldBase: admin.FieldBase{Label: i18n.Raw("Merchant"), HelpText: i18n.T("delete")},
		RelName:   "merchant",
	}).GenerateSchema(nil, "merchant_id", lang)
	assert.Equal("Merchant", data.Label)
	if assert.NotNil(data.HelpText) {
		assert.Equal("Delete", *data.HelpText)
	}
	assert.Equal("merchant", data.RelName)

	fn := &admin.FunctionField{As: &admin.IntegerField{}}
	data = fn.GenerateSchema(nil, "total", lang)
	assert.Equal(admin.TypeInteger, data.Type)
	assert.True(data.ReadOnly)
}
