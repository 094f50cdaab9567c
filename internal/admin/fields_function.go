package admin

import (
	"context"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// FunctionField is a read-only value computed from the record being
// serialized. As, when set, provides the wire type and formats the result.
type FunctionField struct {
	FieldBase
	As Field
	Fn func(ctx context.Context, fc FieldContext) (any, error)
}

func (f *FunctionField) Type() string {
	if f.As != nil {
		return f.As.Type()
	}
	return TypeFunction
}

func (f *FunctionField) GenerateSchema(user User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	if f.As != nil {
		inner := f.As.GenerateSchema(user, slug, lang)
		inner.Label, inner.HelpText, inner.Header = data.Label, data.HelpText, data.Header
		inner.Default, inner.Required = nil, false
		data = inner
	}
	data.ReadOnly = true
	return data
}

func (f *FunctionField) Serialize(ctx context.Context, _ any, fc FieldContext) (any, error) {
	if f.Fn == nil {
		return nil, nil
	}
	value, err := f.Fn(ctx, fc)
	if err != nil {
		return nil, err
	}
	if f.As != nil {
		return f.As.Serialize(ctx, value, fc)
	}
	return value, nil
}

// Deserialize is never reached through a schema since function fields are read-only.
func (f *FunctionField) Deserialize(context.Context, any, DeserializeAction, FieldContext) (any, error) {
	return nil, nil
}

// CustomField is the escape hatch for wire types outside the built-in set.
// Nil funcs fall back to identity conversion.
type CustomField struct {
	FieldBase
	TypeName        string
	SchemaFunc      func(data *FieldSchemaData)
	SerializeFunc   func(ctx context.Context, value any, fc FieldContext) (any, error)
	DeserializeFunc func(ctx context.Context, value any, action DeserializeAction, fc FieldContext) (any, error)
}

func (f *CustomField) Type() string { return f.TypeName }

func (f *CustomField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	if f.SchemaFunc != nil {
		f.SchemaFunc(&data)
	}
	return data
}

func (f *CustomField) Serialize(ctx context.Context, value any, fc FieldContext) (any, error) {
	if f.SerializeFunc == nil {
		return value, nil
	}
	return f.SerializeFunc(ctx, value, fc)
}

func (f *CustomField) Deserialize(ctx context.Context, value any, action DeserializeAction, fc FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	if f.DeserializeFunc == nil {
		return value, nil
	}
	return f.DeserializeFunc(ctx, value, action, fc)
}
