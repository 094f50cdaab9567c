package admin

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// IntegerField holds whole numbers. With InputMode "decimal" it holds
// fixed-point numerics and accepts fractional input.
type IntegerField struct {
	FieldBase
	MinValue  *int64
	MaxValue  *int64
	Choices   []Choice
	InputMode string
	Precision int
	Scale     int
}

func (f *IntegerField) Type() string { return TypeInteger }

func (f *IntegerField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	data.MinValue = f.MinValue
	data.MaxValue = f.MaxValue
	data.Choices = choiceData(f.Choices, lang)
	data.InputMode = f.InputMode
	data.Precision = optInt(f.Precision)
	data.Scale = optInt(f.Scale)
	return data
}

func (f *IntegerField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	if f.decimal() {
		if s, ok := value.(string); ok {
			if n, ok := toFloat64(s); ok {
				return n, nil
			}
		}
	}
	return value, nil
}

func (f *IntegerField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}

	var n float64
	var out any
	if f.decimal() {
		v, ok := toFloat64(value)
		if !ok {
			return nil, invalidType("decimal")
		}
		n, out = v, v
	} else {
		v, ok := toInt64(value)
		if !ok {
			return nil, invalidType(TypeInteger)
		}
		n, out = float64(v), v
	}

	if f.MinValue != nil && n < float64(*f.MinValue) {
		return nil, fieldError(CodeMinValue, map[string]any{"limit": *f.MinValue})
	}
	if f.MaxValue != nil && n > float64(*f.MaxValue) {
		return nil, fieldError(CodeMaxValue, map[string]any{"limit": *f.MaxValue})
	}
	if len(f.Choices) > 0 {
		if _, ok := findChoice(f.Choices, out); !ok {
			return nil, fieldError(CodeInvalidChoice, map[string]any{"value": out})
		}
	}
	return out, nil
}

func (f *IntegerField) decimal() bool {
	return f.InputMode == "decimal"
}

// StringField holds text.
type StringField struct {
	FieldBase
	MinLength int
	MaxLength int
	Choices   []Choice
}

func (f *StringField) Type() string { return TypeString }

func (f *StringField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	data.MinLength = optInt(f.MinLength)
	data.MaxLength = optInt(f.MaxLength)
	data.Choices = choiceData(f.Choices, lang)
	return data
}

func (f *StringField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	if b, ok := value.([]byte); ok {
		return string(b), nil
	}
	return value, nil
}

func (f *StringField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	s, ok := value.(string)
	if !ok {
		return nil, invalidType(TypeString)
	}

	length := utf8.RuneCountInString(s)
	if f.MinLength > 0 && length < f.MinLength {
		return nil, fieldError(CodeMinLength, map[string]any{"limit": f.MinLength})
	}
	if f.MaxLength > 0 && length > f.MaxLength {
		return nil, fieldError(CodeMaxLength, map[string]any{"limit": f.MaxLength})
	}
	if len(f.Choices) > 0 {
		if _, ok := findChoice(f.Choices, s); !ok {
			return nil, fieldError(CodeInvalidChoice, map[string]any{"value": s})
		}
	}
	return s, nil
}

// BooleanField holds true/false. sqlite returns booleans as 0/1.
type BooleanField struct {
	FieldBase
}

func (f *BooleanField) Type() string { return TypeBoolean }

func (f *BooleanField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	return f.schema(f.Type(), slug, lang)
}

func (f *BooleanField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	if value == nil {
		return nil, nil
	}
	if b, ok := value.(bool); ok {
		return b, nil
	}
	if n, ok := toInt64(value); ok {
		return n != 0, nil
	}
	return value, nil
}

func (f *BooleanField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	b, ok := value.(bool)
	if !ok {
		return nil, invalidType(TypeBoolean)
	}
	return b, nil
}

// JSONField holds an arbitrary JSON document.
type JSONField struct {
	FieldBase
}

func (f *JSONField) Type() string { return TypeJSON }

func (f *JSONField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	return f.schema(f.Type(), slug, lang)
}

func (f *JSONField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	return decodeJSONText(value), nil
}

func (f *JSONField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	return value, nil
}

// ArrayField holds a list of scalar values.
type ArrayField struct {
	FieldBase
	ArrayType string
}

func (f *ArrayField) Type() string { return TypeArray }

func (f *ArrayField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	data.ArrayType = f.ArrayType
	return data
}

func (f *ArrayField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	return decodeJSONText(value), nil
}

func (f *ArrayField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	switch v := value.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	default:
		return nil, invalidType(TypeArray)
	}
}

// decodeJSONText turns JSON stored as text back into a value. Anything that
// is not valid JSON text is returned unchanged.
func decodeJSONText(value any) any {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		return value
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		if s, ok := value.(string); ok {
			return s
		}
		return string(raw)
	}
	return out
}

// FileField holds a file reference (path or URL).
type FileField struct {
	FieldBase
}

func (f *FileField) Type() string { return TypeFile }

func (f *FileField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	return f.schema(f.Type(), slug, lang)
}

func (f *FileField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	if b, ok := value.([]byte); ok {
		return string(b), nil
	}
	return value, nil
}

func (f *FileField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	s, ok := value.(string)
	if !ok {
		return nil, invalidType(TypeFile)
	}
	return s, nil
}

// ImageField holds an image URL and serializes to {url}.
type ImageField struct {
	FieldBase
	PreviewMaxHeight int
	PreviewMaxWidth  int
}

func (f *ImageField) Type() string { return TypeImage }

func (f *ImageField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	data.PreviewMaxHeight = optInt(f.PreviewMaxHeight)
	data.PreviewMaxWidth = optInt(f.PreviewMaxWidth)
	return data
}

func (f *ImageField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return map[string]any{"url": v}, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return map[string]any{"url": string(v)}, nil
	default:
		return value, nil
	}
}

func (f *ImageField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if m, ok := value.(map[string]any); ok {
		value = m["url"]
	}
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	s, ok := value.(string)
	if !ok {
		return nil, invalidType(TypeImage)
	}
	return s, nil
}
