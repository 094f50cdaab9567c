package admin

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	"github.com/Annany2002/nebula-admin/internal/core"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// Wire type tags.
const (
	TypeInteger  = "integer"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeDateTime = "datetime"
	TypeJSON     = "json"
	TypeArray    = "array"
	TypeFile     = "file"
	TypeImage    = "image"
	TypeChoice   = "choice"
	TypeRelated  = "related"
	TypeFunction = "function"
)

// Field is a Field Descriptor: one attribute's wire type, validation and
// conversion between backend values and JSON values.
//
// The concrete variants live in this package; CustomField covers anything else.
type Field interface {
	Type() string
	Base() *FieldBase
	GenerateSchema(user User, slug string, lang *i18n.Manager) FieldSchemaData
	Serialize(ctx context.Context, value any, fc FieldContext) (any, error)
	Deserialize(ctx context.Context, value any, action DeserializeAction, fc FieldContext) (any, error)
}

// FieldBase holds the attributes shared by every variant.
type FieldBase struct {
	Label    i18n.Text
	HelpText i18n.Text
	Header   map[string]any
	ReadOnly bool
	Required bool
	Default  any
}

// Base gives schemas access to the shared attributes.
func (b *FieldBase) Base() *FieldBase {
	return b
}

func (b *FieldBase) schema(typ, slug string, lang *i18n.Manager) FieldSchemaData {
	label := core.HumanizeSlug(slug)
	if !b.Label.IsZero() {
		label = lang.Get(b.Label)
	}
	return FieldSchemaData{
		Type:     typ,
		Label:    label,
		HelpText: optText(lang, b.HelpText),
		Header:   b.Header,
		ReadOnly: b.ReadOnly,
		Default:  b.Default,
		Required: b.Required,
	}
}

// checkRequired returns done=true when value is nil, with an error if the
// field is required.
func (b *FieldBase) checkRequired(value any) (bool, error) {
	if value != nil {
		return false, nil
	}
	if b.Required {
		return true, NewFieldError(CodeFieldRequired, i18n.T(CodeFieldRequired))
	}
	return true, nil
}

// FieldSchemaData is the wire description of a field.
type FieldSchemaData struct {
	Type     string         `json:"type"`
	Label    string         `json:"label"`
	HelpText *string        `json:"help_text"`
	Header   map[string]any `json:"header,omitempty"`
	ReadOnly bool           `json:"read_only"`
	Default  any            `json:"default"`
	Required bool           `json:"required"`

	MinLength        *int              `json:"min_length,omitempty"`
	MaxLength        *int              `json:"max_length,omitempty"`
	MinValue         *int64            `json:"min_value,omitempty"`
	MaxValue         *int64            `json:"max_value,omitempty"`
	Choices          []ChoiceData      `json:"choices,omitempty"`
	TagColors        map[string]string `json:"tag_colors,omitempty"`
	Variant          string            `json:"variant,omitempty"`
	Size             string            `json:"size,omitempty"`
	InputMode        string            `json:"inputmode,omitempty"`
	Precision        *int              `json:"precision,omitempty"`
	Scale            *int              `json:"scale,omitempty"`
	Range            bool              `json:"range,omitempty"`
	ArrayType        string            `json:"array_type,omitempty"`
	PreviewMaxHeight *int              `json:"preview_max_height,omitempty"`
	PreviewMaxWidth  *int              `json:"preview_max_width,omitempty"`
	Many             bool              `json:"many,omitempty"`
	RelName          string            `json:"rel_name,omitempty"`
}

// Choice is one selectable value of a choice-like field.
type Choice struct {
	Value any
	Title i18n.Text
}

// ChoiceData is the wire form of a Choice.
type ChoiceData struct {
	Value any    `json:"value"`
	Title string `json:"title"`
}

func choiceData(choices []Choice, lang *i18n.Manager) []ChoiceData {
	if len(choices) == 0 {
		return nil
	}
	out := make([]ChoiceData, 0, len(choices))
	for _, c := range choices {
		out = append(out, ChoiceData{Value: c.Value, Title: choiceTitle(c, lang)})
	}
	return out
}

func choiceTitle(c Choice, lang *i18n.Manager) string {
	if c.Title.IsZero() {
		return KeyString(c.Value)
	}
	return lang.Get(c.Title)
}

func findChoice(choices []Choice, value any) (Choice, bool) {
	want := KeyString(value)
	for _, c := range choices {
		if KeyString(c.Value) == want {
			return c, true
		}
	}
	return Choice{}, false
}

func optText(lang *i18n.Manager, t i18n.Text) *string {
	if t.IsZero() {
		return nil
	}
	s := lang.Get(t)
	return &s
}

func optInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

// Ptr returns a pointer to v, for optional bounds in field literals.
func Ptr[T any](v T) *T {
	return &v
}

func invalidType(typ string) *FieldError {
	return fieldError(CodeInvalidType, map[string]any{"type": typ})
}

// toInt64 accepts the integer shapes JSON decoding and drivers produce.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	default:
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}
