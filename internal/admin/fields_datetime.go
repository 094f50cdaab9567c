package admin

import (
	"context"
	"strings"
	"time"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// DefaultDateTimeLayout renders UTC timestamps with microseconds.
const DefaultDateTimeLayout = "2006-01-02T15:04:05.000000Z"

var inputLayouts = []string{
	time.RFC3339Nano,
	DefaultDateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateRange is an inclusive interval; either bound may be open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// DateTimeField holds timestamps. With Range set it also accepts {from, to}.
type DateTimeField struct {
	FieldBase
	Range  bool
	Layout string
}

func (f *DateTimeField) Type() string { return TypeDateTime }

func (f *DateTimeField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	data.Range = f.Range
	return data
}

func (f *DateTimeField) layout() string {
	if f.Layout != "" {
		return f.Layout
	}
	return DefaultDateTimeLayout
}

func (f *DateTimeField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if v.IsZero() {
			return nil, nil
		}
		return v.UTC().Format(f.layout()), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil, nil
		}
		return v.UTC().Format(f.layout()), nil
	case string:
		if t, ok := ParseTime(v); ok {
			return t.UTC().Format(f.layout()), nil
		}
		return v, nil
	case []byte:
		return f.Serialize(context.Background(), string(v), FieldContext{})
	default:
		return value, nil
	}
}

func (f *DateTimeField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}

	switch v := value.(type) {
	case string:
		t, ok := ParseTime(v)
		if !ok {
			return nil, fieldError(CodeInvalidDatetime, nil)
		}
		return t, nil
	case time.Time:
		return v.UTC(), nil
	case map[string]any:
		if !f.Range {
			return nil, fieldError(CodeInvalidDatetime, nil)
		}
		var r DateRange
		for key, dst := range map[string]**time.Time{"from": &r.From, "to": &r.To} {
			raw, ok := v[key]
			if !ok || raw == nil || raw == "" {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return nil, fieldError(CodeInvalidDatetime, nil)
			}
			t, ok := ParseTime(s)
			if !ok {
				return nil, fieldError(CodeInvalidDatetime, nil)
			}
			*dst = &t
		}
		return r, nil
	default:
		return nil, fieldError(CodeInvalidDatetime, nil)
	}
}

// ParseTime accepts ISO 8601 timestamps in the layouts clients and sqlite use.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
