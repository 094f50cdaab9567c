package admin

import (
	"context"
	"strings"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// ChoiceField holds one value out of a fixed set and renders as a tag.
type ChoiceField struct {
	FieldBase
	Choices   []Choice
	TagColors map[string]string
	Variant   string
	Size      string
}

func (f *ChoiceField) Type() string { return TypeChoice }

func (f *ChoiceField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	data.Choices = choiceData(f.Choices, lang)
	data.TagColors = f.TagColors
	data.Variant = f.Variant
	data.Size = f.Size
	return data
}

func (f *ChoiceField) Serialize(_ context.Context, value any, fc FieldContext) (any, error) {
	if value == nil {
		return nil, nil
	}
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	c, ok := findChoice(f.Choices, value)
	if !ok {
		return map[string]any{"value": value, "title": KeyString(value)}, nil
	}
	return map[string]any{"value": c.Value, "title": choiceTitle(c, fc.Language)}, nil
}

func (f *ChoiceField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if m, ok := value.(map[string]any); ok {
		value = m["value"]
	}
	if done, err := f.checkRequired(value); done {
		return nil, err
	}
	c, ok := findChoice(f.Choices, value)
	if !ok {
		return nil, fieldError(CodeInvalidChoice, map[string]any{"value": value})
	}
	return c.Value, nil
}

// Autocomplete filters the static choices by title.
func (f *ChoiceField) Autocomplete(_ context.Context, req AutocompleteRequest) ([]Record, error) {
	search := strings.ToLower(strings.TrimSpace(req.Query.SearchString))
	results := make([]Record, 0, len(f.Choices))
	for _, c := range f.Choices {
		title := choiceTitle(c, req.Context.Language)
		if search != "" && !strings.Contains(strings.ToLower(title), search) {
			continue
		}
		if len(results) >= req.Limit {
			break
		}
		results = append(results, Record{Key: c.Value, Title: title})
	}

	for _, existed := range req.Query.ExistedChoices {
		if containsKey(results, existed.Key) {
			continue
		}
		if c, ok := findChoice(f.Choices, existed.Key); ok {
			results = append(results, Record{Key: c.Value, Title: choiceTitle(c, req.Context.Language)})
		}
	}
	return results, nil
}

func containsKey(records []Record, key any) bool {
	want := KeyString(key)
	for _, r := range records {
		if KeyString(r.Key) == want {
			return true
		}
	}
	return false
}
