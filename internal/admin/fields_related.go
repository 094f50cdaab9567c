package admin

import (
	"context"
	"fmt"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// RelationLookup is implemented by backends that can resolve related records
// for autocomplete.
type RelationLookup interface {
	// SearchRelated returns up to limit targets of field whose title matches search.
	SearchRelated(ctx context.Context, field *RelatedField, slug, search string, limit int) ([]Record, error)
	// FetchRelated resolves the given keys of field's target.
	FetchRelated(ctx context.Context, field *RelatedField, slug string, keys []any) ([]Record, error)
}

// AutocompleteRequest is what a field receives to answer an autocomplete query.
type AutocompleteRequest struct {
	Slug    string
	Query   AutocompleteQuery
	Limit   int
	Lookup  RelationLookup
	Context FieldContext
}

// Autocompleter is implemented by fields offering search-as-you-type choices.
type Autocompleter interface {
	Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Record, error)
}

// RelatedField references other records. Backends put resolved Records into
// the row before serialization; on write the field yields raw keys which the
// backend resolves.
type RelatedField struct {
	FieldBase
	Many bool
	// RelName is the backend relationship this field follows.
	RelName string
}

func (f *RelatedField) Type() string { return TypeRelated }

func (f *RelatedField) GenerateSchema(_ User, slug string, lang *i18n.Manager) FieldSchemaData {
	data := f.schema(f.Type(), slug, lang)
	data.Many = f.Many
	data.RelName = f.RelName
	return data
}

// Relation returns RelName, or slug when RelName is unset.
func (f *RelatedField) Relation(slug string) string {
	if f.RelName != "" {
		return f.RelName
	}
	return slug
}

func (f *RelatedField) Serialize(_ context.Context, value any, _ FieldContext) (any, error) {
	switch v := value.(type) {
	case nil:
		if f.Many {
			return []any{}, nil
		}
		return nil, nil
	case Record:
		return recordJSON(v), nil
	case *Record:
		if v == nil {
			return nil, nil
		}
		return recordJSON(*v), nil
	case []Record:
		out := make([]any, 0, len(v))
		for _, r := range v {
			out = append(out, recordJSON(r))
		}
		return out, nil
	default:
		// unresolved key
		return map[string]any{"key": value, "title": KeyString(value)}, nil
	}
}

func recordJSON(r Record) map[string]any {
	return map[string]any{"key": r.Key, "title": r.Title}
}

func (f *RelatedField) Deserialize(_ context.Context, value any, _ DeserializeAction, _ FieldContext) (any, error) {
	if done, err := f.checkRequired(value); done {
		return nil, err
	}

	if !f.Many {
		key, ok := relatedKey(value)
		if !ok {
			return nil, invalidType(TypeRelated)
		}
		return key, nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil, invalidType(TypeRelated)
	}
	keys := make([]any, 0, len(items))
	for _, item := range items {
		key, ok := relatedKey(item)
		if !ok {
			return nil, invalidType(TypeRelated)
		}
		keys = append(keys, key)
	}
	if f.Required && len(keys) == 0 {
		return nil, NewFieldError(CodeFieldRequired, i18n.T(CodeFieldRequired))
	}
	return keys, nil
}

// relatedKey extracts the key out of {key, title} or a bare scalar.
func relatedKey(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		key, ok := v["key"]
		if !ok || key == nil {
			return nil, false
		}
		return normalizeKey(key), true
	case Record:
		return normalizeKey(v.Key), true
	case []any, nil:
		return nil, false
	default:
		return normalizeKey(v), true
	}
}

// normalizeKey turns integral JSON numbers into int64.
func normalizeKey(key any) any {
	if _, isString := key.(string); isString {
		return key
	}
	if n, ok := toInt64(key); ok {
		return n
	}
	return key
}

// Autocomplete asks the backend for matching targets and keeps every already
// selected choice in the result.
func (f *RelatedField) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Record, error) {
	if req.Lookup == nil {
		return nil, fmt.Errorf("related field %q: backend does not support relation lookups", req.Slug)
	}

	results, err := req.Lookup.SearchRelated(ctx, f, req.Slug, req.Query.SearchString, req.Limit)
	if err != nil {
		return nil, err
	}

	var missing []any
	for _, existed := range req.Query.ExistedChoices {
		if existed.Key == nil || containsKey(results, existed.Key) {
			continue
		}
		missing = append(missing, normalizeKey(existed.Key))
	}
	if len(missing) == 0 {
		return results, nil
	}

	existing, err := req.Lookup.FetchRelated(ctx, f, req.Slug, missing)
	if err != nil {
		return nil, err
	}
	return append(results, existing...), nil
}
