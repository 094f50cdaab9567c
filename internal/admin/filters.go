package admin

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// FilterOp is the comparison a Filter applies.
type FilterOp string

const (
	FilterExact    FilterOp = "exact"
	FilterIn       FilterOp = "in"
	FilterContains FilterOp = "contains"
	FilterRange    FilterOp = "range"
)

// Filter is one validated structured filter.
type Filter struct {
	Field  string
	Op     FilterOp
	Value  any
	Values []any
	From   *time.Time
	To     *time.Time
}

func filterError(field string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeFiltersError,
		i18n.T(CodeFiltersError).With(map[string]any{"field": field}))
}

// ParseFilters validates filter input against the schema, in field order.
// Nil values and empty lists are treated as "not filtered".
func (s *FieldsSchema) ParseFilters(input map[string]any) ([]Filter, error) {
	var unknown []string
	for key := range input {
		if _, ok := s.index[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, filterError(unknown[0])
	}

	var filters []Filter
	for _, nf := range s.fields {
		raw, ok := input[nf.Slug]
		if !ok || raw == nil {
			continue
		}
		f, skip, err := parseFilter(nf.Slug, nf.Field, raw)
		if err != nil {
			return nil, err
		}
		if !skip {
			filters = append(filters, f)
		}
	}
	return filters, nil
}

func parseFilter(slug string, field Field, raw any) (Filter, bool, error) {
	if dt, ok := field.(*DateTimeField); ok {
		return parseTimeFilter(slug, dt, raw)
	}

	switch v := raw.(type) {
	case []any:
		if len(v) == 0 {
			return Filter{}, true, nil
		}
		values := make([]any, 0, len(v))
		for _, item := range v {
			values = append(values, filterScalar(item))
		}
		return Filter{Field: slug, Op: FilterIn, Values: values}, false, nil
	case map[string]any:
		if key, ok := v["key"]; ok {
			return Filter{Field: slug, Op: FilterExact, Value: normalizeKey(key)}, false, nil
		}
		if value, ok := v["value"]; ok {
			return Filter{Field: slug, Op: FilterExact, Value: normalizeKey(value)}, false, nil
		}
		return Filter{}, false, filterError(slug)
	case string:
		switch field.Type() {
		case TypeString, TypeJSON, TypeArray, TypeFile, TypeImage:
			if v == "" {
				return Filter{}, true, nil
			}
			return Filter{Field: slug, Op: FilterContains, Value: v}, false, nil
		}
		return Filter{Field: slug, Op: FilterExact, Value: v}, false, nil
	default:
		return Filter{Field: slug, Op: FilterExact, Value: normalizeKey(v)}, false, nil
	}
}

func parseTimeFilter(slug string, field *DateTimeField, raw any) (Filter, bool, error) {
	switch v := raw.(type) {
	case map[string]any:
		if !field.Range {
			return Filter{}, false, filterError(slug)
		}
		parsed, err := field.Deserialize(context.Background(), v, ActionTableAction, FieldContext{})
		if err != nil {
			return Filter{}, false, filterError(slug)
		}
		r := parsed.(DateRange)
		if r.From == nil && r.To == nil {
			return Filter{}, true, nil
		}
		return Filter{Field: slug, Op: FilterRange, From: r.From, To: r.To}, false, nil
	case string:
		if v == "" {
			return Filter{}, true, nil
		}
		t, ok := ParseTime(v)
		if !ok {
			return Filter{}, false, filterError(slug)
		}
		return Filter{Field: slug, Op: FilterExact, Value: t}, false, nil
	default:
		return Filter{}, false, filterError(slug)
	}
}

func filterScalar(v any) any {
	if m, ok := v.(map[string]any); ok {
		if key, ok := m["key"]; ok {
			return normalizeKey(key)
		}
		if value, ok := m["value"]; ok {
			return normalizeKey(value)
		}
	}
	return normalizeKey(v)
}

// firstKey returns the smallest key of m, for deterministic error messages.
func firstKey(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
