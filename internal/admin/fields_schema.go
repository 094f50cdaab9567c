package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// NamedField binds a slug to a field descriptor.
type NamedField struct {
	Slug  string
	Field Field
}

// F is shorthand for NamedField{slug, field}.
func F(slug string, field Field) NamedField {
	return NamedField{Slug: slug, Field: field}
}

// Validator post-processes a deserialized value. Returning a *FieldError
// rejects the value; any other error aborts deserialization.
type Validator func(ctx context.Context, value any, fc FieldContext) (any, error)

// SchemaOption configures a FieldsSchema at construction.
type SchemaOption func(*schemaOptions)

type schemaOptions struct {
	listDisplay []string
	readOnly    []string
	validators  map[string]Validator
}

// WithListDisplay sets the columns shown in the table view. Defaults to all fields.
func WithListDisplay(slugs ...string) SchemaOption {
	return func(o *schemaOptions) { o.listDisplay = slugs }
}

// WithReadOnly marks fields read-only in this schema only; the descriptors
// are left untouched.
func WithReadOnly(slugs ...string) SchemaOption {
	return func(o *schemaOptions) { o.readOnly = append(o.readOnly, slugs...) }
}

// WithValidator registers a per-field validator run after the field's own Deserialize.
func WithValidator(slug string, fn Validator) SchemaOption {
	return func(o *schemaOptions) {
		if o.validators == nil {
			o.validators = make(map[string]Validator)
		}
		o.validators[slug] = fn
	}
}

// FieldsSchema is an ordered, immutable set of field descriptors.
type FieldsSchema struct {
	fields      []NamedField
	index       map[string]Field
	listDisplay []string
	readOnly    map[string]bool
	validators  map[string]Validator
}

// NewFieldsSchema validates the field list and options.
func NewFieldsSchema(fields []NamedField, opts ...SchemaOption) (*FieldsSchema, error) {
	if len(fields) == 0 {
		return nil, errors.New("fields schema: at least one field is required")
	}

	var o schemaOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &FieldsSchema{
		fields:     make([]NamedField, 0, len(fields)),
		index:      make(map[string]Field, len(fields)),
		readOnly:   make(map[string]bool),
		validators: o.validators,
	}
	for _, nf := range fields {
		if nf.Slug == "" {
			return nil, errors.New("fields schema: field slug must not be empty")
		}
		if nf.Field == nil {
			return nil, fmt.Errorf("fields schema: field %q is nil", nf.Slug)
		}
		if _, dup := s.index[nf.Slug]; dup {
			return nil, fmt.Errorf("fields schema: duplicate field %q", nf.Slug)
		}
		if _, isFn := nf.Field.(*FunctionField); isFn {
			s.readOnly[nf.Slug] = true
		}
		s.fields = append(s.fields, nf)
		s.index[nf.Slug] = nf.Field
	}

	for _, slug := range o.readOnly {
		if _, ok := s.index[slug]; !ok {
			return nil, fmt.Errorf("fields schema: read-only field %q is not declared", slug)
		}
		s.readOnly[slug] = true
	}
	for slug := range o.validators {
		if _, ok := s.index[slug]; !ok {
			return nil, fmt.Errorf("fields schema: validator for undeclared field %q", slug)
		}
	}

	if o.listDisplay == nil {
		s.listDisplay = s.Slugs()
	} else {
		for _, slug := range o.listDisplay {
			if _, ok := s.index[slug]; !ok {
				return nil, fmt.Errorf("fields schema: list_display field %q is not declared", slug)
			}
		}
		s.listDisplay = append([]string(nil), o.listDisplay...)
	}
	return s, nil
}

// MustFieldsSchema is NewFieldsSchema for static definitions; it panics on error.
func MustFieldsSchema(fields []NamedField, opts ...SchemaOption) *FieldsSchema {
	s, err := NewFieldsSchema(fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the fields in declaration order.
func (s *FieldsSchema) Fields() []NamedField {
	return append([]NamedField(nil), s.fields...)
}

// Field returns the field declared under slug.
func (s *FieldsSchema) Field(slug string) (Field, bool) {
	f, ok := s.index[slug]
	return f, ok
}

// Slugs returns the field slugs in declaration order.
func (s *FieldsSchema) Slugs() []string {
	out := make([]string, 0, len(s.fields))
	for _, nf := range s.fields {
		out = append(out, nf.Slug)
	}
	return out
}

// ReadOnly reports whether the field under slug accepts no input, either by
// its own flag or by this schema's options.
func (s *FieldsSchema) ReadOnly(slug string) bool {
	f, ok := s.index[slug]
	if !ok {
		return false
	}
	return s.readOnly[slug] || f.Base().ReadOnly
}

// ListDisplay returns the table-view columns.
func (s *FieldsSchema) ListDisplay() []string {
	return append([]string(nil), s.listDisplay...)
}

// FieldsSchemaData is the wire description of a schema.
type FieldsSchemaData struct {
	Fields      *OrderedMap[FieldSchemaData] `json:"fields"`
	ListDisplay []string                     `json:"list_display"`
}

// GenerateSchema describes every field. It has no side effects.
func (s *FieldsSchema) GenerateSchema(user User, lang *i18n.Manager) FieldsSchemaData {
	fields := NewOrderedMap[FieldSchemaData](len(s.fields))
	for _, nf := range s.fields {
		data := nf.Field.GenerateSchema(user, nf.Slug, lang)
		if s.readOnly[nf.Slug] {
			data.ReadOnly = true
		}
		fields.Set(nf.Slug, data)
	}
	return FieldsSchemaData{Fields: fields, ListDisplay: s.ListDisplay()}
}

// Serialize converts a backend record into wire values, in field order.
// Errors are integration bugs, not user errors.
func (s *FieldsSchema) Serialize(ctx context.Context, record map[string]any, fc FieldContext) (*OrderedMap[any], error) {
	fc.Record = record
	out := NewOrderedMap[any](len(s.fields))
	for _, nf := range s.fields {
		value, err := nf.Field.Serialize(ctx, record[nf.Slug], fc)
		if err != nil {
			return nil, fmt.Errorf("serialize field %q: %w", nf.Slug, err)
		}
		out.Set(nf.Slug, value)
	}
	return out, nil
}

// Deserialize validates input and converts it into backend values.
//
// Read-only fields are skipped. On update, absent keys are skipped. On create
// an absent optional field takes its Default when it has one and is otherwise
// left to the backend. Field errors are collected and returned as a single
// validation error.
func (s *FieldsSchema) Deserialize(ctx context.Context, input map[string]any, action DeserializeAction, fc FieldContext) (*OrderedMap[any], error) {
	out := NewOrderedMap[any](len(s.fields))
	fieldErrors := make(map[string]*FieldError)

	for _, nf := range s.fields {
		if s.ReadOnly(nf.Slug) {
			continue
		}
		base := nf.Field.Base()

		value, present := input[nf.Slug]
		if !present {
			if action == ActionUpdate {
				continue
			}
			if !base.Required {
				if base.Default == nil {
					continue
				}
				value = base.Default
			}
		}

		v, err := nf.Field.Deserialize(ctx, value, action, fc)
		if err == nil {
			if validate, ok := s.validators[nf.Slug]; ok {
				v, err = validate(ctx, v, fc)
			}
		}
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				fieldErrors[nf.Slug] = fe
				continue
			}
			return nil, fmt.Errorf("deserialize field %q: %w", nf.Slug, err)
		}
		out.Set(nf.Slug, v)
	}

	if len(fieldErrors) > 0 {
		return nil, ValidationError(fieldErrors)
	}
	return out, nil
}

// RejectUnknown fails on the first input key (in sorted order) that is not a
// declared field.
func (s *FieldsSchema) RejectUnknown(input map[string]any) error {
	var unknown []string
	for key := range input {
		if _, ok := s.index[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return FieldNotFoundInSchema(unknown[0])
}

func (s *FieldsSchema) describe() string {
	return strings.Join(s.Slugs(), ", ")
}
