// internal/ormbackend/source.go
package ormbackend

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/logger"
)

var (
	customLog = logger.NewLogger()

	ErrRelationNotFound = errors.New("relation not found")
)

type bindingKind int

const (
	bindColumn bindingKind = iota
	bindBelongsTo
	bindMany
	bindComputed
)

type binding struct {
	kind  bindingKind
	field *schema.Field
	rel   *schema.Relationship
}

// Source serves one table category from a gorm model. A Source is bound to
// exactly one category.
type Source struct {
	db     *gorm.DB
	schema *schema.Schema
	pk     *schema.Field

	spec    admin.TableSpec
	fields  map[string]binding
	filters map[string]binding
}

// New parses model, a pointer to a struct gorm knows how to map.
func New(db *gorm.DB, model any) (*Source, error) {
	sch, err := parseModel(db, model)
	if err != nil {
		return nil, err
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("ormbackend: model %s has no single primary key", sch.Name)
	}
	return &Source{db: db, schema: sch, pk: sch.PrioritizedPrimaryField}, nil
}

// MustNew panics when the model cannot be parsed.
func MustNew(db *gorm.DB, model any) *Source {
	s, err := New(db, model)
	if err != nil {
		panic(err)
	}
	return s
}

func parseModel(db *gorm.DB, model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("ormbackend: parse model %T: %w", model, err)
	}
	return stmt.Schema, nil
}

// PKName returns the primary key column.
func (s *Source) PKName() string { return s.pk.DBName }

// Schema returns the parsed gorm schema.
func (s *Source) Schema() *schema.Schema { return s.schema }

// Bind resolves every schema and filter field to a column or relationship.
func (s *Source) Bind(spec admin.TableSpec) error {
	if s.fields != nil {
		return fmt.Errorf("ormbackend: source for %s is already bound", s.schema.Name)
	}
	if spec.PKName != s.pk.DBName {
		return fmt.Errorf("ormbackend: pk_name %q is not the primary key of %s", spec.PKName, s.schema.Name)
	}

	fields, err := s.bindSchema(spec.Schema)
	if err != nil {
		return err
	}
	for _, slug := range append(append([]string{}, spec.SearchFields...), spec.OrderingFields...) {
		if _, ok := s.schema.FieldsByDBName[slug]; !ok {
			return fmt.Errorf("ormbackend: field %q is not a column of %s", slug, s.schema.Name)
		}
	}

	var filters map[string]binding
	if spec.Filters != nil {
		if filters, err = s.bindSchema(spec.Filters); err != nil {
			return err
		}
		for slug, b := range filters {
			if b.kind == bindComputed {
				return fmt.Errorf("ormbackend: filter %q is not a column of %s", slug, s.schema.Name)
			}
		}
	}

	s.spec, s.fields, s.filters = spec, fields, filters
	return nil
}

func (s *Source) bindSchema(fs *admin.FieldsSchema) (map[string]binding, error) {
	out := make(map[string]binding)
	for _, nf := range fs.Fields() {
		if rf, ok := nf.Field.(*admin.RelatedField); ok {
			rel, err := s.relationship(rf, nf.Slug)
			if err != nil {
				return nil, err
			}
			if rel.Type == schema.BelongsTo {
				out[nf.Slug] = binding{kind: bindBelongsTo, field: rel.References[0].ForeignKey, rel: rel}
			} else {
				out[nf.Slug] = binding{kind: bindMany, rel: rel}
			}
			continue
		}
		if field, ok := s.schema.FieldsByDBName[nf.Slug]; ok {
			out[nf.Slug] = binding{kind: bindColumn, field: field}
			continue
		}
		if _, ok := nf.Field.(*admin.FunctionField); ok {
			out[nf.Slug] = binding{kind: bindComputed}
			continue
		}
		return nil, fmt.Errorf("ormbackend: field %q is neither a column nor a relation of %s", nf.Slug, s.schema.Name)
	}
	return out, nil
}

// relationship finds the gorm relationship a related field follows: by
// RelName (Go or snake case), else by foreign key column, else by slug.
func (s *Source) relationship(field *admin.RelatedField, slug string) (*schema.Relationship, error) {
	var found *schema.Relationship
	if field.RelName != "" {
		found = s.relationByName(field.RelName)
	} else {
		for _, rel := range s.schema.Relationships.BelongsTo {
			if len(rel.References) > 0 && rel.References[0].ForeignKey.DBName == slug {
				found = rel
				break
			}
		}
		if found == nil {
			found = s.relationByName(slug)
		}
	}
	if found == nil || found.Polymorphic != nil {
		return nil, fmt.Errorf("%w: field %q of %s", ErrRelationNotFound, slug, s.schema.Name)
	}

	switch found.Type {
	case schema.BelongsTo:
		if field.Many {
			return nil, fmt.Errorf("ormbackend: field %q: belongs-to relation %s cannot be many", slug, found.Name)
		}
	case schema.HasMany, schema.Many2Many:
		if !field.Many {
			return nil, fmt.Errorf("ormbackend: field %q: relation %s needs many", slug, found.Name)
		}
	default:
		return nil, fmt.Errorf("ormbackend: field %q: unsupported relation type %s", slug, found.Type)
	}
	return found, nil
}

func (s *Source) relationByName(name string) *schema.Relationship {
	if rel, ok := s.schema.Relationships.Relations[name]; ok {
		return rel
	}
	for goName, rel := range s.schema.Relationships.Relations {
		if s.db.NamingStrategy.ColumnName("", goName) == name {
			return rel
		}
	}
	return nil
}

// targetKey is the target field related records are keyed by.
func targetKey(rel *schema.Relationship) *schema.Field {
	if rel.Type == schema.BelongsTo {
		return rel.References[0].PrimaryKey
	}
	return rel.FieldSchema.PrioritizedPrimaryField
}

// titleField is the column searched and shown for records of sch.
func titleField(sch *schema.Schema) *schema.Field {
	for _, name := range []string{"title", "name", "username"} {
		if f, ok := sch.FieldsByDBName[name]; ok {
			return f
		}
	}
	return sch.PrioritizedPrimaryField
}

// recordOf renders a model value as a {key, title} pair. Models implementing
// fmt.Stringer choose their own title.
func recordOf(ctx context.Context, sch *schema.Schema, key *schema.Field, rv reflect.Value) admin.Record {
	rv = reflect.Indirect(rv)
	k, _ := key.ValueOf(ctx, rv)
	k = plainValue(k)

	if rv.CanAddr() {
		if st, ok := rv.Addr().Interface().(fmt.Stringer); ok {
			return admin.Record{Key: k, Title: st.String()}
		}
	}
	if st, ok := rv.Interface().(fmt.Stringer); ok {
		return admin.Record{Key: k, Title: st.String()}
	}
	title, _ := titleField(sch).ValueOf(ctx, rv)
	return admin.Record{Key: k, Title: admin.KeyString(plainValue(title))}
}

// plainValue unwraps pointers and driver valuers into values the field
// descriptors understand.
func plainValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case datatypes.JSON:
		if len(x) == 0 {
			return nil
		}
		return string(x)
	case gorm.DeletedAt:
		if !x.Valid {
			return nil
		}
		return x.Time
	case driver.Valuer:
		value, err := x.Value()
		if err != nil {
			return nil
		}
		return value
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return plainValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	}
	return v
}

// columnValue prepares a deserialized value for field.Set.
func columnValue(field *schema.Field, v any) (any, error) {
	if field.DataType == "json" || field.DataType == "jsonb" {
		if v == nil {
			return nil, nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
	switch x := v.(type) {
	case map[string]any, []any:
		raw, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
	return v, nil
}

// translate maps gorm and driver failures onto the API error taxonomy.
func (s *Source) translate(code string, err error, fields logrus.Fields) error {
	if apiErr, ok := admin.AsAPIError(err); ok {
		return apiErr
	}
	entry := customLog.WithFields(fields).WithField("model", s.schema.Name)

	var sqliteErr sqlite3.Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		entry.Warnf("ORMBackend: Constraint violation: %v", err)
		return admin.IntegrityError(err)
	case errors.Is(err, driver.ErrBadConn), strings.Contains(err.Error(), "connection refused"):
		entry.Errorf("ORMBackend: Connection error: %v", err)
		return admin.ConnectionRefused(err)
	default:
		entry.Errorf("ORMBackend: %s: %v", code, err)
		return admin.DatabaseError(code, err)
	}
}
