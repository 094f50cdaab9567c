// internal/sqlbackend/source.go
package sqlbackend

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

type bindingKind int

const (
	bindColumn bindingKind = iota
	bindManyToOne
	bindOneToMany
	bindComputed
)

// binding maps a schema field onto the table.
type binding struct {
	kind     bindingKind
	column   string
	relation Relation
}

// Source serves one table category from a sqlite table described by
// Metadata. A Source is bound to exactly one category.
type Source struct {
	db    *sql.DB
	meta  *Metadata
	table *Table
	pk    Column

	spec    admin.TableSpec
	fields  map[string]binding
	filters map[string]binding
}

// New returns a source for the named table.
func New(db *sql.DB, meta *Metadata, table string) (*Source, error) {
	if db == nil || meta == nil {
		return nil, errors.New("sqlbackend: db and metadata are required")
	}
	t, ok := meta.Table(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	pk, _ := t.PK()
	return &Source{db: db, meta: meta, table: t, pk: pk}, nil
}

// MustNew panics when the table is unknown.
func MustNew(db *sql.DB, meta *Metadata, table string) *Source {
	s, err := New(db, meta, table)
	if err != nil {
		panic(err)
	}
	return s
}

// PKName returns the primary key column.
func (s *Source) PKName() string { return s.pk.Name }

// Table returns the table metadata.
func (s *Source) Table() *Table { return s.table }

// Bind checks every schema, search and ordering name against the table.
func (s *Source) Bind(spec admin.TableSpec) error {
	if s.fields != nil {
		return fmt.Errorf("sqlbackend: source for %q is already bound", s.table.Name)
	}
	if spec.PKName != s.pk.Name {
		return fmt.Errorf("sqlbackend: pk_name %q is not the primary key of %q", spec.PKName, s.table.Name)
	}

	fields, err := s.bindSchema(spec.Schema)
	if err != nil {
		return err
	}
	written := make(map[string]string)
	for _, nf := range spec.Schema.Fields() {
		b := fields[nf.Slug]
		if spec.Schema.ReadOnly(nf.Slug) || (b.kind != bindColumn && b.kind != bindManyToOne) {
			continue
		}
		if other, dup := written[b.column]; dup {
			return fmt.Errorf("sqlbackend: fields %q and %q both write column %s.%s", other, nf.Slug, s.table.Name, b.column)
		}
		written[b.column] = nf.Slug
	}

	for _, slug := range spec.SearchFields {
		if _, ok := s.table.Column(slug); !ok {
			return fmt.Errorf("sqlbackend: search field %q not found in table %q", slug, s.table.Name)
		}
	}
	for _, slug := range spec.OrderingFields {
		if _, ok := s.table.Column(slug); !ok {
			return fmt.Errorf("sqlbackend: ordering field %q not found in table %q", slug, s.table.Name)
		}
	}

	var filters map[string]binding
	if spec.Filters != nil {
		filters, err = s.bindSchema(spec.Filters)
		if err != nil {
			return err
		}
		for slug, b := range filters {
			if b.kind == bindComputed {
				return fmt.Errorf("sqlbackend: filter %q is not a column of %q", slug, s.table.Name)
			}
		}
	}

	s.spec, s.fields, s.filters = spec, fields, filters
	return nil
}

func (s *Source) bindSchema(schema *admin.FieldsSchema) (map[string]binding, error) {
	out := make(map[string]binding)
	for _, nf := range schema.Fields() {
		b, err := s.bind(nf.Slug, nf.Field)
		if err != nil {
			return nil, err
		}
		out[nf.Slug] = b
	}
	return out, nil
}

func (s *Source) bind(slug string, field admin.Field) (binding, error) {
	if rf, ok := field.(*admin.RelatedField); ok {
		rel, err := s.relation(rf, slug)
		if err != nil {
			return binding{}, err
		}
		if rel.Kind == OneToMany {
			return binding{kind: bindOneToMany, relation: rel}, nil
		}
		return binding{kind: bindManyToOne, column: rel.LocalColumn, relation: rel}, nil
	}
	if _, ok := s.table.Column(slug); ok {
		return binding{kind: bindColumn, column: slug}, nil
	}
	if _, ok := field.(*admin.FunctionField); ok {
		return binding{kind: bindComputed}, nil
	}
	return binding{}, fmt.Errorf("sqlbackend: field %q is neither a column nor a relation of %q", slug, s.table.Name)
}

func (s *Source) relation(field *admin.RelatedField, slug string) (Relation, error) {
	var (
		rel Relation
		ok  bool
	)
	if field.RelName != "" {
		rel, ok = s.table.Relation(field.RelName)
	} else if rel, ok = s.table.RelationForColumn(slug); !ok {
		rel, ok = s.table.Relation(slug)
	}
	if !ok {
		return Relation{}, fmt.Errorf("%w: field %q of table %q", ErrRelationNotFound, slug, s.table.Name)
	}
	if field.Many != (rel.Kind == OneToMany) {
		return Relation{}, fmt.Errorf("sqlbackend: field %q: many=%t does not match relation %q", slug, field.Many, rel.Name)
	}
	return rel, nil
}

func (s *Source) isJSONColumn(name string) bool {
	c, ok := s.table.Column(name)
	if !ok {
		return false
	}
	switch c.Declared().Name {
	case "JSON", "JSONB":
		return true
	}
	return false
}

func (s *Source) col(name string) string {
	return quote(s.table.Name) + "." + quote(name)
}

func (s *Source) selectList() string {
	cols := make([]string, 0, len(s.table.Columns))
	for _, c := range s.table.Columns {
		cols = append(cols, s.col(c.Name)+" AS "+quote(c.Name))
	}
	return strings.Join(cols, ", ")
}

func (s *Source) orderBy(o *admin.Ordering) string {
	pk := s.col(s.pk.Name) + " ASC"
	if o == nil {
		return pk
	}
	dir := " ASC"
	if o.Desc {
		dir = " DESC"
	}
	if o.Field == s.pk.Name {
		return s.col(o.Field) + dir
	}
	return s.col(o.Field) + dir + ", " + pk
}

// nativeKey converts a key from a URL or JSON body into the pk column type.
func (s *Source) nativeKey(raw any) (any, bool) {
	text := admin.KeyString(raw)
	if text == "" {
		return nil, false
	}
	if strings.Contains(s.pk.Declared().Name, "INT") {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	return text, true
}

func (s *Source) conditions(plan admin.ListPlan) (*where, error) {
	w := &where{}
	for _, f := range plan.Filters {
		b, ok := s.filters[f.Field]
		if !ok {
			return nil, fmt.Errorf("sqlbackend: filter %q is not bound", f.Field)
		}
		if err := s.applyFilter(w, b, f); err != nil {
			return nil, err
		}
	}

	if plan.Search != "" && len(s.spec.SearchFields) > 0 {
		pattern := likePattern(plan.Search)
		parts := make([]string, 0, len(s.spec.SearchFields))
		for _, slug := range s.spec.SearchFields {
			parts = append(parts, likeClause(s.col(slug)))
			w.args = append(w.args, pattern)
		}
		w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
	}
	return w, nil
}

func (s *Source) applyFilter(w *where, b binding, f admin.Filter) error {
	if b.kind == bindOneToMany {
		values := f.Values
		if f.Op == admin.FilterExact {
			values = []any{f.Value}
		} else if f.Op != admin.FilterIn {
			return fmt.Errorf("sqlbackend: filter %q supports only key matches", f.Field)
		}
		target, _ := s.meta.Table(b.relation.Target)
		targetPK, _ := target.PK()
		w.add(fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s AND %s.%s IN (%s))",
			quote(target.Name),
			quote(target.Name), quote(b.relation.RemoteColumn), s.col(b.relation.LocalColumn),
			quote(target.Name), quote(targetPK.Name), placeholders(len(values))), values...)
		return nil
	}

	col := s.col(b.column)
	switch f.Op {
	case admin.FilterIn:
		args := make([]any, 0, len(f.Values))
		for _, v := range f.Values {
			args = append(args, sqlValue(v))
		}
		w.add(fmt.Sprintf("%s IN (%s)", col, placeholders(len(args))), args...)
	case admin.FilterContains:
		w.add(likeClause(col), likePattern(fmt.Sprint(f.Value)))
	case admin.FilterRange:
		if f.From != nil {
			w.add(col+" >= ?", sqlValue(*f.From))
		}
		if f.To != nil {
			w.add(col+" <= ?", sqlValue(*f.To))
		}
	default:
		w.add(col+" = ?", sqlValue(f.Value))
	}
	return nil
}

// translate turns a driver error into the API error taxonomy and logs it
// with the attempted input.
func (s *Source) translate(code string, err error, fields logrus.Fields) error {
	if apiErr, ok := admin.AsAPIError(err); ok {
		return apiErr
	}
	entry := customLog.WithFields(fields).WithField("table", s.table.Name)

	var sqliteErr sqlite3.Error
	switch {
	case errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		entry.Warnf("SQLBackend: Constraint violation: %v", err)
		return admin.IntegrityError(err)
	case isConnectionError(err):
		entry.Errorf("SQLBackend: Connection error: %v", err)
		return admin.ConnectionRefused(err)
	default:
		entry.Errorf("SQLBackend: %s: %v", code, err)
		return admin.DatabaseError(code, err)
	}
}

func isConnectionError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrCantOpen {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone)
}
