// internal/sqlbackend/metadata.go
package sqlbackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/Annany2002/nebula-admin/internal/core"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrInvalidMetadata  = errors.New("invalid table metadata")
	ErrRelationNotFound = errors.New("relation not found")
)

// Column describes one table column.
type Column struct {
	Name       string
	Type       string // declared sqlite type, e.g. VARCHAR(255)
	NotNull    bool
	HasDefault bool
	PrimaryKey bool
	// Default, when set, computes a value for inserts that do not supply one.
	Default func() any
}

// Declared parses the column's declared type.
func (c Column) Declared() core.DeclaredType {
	dt, _ := core.ParseDeclaredType(c.Type)
	return dt
}

// RelationKind is the cardinality of a relation as seen from its owner.
type RelationKind int

const (
	ManyToOne RelationKind = iota
	OneToMany
)

// Relation links a table to another one through a foreign key.
//
// For ManyToOne, LocalColumn is the foreign key on the owner and RemoteColumn
// the referenced column on Target. For OneToMany, LocalColumn is the
// referenced column on the owner and RemoteColumn the foreign key on Target.
type Relation struct {
	Name         string
	Kind         RelationKind
	Target       string
	LocalColumn  string
	RemoteColumn string
}

// Table is the metadata of one table.
type Table struct {
	Name      string
	Columns   []Column
	Relations []Relation
	// TitleColumn renders records of this table as related choices. Defaults
	// to title, name or username when present, else the primary key.
	TitleColumn string
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PK returns the first primary-key column.
func (t *Table) PK() (Column, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Relation returns the named relation.
func (t *Table) Relation(name string) (Relation, bool) {
	for _, r := range t.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// RelationForColumn returns the many-to-one relation whose foreign key is column.
func (t *Table) RelationForColumn(column string) (Relation, bool) {
	for _, r := range t.Relations {
		if r.Kind == ManyToOne && r.LocalColumn == column {
			return r, true
		}
	}
	return Relation{}, false
}

// SetDefault registers an insert-time default for column.
func (t *Table) SetDefault(column string, fn func() any) error {
	for i := range t.Columns {
		if t.Columns[i].Name == column {
			t.Columns[i].Default = fn
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s", ErrInvalidMetadata, t.Name, column)
}

func (t *Table) titleColumn() string {
	if t.TitleColumn != "" {
		return t.TitleColumn
	}
	for _, name := range []string{"title", "name", "username"} {
		if _, ok := t.Column(name); ok {
			return name
		}
	}
	pk, _ := t.PK()
	return pk.Name
}

func (t *Table) validate() error {
	if !core.IsValidIdentifier(t.Name) {
		return fmt.Errorf("%w: table name %q", ErrInvalidMetadata, t.Name)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: table %q has no columns", ErrInvalidMetadata, t.Name)
	}
	if _, ok := t.PK(); !ok {
		return fmt.Errorf("%w: table %q has no primary key", ErrInvalidMetadata, t.Name)
	}
	for _, c := range t.Columns {
		if !core.IsValidIdentifier(c.Name) {
			return fmt.Errorf("%w: column %q of table %q", ErrInvalidMetadata, c.Name, t.Name)
		}
	}
	if tc := t.TitleColumn; tc != "" {
		if _, ok := t.Column(tc); !ok {
			return fmt.Errorf("%w: title column %q of table %q", ErrInvalidMetadata, tc, t.Name)
		}
	}
	return nil
}

// Metadata is a set of tables with their relations resolved.
type Metadata struct {
	tables map[string]*Table
	order  []string
}

// NewMetadata validates declared tables and their relations.
func NewMetadata(tables ...*Table) (*Metadata, error) {
	m := &Metadata{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, dup := m.tables[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate table %q", ErrInvalidMetadata, t.Name)
		}
		m.tables[t.Name] = t
		m.order = append(m.order, t.Name)
	}

	for _, t := range tables {
		for _, r := range t.Relations {
			target, ok := m.tables[r.Target]
			if !ok {
				return nil, fmt.Errorf("%w: relation %s.%s targets unknown table %q", ErrInvalidMetadata, t.Name, r.Name, r.Target)
			}
			owner, remote := t, target
			if _, ok := owner.Column(r.LocalColumn); !ok {
				return nil, fmt.Errorf("%w: relation %s.%s: no column %q", ErrInvalidMetadata, t.Name, r.Name, r.LocalColumn)
			}
			if _, ok := remote.Column(r.RemoteColumn); !ok {
				return nil, fmt.Errorf("%w: relation %s.%s: no column %s.%s", ErrInvalidMetadata, t.Name, r.Name, r.Target, r.RemoteColumn)
			}
		}
	}
	return m, nil
}

// Table returns the named table.
func (m *Metadata) Table(name string) (*Table, bool) {
	t, ok := m.tables[name]
	return t, ok
}

// Tables returns all tables in declaration order.
func (m *Metadata) Tables() []*Table {
	out := make([]*Table, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.tables[name])
	}
	return out
}

// Reflect reads every user table of a sqlite database. Foreign keys become a
// many-to-one relation named after the column without its "_id" suffix and a
// one-to-many backref on the referenced table named after the plural of the
// referencing table.
func Reflect(ctx context.Context, db *sql.DB) (*Metadata, error) {
	names, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, len(names))
	byName := make(map[string]*Table, len(names))
	for _, name := range names {
		if !core.IsValidIdentifier(name) {
			customLog.Warnf("SQLBackend: Skipping table with unsupported name %q", name)
			continue
		}
		t, err := tableInfo(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		byName[name] = t
	}

	for _, t := range tables {
		fks, err := foreignKeys(ctx, db, t.Name)
		if err != nil {
			return nil, err
		}
		for _, fk := range fks {
			target, ok := byName[fk.table]
			if !ok {
				continue
			}
			remote := fk.to
			if remote == "" {
				pk, _ := target.PK()
				remote = pk.Name
			}
			t.Relations = append(t.Relations, Relation{
				Name:         manyToOneName(t, fk.from),
				Kind:         ManyToOne,
				Target:       target.Name,
				LocalColumn:  fk.from,
				RemoteColumn: remote,
			})
			target.Relations = append(target.Relations, Relation{
				Name:         oneToManyName(target, t.Name),
				Kind:         OneToMany,
				Target:       t.Name,
				LocalColumn:  remote,
				RemoteColumn: fk.from,
			})
		}
	}
	return NewMetadata(tables...)
}

func manyToOneName(t *Table, column string) string {
	name := strings.TrimSuffix(column, "_id")
	if name == column || name == "" {
		name = column + "_rel"
	}
	if _, clash := t.Column(name); clash {
		name += "_rel"
	}
	return name
}

func oneToManyName(t *Table, child string) string {
	name := inflection.Plural(child)
	if _, clash := t.Relation(name); clash {
		name = child + "_set"
	}
	return name
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name;`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		customLog.Errorf("SQLBackend: Error listing tables: %v", err)
		return nil, fmt.Errorf("database error listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed processing table list: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading table list: %w", err)
	}
	return names, nil
}

func tableInfo(ctx context.Context, db *sql.DB, name string) (*Table, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", quote(name)))
	if err != nil {
		customLog.Errorf("SQLBackend: Failed PRAGMA table_info for '%s': %v", name, err)
		return nil, fmt.Errorf("failed to retrieve schema of %q: %w", name, err)
	}
	defer rows.Close()

	t := &Table{Name: name}
	for rows.Next() {
		var (
			cid       int
			colName   string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to parse schema of %q: %w", name, err)
		}
		t.Columns = append(t.Columns, Column{
			Name:       colName,
			Type:       colType,
			NotNull:    notNull != 0,
			HasDefault: dfltValue.Valid,
			PrimaryKey: pk > 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schema of %q: %w", name, err)
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

type foreignKey struct {
	table string
	from  string
	to    string
}

func foreignKeys(ctx context.Context, db *sql.DB, name string) ([]foreignKey, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s);", quote(name)))
	if err != nil {
		customLog.Errorf("SQLBackend: Failed PRAGMA foreign_key_list for '%s': %v", name, err)
		return nil, fmt.Errorf("failed to retrieve foreign keys of %q: %w", name, err)
	}
	defer rows.Close()

	var fks []foreignKey
	for rows.Next() {
		var (
			id, seq                   int
			table, from               string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("failed to parse foreign keys of %q: %w", name, err)
		}
		// only the first column of a composite key becomes a relation
		if seq > 0 {
			continue
		}
		fks = append(fks, foreignKey{table: table, from: from, to: to.String})
	}
	return fks, rows.Err()
}

func quote(ident string) string {
	return `"` + ident + `"`
}
