// internal/sqlbackend/autoschema.go
package sqlbackend

import (
	"fmt"
	"slices"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/core"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// AutoFields generates field descriptors from table metadata. The primary
// key comes first and is read-only; foreign keys become related fields
// following their relation; one-to-many relations become many related
// fields named after the relation. With only set, just those slugs are
// generated, in that order.
func AutoFields(t *Table, only ...string) ([]admin.NamedField, error) {
	var generated []admin.NamedField
	pk, _ := t.PK()

	for _, col := range t.Columns {
		field, err := columnField(t, col)
		if err != nil {
			return nil, err
		}
		if field == nil {
			continue
		}
		if col.Name == pk.Name {
			generated = append([]admin.NamedField{admin.F(col.Name, field)}, generated...)
		} else {
			generated = append(generated, admin.F(col.Name, field))
		}
	}
	for _, rel := range t.Relations {
		if rel.Kind != OneToMany {
			continue
		}
		generated = append(generated, admin.F(rel.Name, &admin.RelatedField{
			FieldBase: admin.FieldBase{Label: i18n.Raw(core.HumanizeSlug(rel.Name))},
			Many:      true,
			RelName:   rel.Name,
		}))
	}

	if len(only) == 0 {
		return generated, nil
	}
	out := make([]admin.NamedField, 0, len(only))
	for _, slug := range only {
		i := slices.IndexFunc(generated, func(nf admin.NamedField) bool { return nf.Slug == slug })
		if i < 0 {
			return nil, fmt.Errorf("table %q has no column or relation %q", t.Name, slug)
		}
		out = append(out, generated[i])
	}
	return out, nil
}

// AutoSchema is AutoFields wrapped in a FieldsSchema.
func AutoSchema(t *Table, only []string, opts ...admin.SchemaOption) (*admin.FieldsSchema, error) {
	fields, err := AutoFields(t, only...)
	if err != nil {
		return nil, err
	}
	return admin.NewFieldsSchema(fields, opts...)
}

// MustAutoSchema panics when the schema cannot be generated.
func MustAutoSchema(t *Table, only []string, opts ...admin.SchemaOption) *admin.FieldsSchema {
	s, err := AutoSchema(t, only, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func columnField(t *Table, col Column) (admin.Field, error) {
	base := admin.FieldBase{
		ReadOnly: col.PrimaryKey,
		Required: col.NotNull && !col.HasDefault && col.Default == nil && !col.PrimaryKey,
	}

	if rel, ok := t.RelationForColumn(col.Name); ok {
		base.Label = i18n.Raw(core.HumanizeSlug(rel.Name))
		return &admin.RelatedField{FieldBase: base, RelName: rel.Name}, nil
	}

	dt := col.Declared()
	switch dt.Name {
	case "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT", "UNSIGNED BIG INT":
		return &admin.IntegerField{FieldBase: base}, nil
	case "NUMERIC", "DECIMAL", "REAL", "FLOAT", "DOUBLE", "DOUBLE PRECISION":
		return &admin.IntegerField{FieldBase: base, InputMode: "decimal", Precision: dt.Length, Scale: dt.Scale}, nil
	case "VARCHAR", "CHAR", "NCHAR", "NVARCHAR", "CHARACTER", "VARYING CHARACTER", "NATIVE CHARACTER", "TEXT", "CLOB", "STRING", "UUID":
		f := &admin.StringField{FieldBase: base}
		if dt.HasLength {
			f.MaxLength = dt.Length
		}
		return f, nil
	case "DATETIME", "TIMESTAMP", "DATE":
		return &admin.DateTimeField{FieldBase: base}, nil
	case "BOOLEAN", "BOOL":
		return &admin.BooleanField{FieldBase: base}, nil
	case "JSON", "JSONB":
		return &admin.JSONField{FieldBase: base}, nil
	case "":
		// untyped column
		return nil, nil
	default:
		return nil, fmt.Errorf("table %q column %q: unsupported type %q", t.Name, col.Name, col.Type)
	}
}
