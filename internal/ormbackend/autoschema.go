package ormbackend

import (
	"fmt"
	"reflect"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/core"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

var deletedAtType = reflect.TypeOf(gorm.DeletedAt{})

// AutoFields generates field descriptors for a gorm model. Columns keep
// their column names; belongs-to foreign keys become related fields and
// has-many or many2many relationships become many related fields named
// after the relationship in snake case. Timestamps maintained by gorm are
// read-only and soft-delete columns are skipped.
func AutoFields(db *gorm.DB, model any, only ...string) ([]admin.NamedField, error) {
	sch, err := parseModel(db, model)
	if err != nil {
		return nil, err
	}

	foreignKeys := make(map[string]*schema.Relationship)
	for _, rel := range sch.Relationships.BelongsTo {
		if len(rel.References) == 1 {
			foreignKeys[rel.References[0].ForeignKey.DBName] = rel
		}
	}

	var generated []admin.NamedField
	for _, field := range sch.Fields {
		if field.DBName == "" {
			rel, ok := sch.Relationships.Relations[field.Name]
			if !ok || (rel.Type != schema.HasMany && rel.Type != schema.Many2Many) {
				continue
			}
			slug := db.NamingStrategy.ColumnName("", rel.Name)
			generated = append(generated, admin.F(slug, &admin.RelatedField{
				FieldBase: admin.FieldBase{Label: i18n.Raw(core.HumanizeSlug(slug))},
				Many:      true,
				RelName:   rel.Name,
			}))
			continue
		}
		if field.FieldType == deletedAtType {
			continue
		}

		base := admin.FieldBase{
			Label:    i18n.Raw(core.HumanizeSlug(field.DBName)),
			ReadOnly: field.PrimaryKey || field.AutoCreateTime > 0 || field.AutoUpdateTime > 0,
		}
		base.Required = field.NotNull && !field.HasDefaultValue && !base.ReadOnly

		if rel, ok := foreignKeys[field.DBName]; ok {
			base.Label = i18n.Raw(core.HumanizeSlug(db.NamingStrategy.ColumnName("", rel.Name)))
			generated = append(generated, admin.F(field.DBName, &admin.RelatedField{FieldBase: base, RelName: rel.Name}))
			continue
		}

		f, err := fieldFor(sch, field, base)
		if err != nil {
			return nil, err
		}
		if field.PrimaryKey {
			generated = append([]admin.NamedField{admin.F(field.DBName, f)}, generated...)
		} else {
			generated = append(generated, admin.F(field.DBName, f))
		}
	}

	if len(only) == 0 {
		return generated, nil
	}
	out := make([]admin.NamedField, 0, len(only))
	for _, slug := range only {
		i := slices.IndexFunc(generated, func(nf admin.NamedField) bool { return nf.Slug == slug })
		if i < 0 {
			return nil, fmt.Errorf("model %s has no column or relation %q", sch.Name, slug)
		}
		out = append(out, generated[i])
	}
	return out, nil
}

// AutoSchema is AutoFields wrapped in a FieldsSchema.
func AutoSchema(db *gorm.DB, model any, only []string, opts ...admin.SchemaOption) (*admin.FieldsSchema, error) {
	fields, err := AutoFields(db, model, only...)
	if err != nil {
		return nil, err
	}
	return admin.NewFieldsSchema(fields, opts...)
}

// MustAutoSchema panics when the schema cannot be generated.
func MustAutoSchema(db *gorm.DB, model any, only []string, opts ...admin.SchemaOption) *admin.FieldsSchema {
	s, err := AutoSchema(db, model, only, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func fieldFor(sch *schema.Schema, field *schema.Field, base admin.FieldBase) (admin.Field, error) {
	switch field.DataType {
	case schema.Bool:
		return &admin.BooleanField{FieldBase: base}, nil
	case schema.Int, schema.Uint:
		return &admin.IntegerField{FieldBase: base}, nil
	case schema.Float:
		return &admin.IntegerField{FieldBase: base, InputMode: "decimal", Precision: field.Precision, Scale: field.Scale}, nil
	case schema.String:
		return &admin.StringField{FieldBase: base, MaxLength: field.Size}, nil
	case schema.Time:
		return &admin.DateTimeField{FieldBase: base}, nil
	case "json", "jsonb":
		return &admin.JSONField{FieldBase: base}, nil
	default:
		return nil, fmt.Errorf("model %s field %s: unsupported data type %q", sch.Name, field.Name, field.DataType)
	}
}
