package ormbackend

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/Annany2002/nebula-admin/internal/admin"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeExpr(col clause.Column, search string) clause.Expression {
	return clause.Expr{
		SQL:  `CAST(? AS TEXT) LIKE ? ESCAPE '\'`,
		Vars: []any{col, "%" + likeEscaper.Replace(search) + "%"},
	}
}

func column(f *schema.Field) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: f.DBName}
}

// scope turns a list plan into where clauses.
func (s *Source) scope(plan admin.ListPlan) (func(*gorm.DB) *gorm.DB, error) {
	var exprs []clause.Expression
	for _, f := range plan.Filters {
		b, ok := s.filters[f.Field]
		if !ok {
			return nil, fmt.Errorf("ormbackend: filter %q is not bound", f.Field)
		}
		expr, err := filterExpr(b, f)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr...)
	}

	if plan.Search != "" && len(s.spec.SearchFields) > 0 {
		ors := make([]clause.Expression, 0, len(s.spec.SearchFields))
		for _, slug := range s.spec.SearchFields {
			ors = append(ors, likeExpr(column(s.schema.FieldsByDBName[slug]), plan.Search))
		}
		exprs = append(exprs, clause.Or(ors...))
	}

	return func(db *gorm.DB) *gorm.DB {
		for _, e := range exprs {
			db = db.Where(e)
		}
		return db
	}, nil
}

func filterExpr(b binding, f admin.Filter) ([]clause.Expression, error) {
	if b.kind == bindMany {
		values := f.Values
		if f.Op == admin.FilterExact {
			values = []any{f.Value}
		} else if f.Op != admin.FilterIn {
			return nil, fmt.Errorf("ormbackend: filter %q supports only key matches", f.Field)
		}
		return []clause.Expression{manyExists(b.rel, values)}, nil
	}

	col := column(b.field)
	switch f.Op {
	case admin.FilterIn:
		return []clause.Expression{clause.IN{Column: col, Values: f.Values}}, nil
	case admin.FilterContains:
		return []clause.Expression{likeExpr(col, fmt.Sprint(f.Value))}, nil
	case admin.FilterRange:
		var out []clause.Expression
		if f.From != nil {
			out = append(out, clause.Gte{Column: col, Value: *f.From})
		}
		if f.To != nil {
			out = append(out, clause.Lte{Column: col, Value: *f.To})
		}
		return out, nil
	default:
		return []clause.Expression{clause.Eq{Column: col, Value: f.Value}}, nil
	}
}

// manyExists matches owners related to any of keys, through the target's
// foreign key or the join table.
func manyExists(rel *schema.Relationship, keys []any) clause.Expression {
	target := rel.FieldSchema
	if rel.Type == schema.Many2Many {
		join := rel.JoinTable.Table
		var ownerCol, ownerKey, targetCol string
		for _, ref := range rel.References {
			if ref.OwnPrimaryKey {
				ownerCol, ownerKey = ref.ForeignKey.DBName, ref.PrimaryKey.DBName
			} else {
				targetCol = ref.ForeignKey.DBName
			}
		}
		return clause.Expr{
			SQL: "EXISTS (SELECT 1 FROM ? WHERE ? = ? AND ? IN ?)",
			Vars: []any{
				clause.Table{Name: join},
				clause.Column{Table: join, Name: ownerCol},
				clause.Column{Table: clause.CurrentTable, Name: ownerKey},
				clause.Column{Table: join, Name: targetCol},
				keys,
			},
		}
	}

	ref := rel.References[0]
	return clause.Expr{
		SQL: "EXISTS (SELECT 1 FROM ? WHERE ? = ? AND ? IN ?)",
		Vars: []any{
			clause.Table{Name: target.Table},
			clause.Column{Table: target.Table, Name: ref.ForeignKey.DBName},
			clause.Column{Table: clause.CurrentTable, Name: ref.PrimaryKey.DBName},
			clause.Column{Table: target.Table, Name: target.PrioritizedPrimaryField.DBName},
			keys,
		},
	}
}

func (s *Source) order(db *gorm.DB, o *admin.Ordering) *gorm.DB {
	pk := clause.OrderByColumn{Column: column(s.pk)}
	if o == nil {
		return db.Order(pk)
	}
	db = db.Order(clause.OrderByColumn{Column: column(s.schema.FieldsByDBName[o.Field]), Desc: o.Desc})
	if o.Field != s.pk.DBName {
		db = db.Order(pk)
	}
	return db
}
