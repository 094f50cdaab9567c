package sqlbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

type assignment struct {
	column string
	value  any
}

type pendingMany struct {
	slug     string
	relation Relation
	keys     []any
}

// List counts the filtered rows and returns the requested page. Both
// statements run in one transaction so the total matches the page.
func (s *Source) List(ctx context.Context, plan admin.ListPlan, fc admin.FieldContext) (admin.TableListResult, error) {
	logFields := logrus.Fields{"page": plan.Page, "limit": plan.Limit, "search": plan.Search}

	w, err := s.conditions(plan)
	if err != nil {
		return admin.TableListResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return admin.TableListResult{}, s.translate(admin.CodeDBErrorList, err, logFields)
	}
	defer tx.Rollback()

	var total int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", quote(s.table.Name), w.sql())
	if err := tx.QueryRowContext(ctx, countSQL, w.args...).Scan(&total); err != nil {
		return admin.TableListResult{}, s.translate(admin.CodeDBErrorList, err, logFields)
	}

	pageSQL := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT ? OFFSET ?",
		s.selectList(), quote(s.table.Name), w.sql(), s.orderBy(plan.Ordering))
	args := append(append([]any{}, w.args...), plan.Limit, plan.Offset)
	rows, err := queryRows(ctx, tx, pageSQL, args...)
	if err != nil {
		return admin.TableListResult{}, s.translate(admin.CodeDBErrorList, err, logFields)
	}
	if err := s.loadRelations(ctx, tx, rows); err != nil {
		return admin.TableListResult{}, s.translate(admin.CodeDBErrorList, err, logFields)
	}

	data := make([]*admin.OrderedMap[any], 0, len(rows))
	for _, row := range rows {
		item, err := s.spec.Schema.Serialize(ctx, row, fc)
		if err != nil {
			return admin.TableListResult{}, err
		}
		data = append(data, item)
	}
	return admin.TableListResult{Data: data, TotalCount: total}, nil
}

// Retrieve loads one row with its relations resolved.
func (s *Source) Retrieve(ctx context.Context, pk string, fc admin.FieldContext) (admin.RetrieveResult, error) {
	key, ok := s.nativeKey(pk)
	if !ok {
		return admin.RetrieveResult{}, admin.RecordNotFound(s.pk.Name, pk)
	}
	logFields := logrus.Fields{"pk": pk}

	row, err := s.fetchRow(ctx, s.db, key)
	if err != nil {
		return admin.RetrieveResult{}, s.translate(admin.CodeDBErrorRetrieve, err, logFields)
	}
	if row == nil {
		return admin.RetrieveResult{}, admin.RecordNotFound(s.pk.Name, pk)
	}
	if err := s.loadRelations(ctx, s.db, []map[string]any{row}); err != nil {
		return admin.RetrieveResult{}, s.translate(admin.CodeDBErrorRetrieve, err, logFields)
	}

	data, err := s.spec.Schema.Serialize(ctx, row, fc)
	if err != nil {
		return admin.RetrieveResult{}, err
	}
	return admin.RetrieveResult{Data: data}, nil
}

// Create validates input, checks every related key and inserts the row.
// One-to-many fields are applied after the insert in the same transaction.
func (s *Source) Create(ctx context.Context, input map[string]any, fc admin.FieldContext) (admin.CreateResult, error) {
	values, err := s.spec.Schema.Deserialize(ctx, input, admin.ActionCreate, fc)
	if err != nil {
		return admin.CreateResult{}, err
	}
	logFields := logrus.Fields{"input": input}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return admin.CreateResult{}, s.translate(admin.CodeDBErrorCreate, err, logFields)
	}
	defer tx.Rollback()

	set, many, err := s.assign(ctx, tx, values)
	if err != nil {
		return admin.CreateResult{}, s.translate(admin.CodeDBErrorCreate, err, logFields)
	}
	for _, c := range s.table.Columns {
		if c.Default == nil || hasColumn(set, c.Name) {
			continue
		}
		set = append(set, assignment{column: c.Name, value: sqlValue(c.Default())})
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quote(s.table.Name))
	args := make([]any, 0, len(set))
	if len(set) > 0 {
		cols := make([]string, 0, len(set))
		for _, a := range set {
			cols = append(cols, quote(a.column))
			args = append(args, a.value)
		}
		insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quote(s.table.Name), strings.Join(cols, ", "), placeholders(len(cols)))
	}

	res, err := tx.ExecContext(ctx, insertSQL, args...)
	if err != nil {
		return admin.CreateResult{}, s.translate(admin.CodeDBErrorCreate, err, logFields)
	}

	var pk any
	for _, a := range set {
		if a.column == s.pk.Name {
			pk = a.value
		}
	}
	if pk == nil {
		id, err := res.LastInsertId()
		if err != nil {
			return admin.CreateResult{}, s.translate(admin.CodeDBErrorCreate, err, logFields)
		}
		pk = id
	}

	if err := s.applyMany(ctx, tx, pk, many); err != nil {
		return admin.CreateResult{}, s.translate(admin.CodeDBErrorCreate, err, logFields)
	}
	if err := tx.Commit(); err != nil {
		return admin.CreateResult{}, s.translate(admin.CodeDBErrorCreate, err, logFields)
	}

	customLog.WithFields(logrus.Fields{"table": s.table.Name, "pk": pk}).Info("SQLBackend: Record created")
	return admin.CreateResult{PK: pk}, nil
}

// Update applies a partial update. Keys outside the schema are rejected.
func (s *Source) Update(ctx context.Context, pk string, input map[string]any, fc admin.FieldContext) (admin.UpdateResult, error) {
	key, ok := s.nativeKey(pk)
	if !ok {
		return admin.UpdateResult{}, admin.RecordNotFound(s.pk.Name, pk)
	}
	logFields := logrus.Fields{"pk": pk, "input": input}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return admin.UpdateResult{}, s.translate(admin.CodeDBErrorUpdate, err, logFields)
	}
	defer tx.Rollback()

	row, err := s.fetchRow(ctx, tx, key)
	if err != nil {
		return admin.UpdateResult{}, s.translate(admin.CodeDBErrorUpdate, err, logFields)
	}
	if row == nil {
		return admin.UpdateResult{}, admin.RecordNotFound(s.pk.Name, pk)
	}
	fc.Record = row

	if err := s.spec.Schema.RejectUnknown(input); err != nil {
		return admin.UpdateResult{}, err
	}
	values, err := s.spec.Schema.Deserialize(ctx, input, admin.ActionUpdate, fc)
	if err != nil {
		return admin.UpdateResult{}, err
	}

	set, many, err := s.assign(ctx, tx, values)
	if err != nil {
		return admin.UpdateResult{}, s.translate(admin.CodeDBErrorUpdate, err, logFields)
	}
	if len(set) > 0 {
		cols := make([]string, 0, len(set))
		args := make([]any, 0, len(set)+1)
		for _, a := range set {
			cols = append(cols, quote(a.column)+" = ?")
			args = append(args, a.value)
		}
		args = append(args, key)
		updateSQL := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			quote(s.table.Name), strings.Join(cols, ", "), quote(s.pk.Name))
		if _, err := tx.ExecContext(ctx, updateSQL, args...); err != nil {
			return admin.UpdateResult{}, s.translate(admin.CodeDBErrorUpdate, err, logFields)
		}
	}

	if err := s.applyMany(ctx, tx, key, many); err != nil {
		return admin.UpdateResult{}, s.translate(admin.CodeDBErrorUpdate, err, logFields)
	}
	if err := tx.Commit(); err != nil {
		return admin.UpdateResult{}, s.translate(admin.CodeDBErrorUpdate, err, logFields)
	}
	return admin.UpdateResult{PK: key}, nil
}

func hasColumn(set []assignment, column string) bool {
	for _, a := range set {
		if a.column == column {
			return true
		}
	}
	return false
}

// fetchRow returns nil without error when no row matches.
func (s *Source) fetchRow(ctx context.Context, q querier, key any) (map[string]any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		s.selectList(), quote(s.table.Name), s.col(s.pk.Name))
	rows, err := queryRows(ctx, q, query, key)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// assign maps deserialized values onto columns. Related keys are verified
// here so a dangling key is reported as related_not_found rather than as a
// constraint failure.
func (s *Source) assign(ctx context.Context, q querier, values *admin.OrderedMap[any]) ([]assignment, []pendingMany, error) {
	var (
		set  []assignment
		many []pendingMany
	)
	for _, slug := range values.Keys() {
		v, _ := values.Get(slug)
		b := s.fields[slug]
		switch b.kind {
		case bindColumn:
			value := sqlValue(v)
			if s.isJSONColumn(b.column) {
				var err error
				if value, err = jsonValue(v); err != nil {
					return nil, nil, admin.ValidationError(map[string]*admin.FieldError{
						slug: admin.NewFieldError(admin.CodeInvalidType, i18n.Raw(err.Error())),
					})
				}
			}
			set = append(set, assignment{column: b.column, value: value})
		case bindManyToOne:
			if v != nil {
				if err := s.ensureRelated(ctx, q, slug, b.relation, []any{v}); err != nil {
					return nil, nil, err
				}
			}
			set = append(set, assignment{column: b.column, value: v})
		case bindOneToMany:
			keys, _ := v.([]any)
			if err := s.ensureRelated(ctx, q, slug, b.relation, keys); err != nil {
				return nil, nil, err
			}
			many = append(many, pendingMany{slug: slug, relation: b.relation, keys: keys})
		}
	}
	return set, many, nil
}

func (s *Source) ensureRelated(ctx context.Context, q querier, slug string, rel Relation, keys []any) error {
	if len(keys) == 0 {
		return nil
	}
	target, keyColumn := s.relationKeyColumn(rel)
	found, err := s.fetchRecords(ctx, q, target, keyColumn, keys)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !containsRecord(found, key) {
			return admin.RelatedNotFound(slug, key)
		}
	}
	return nil
}

// relationKeyColumn returns the target table and the column its records are
// keyed by from this side of the relation.
func (s *Source) relationKeyColumn(rel Relation) (*Table, string) {
	target, _ := s.meta.Table(rel.Target)
	if rel.Kind == ManyToOne {
		return target, rel.RemoteColumn
	}
	pk, _ := target.PK()
	return target, pk.Name
}

func containsRecord(records []admin.Record, key any) bool {
	want := admin.KeyString(key)
	for _, r := range records {
		if admin.KeyString(r.Key) == want {
			return true
		}
	}
	return false
}

// applyMany makes keys the exact set of children pointing at the owner.
// Children dropped from the set get their foreign key cleared.
func (s *Source) applyMany(ctx context.Context, q querier, pk any, many []pendingMany) error {
	for _, p := range many {
		owner := pk
		if p.relation.LocalColumn != s.pk.Name {
			row, err := s.fetchRow(ctx, q, pk)
			if err != nil {
				return err
			}
			if row == nil {
				return errors.New("owner row vanished")
			}
			owner = row[p.relation.LocalColumn]
		}

		target, _ := s.meta.Table(p.relation.Target)
		targetPK, _ := target.PK()
		fk := quote(p.relation.RemoteColumn)

		detach := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = ?", quote(target.Name), fk, fk)
		args := []any{owner}
		if len(p.keys) > 0 {
			detach += fmt.Sprintf(" AND %s NOT IN (%s)", quote(targetPK.Name), placeholders(len(p.keys)))
			args = append(args, p.keys...)
		}
		if _, err := q.ExecContext(ctx, detach, args...); err != nil {
			return err
		}
		if len(p.keys) == 0 {
			continue
		}

		attach := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s IN (%s)",
			quote(target.Name), fk, quote(targetPK.Name), placeholders(len(p.keys)))
		if _, err := q.ExecContext(ctx, attach, append([]any{owner}, p.keys...)...); err != nil {
			return err
		}
	}
	return nil
}

// loadRelations replaces foreign keys with {key, title} records and attaches
// one-to-many children, batching one query per relation.
func (s *Source) loadRelations(ctx context.Context, q querier, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	for _, nf := range s.spec.Schema.Fields() {
		b := s.fields[nf.Slug]
		var err error
		switch b.kind {
		case bindManyToOne:
			err = s.loadManyToOne(ctx, q, rows, nf.Slug, b.relation)
		case bindOneToMany:
			err = s.loadOneToMany(ctx, q, rows, nf.Slug, b.relation)
		}
		if err != nil {
			return fmt.Errorf("load relation %q: %w", nf.Slug, err)
		}
	}
	return nil
}

func (s *Source) loadManyToOne(ctx context.Context, q querier, rows []map[string]any, slug string, rel Relation) error {
	fks := make([]any, len(rows))
	var keys []any
	seen := make(map[string]bool)
	for i, row := range rows {
		fk := row[rel.LocalColumn]
		if r, ok := fk.(admin.Record); ok {
			fk = r.Key
		}
		fks[i] = fk
		if fk == nil || seen[admin.KeyString(fk)] {
			continue
		}
		seen[admin.KeyString(fk)] = true
		keys = append(keys, fk)
	}

	byKey := make(map[string]admin.Record)
	if len(keys) > 0 {
		target, _ := s.meta.Table(rel.Target)
		records, err := s.fetchRecords(ctx, q, target, rel.RemoteColumn, keys)
		if err != nil {
			return err
		}
		for _, r := range records {
			byKey[admin.KeyString(r.Key)] = r
		}
	}

	for i, row := range rows {
		fk := fks[i]
		switch r, ok := byKey[admin.KeyString(fk)]; {
		case fk == nil:
			row[slug] = nil
		case ok:
			row[slug] = r
		default:
			row[slug] = admin.Record{Key: fk, Title: admin.KeyString(fk)}
		}
	}
	return nil
}

func (s *Source) loadOneToMany(ctx context.Context, q querier, rows []map[string]any, slug string, rel Relation) error {
	var owners []any
	for _, row := range rows {
		if v := row[rel.LocalColumn]; v != nil {
			owners = append(owners, v)
		}
	}

	children := make(map[string][]admin.Record)
	if len(owners) > 0 {
		target, _ := s.meta.Table(rel.Target)
		pk, _ := target.PK()
		query := fmt.Sprintf(`SELECT %s AS "owner", %s AS "key", %s AS "title" FROM %s WHERE %s IN (%s) ORDER BY %s`,
			quote(rel.RemoteColumn), quote(pk.Name), quote(target.titleColumn()), quote(target.Name),
			quote(rel.RemoteColumn), placeholders(len(owners)), quote(pk.Name))
		found, err := queryRows(ctx, q, query, owners...)
		if err != nil {
			return err
		}
		for _, c := range found {
			owner := admin.KeyString(c["owner"])
			children[owner] = append(children[owner], admin.Record{Key: c["key"], Title: titleString(c["title"])})
		}
	}

	for _, row := range rows {
		records := children[admin.KeyString(row[rel.LocalColumn])]
		if records == nil {
			records = []admin.Record{}
		}
		row[slug] = records
	}
	return nil
}

// fetchRecords loads {key, title} pairs of target for the given keys, in key order.
func (s *Source) fetchRecords(ctx context.Context, q querier, target *Table, keyColumn string, keys []any) ([]admin.Record, error) {
	query := fmt.Sprintf(`SELECT %s AS "key", %s AS "title" FROM %s WHERE %s IN (%s) ORDER BY %s`,
		quote(keyColumn), quote(target.titleColumn()), quote(target.Name),
		quote(keyColumn), placeholders(len(keys)), quote(keyColumn))
	rows, err := queryRows(ctx, q, query, keys...)
	if err != nil {
		return nil, err
	}
	records := make([]admin.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, admin.Record{Key: row["key"], Title: titleString(row["title"])})
	}
	return records, nil
}
