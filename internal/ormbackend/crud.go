package ormbackend

import (
	"context"
	"errors"
	"reflect"
	"strconv"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/Annany2002/nebula-admin/internal/admin"
)

type pendingMany struct {
	rel     *schema.Relationship
	targets reflect.Value
}

func (s *Source) newModel() reflect.Value {
	return reflect.New(s.schema.ModelType)
}

func newSlice(sch *schema.Schema) reflect.Value {
	return reflect.New(reflect.SliceOf(sch.ModelType))
}

func (s *Source) nativeKey(raw any) (any, bool) {
	text := admin.KeyString(raw)
	if text == "" {
		return nil, false
	}
	switch s.pk.DataType {
	case schema.Int, schema.Uint:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	return text, true
}

// preload loads every relationship the table schema shows. Many
// relationships come back in primary key order.
func (s *Source) preload(db *gorm.DB) *gorm.DB {
	for _, nf := range s.spec.Schema.Fields() {
		b := s.fields[nf.Slug]
		switch b.kind {
		case bindBelongsTo:
			db = db.Preload(b.rel.Name)
		case bindMany:
			pk := b.rel.FieldSchema.PrioritizedPrimaryField
			db = db.Preload(b.rel.Name, func(db *gorm.DB) *gorm.DB {
				return db.Order(clause.OrderByColumn{Column: column(pk)})
			})
		}
	}
	return db
}

// row flattens a model into the slug-keyed record the schema serializes.
func (s *Source) row(ctx context.Context, rv reflect.Value) map[string]any {
	row := make(map[string]any, len(s.fields))
	for slug, b := range s.fields {
		switch b.kind {
		case bindColumn:
			v, _ := b.field.ValueOf(ctx, rv)
			row[slug] = plainValue(v)
		case bindBelongsTo:
			row[slug] = belongsTo(ctx, rv, b)
		case bindMany:
			row[slug] = manyRecords(ctx, rv, b.rel)
		}
	}
	return row
}

func belongsTo(ctx context.Context, rv reflect.Value, b binding) any {
	fk, _ := b.field.ValueOf(ctx, rv)
	fk = plainValue(fk)
	if fk == nil {
		return nil
	}

	related := reflect.Indirect(b.rel.Field.ReflectValueOf(ctx, rv))
	if related.IsValid() {
		key := targetKey(b.rel)
		if _, zero := key.ValueOf(ctx, related); !zero {
			return recordOf(ctx, b.rel.FieldSchema, key, related)
		}
	}
	return admin.Record{Key: fk, Title: admin.KeyString(fk)}
}

func manyRecords(ctx context.Context, rv reflect.Value, rel *schema.Relationship) []admin.Record {
	items := reflect.Indirect(rel.Field.ReflectValueOf(ctx, rv))
	records := make([]admin.Record, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		records = append(records, recordOf(ctx, rel.FieldSchema, targetKey(rel), items.Index(i)))
	}
	return records
}

func (s *Source) serialize(ctx context.Context, rv reflect.Value, fc admin.FieldContext) (*admin.OrderedMap[any], error) {
	fc.Model = rv.Addr().Interface()
	return s.spec.Schema.Serialize(ctx, s.row(ctx, rv), fc)
}

// List counts the filtered rows and loads the requested page in one
// transaction.
func (s *Source) List(ctx context.Context, plan admin.ListPlan, fc admin.FieldContext) (admin.TableListResult, error) {
	scope, err := s.scope(plan)
	if err != nil {
		return admin.TableListResult{}, err
	}

	var total int64
	dest := newSlice(s.schema)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(s.newModel().Interface()).Scopes(scope).Count(&total).Error; err != nil {
			return err
		}
		q := s.order(s.preload(tx.Scopes(scope)), plan.Ordering)
		return q.Limit(plan.Limit).Offset(plan.Offset).Find(dest.Interface()).Error
	})
	if err != nil {
		return admin.TableListResult{}, s.translate(admin.CodeDBErrorList, err,
			logrus.Fields{"page": plan.Page, "limit": plan.Limit, "search": plan.Search})
	}

	items := dest.Elem()
	data := make([]*admin.OrderedMap[any], 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		item, err := s.serialize(ctx, items.Index(i), fc)
		if err != nil {
			return admin.TableListResult{}, err
		}
		data = append(data, item)
	}
	return admin.TableListResult{Data: data, TotalCount: total}, nil
}

// Retrieve loads one model with its relationships.
func (s *Source) Retrieve(ctx context.Context, pk string, fc admin.FieldContext) (admin.RetrieveResult, error) {
	key, ok := s.nativeKey(pk)
	if !ok {
		return admin.RetrieveResult{}, admin.RecordNotFound(s.pk.DBName, pk)
	}

	model := s.newModel()
	err := s.preload(s.db.WithContext(ctx)).Where(clause.Eq{Column: column(s.pk), Value: key}).Take(model.Interface()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return admin.RetrieveResult{}, admin.RecordNotFound(s.pk.DBName, pk)
	}
	if err != nil {
		return admin.RetrieveResult{}, s.translate(admin.CodeDBErrorRetrieve, err, logrus.Fields{"pk": pk})
	}

	data, err := s.serialize(ctx, model.Elem(), fc)
	if err != nil {
		return admin.RetrieveResult{}, err
	}
	return admin.RetrieveResult{Data: data}, nil
}

// Create validates input, sets it on a fresh model and inserts it. Many
// relationships are replaced after the insert.
func (s *Source) Create(ctx context.Context, input map[string]any, fc admin.FieldContext) (admin.CreateResult, error) {
	values, err := s.spec.Schema.Deserialize(ctx, input, admin.ActionCreate, fc)
	if err != nil {
		return admin.CreateResult{}, err
	}

	model := s.newModel()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns, many, err := s.assign(ctx, tx, model.Elem(), values)
		if err != nil {
			return err
		}
		zeros := s.zeroDefaults(ctx, model.Elem(), columns)
		q := tx.Omit(clause.Associations)
		if len(columns) > 0 {
			q = tx.Select(columns).Omit(clause.Associations)
		}
		if err := q.Create(model.Interface()).Error; err != nil {
			return err
		}
		if len(zeros) > 0 {
			// gorm swaps zero values for the column default on insert
			if err := tx.Model(model.Interface()).UpdateColumns(zeros).Error; err != nil {
				return err
			}
			for name, zero := range zeros {
				if err := s.schema.LookUpField(name).Set(ctx, model.Elem(), zero); err != nil {
					return err
				}
			}
		}
		return replaceMany(tx, model.Interface(), many)
	})
	if err != nil {
		return admin.CreateResult{}, s.translate(admin.CodeDBErrorCreate, err, logrus.Fields{"input": input})
	}

	pk, _ := s.pk.ValueOf(ctx, model.Elem())
	pk = plainValue(pk)
	customLog.WithFields(logrus.Fields{"model": s.schema.Name, "pk": pk}).Info("ORMBackend: Record created")
	return admin.CreateResult{PK: pk}, nil
}

// Update applies a partial update; only the submitted columns are written.
func (s *Source) Update(ctx context.Context, pk string, input map[string]any, fc admin.FieldContext) (admin.UpdateResult, error) {
	key, ok := s.nativeKey(pk)
	if !ok {
		return admin.UpdateResult{}, admin.RecordNotFound(s.pk.DBName, pk)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := s.newModel()
		err := tx.Where(clause.Eq{Column: column(s.pk), Value: key}).Take(model.Interface()).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return admin.RecordNotFound(s.pk.DBName, pk)
		}
		if err != nil {
			return err
		}
		fc.Record = s.row(ctx, model.Elem())
		fc.Model = model.Interface()

		if err := s.spec.Schema.RejectUnknown(input); err != nil {
			return err
		}
		values, err := s.spec.Schema.Deserialize(ctx, input, admin.ActionUpdate, fc)
		if err != nil {
			return err
		}

		columns, many, err := s.assign(ctx, tx, model.Elem(), values)
		if err != nil {
			return err
		}
		if len(columns) > 0 {
			if err := tx.Model(model.Interface()).Select(columns).Updates(model.Interface()).Error; err != nil {
				return err
			}
		}
		return replaceMany(tx, model.Interface(), many)
	})
	if err != nil {
		return admin.UpdateResult{}, s.translate(admin.CodeDBErrorUpdate, err, logrus.Fields{"pk": pk, "input": input})
	}
	return admin.UpdateResult{PK: key}, nil
}

// assign sets deserialized values on rv and resolves related keys, failing
// with related_not_found on the first key that does not exist.
func (s *Source) assign(ctx context.Context, tx *gorm.DB, rv reflect.Value, values *admin.OrderedMap[any]) ([]string, []pendingMany, error) {
	var (
		columns []string
		many    []pendingMany
	)
	for _, slug := range values.Keys() {
		v, _ := values.Get(slug)
		b := s.fields[slug]
		switch b.kind {
		case bindColumn:
			value, err := columnValue(b.field, v)
			if err != nil {
				return nil, nil, err
			}
			if err := b.field.Set(ctx, rv, value); err != nil {
				return nil, nil, err
			}
			columns = append(columns, b.field.DBName)
		case bindBelongsTo:
			if v != nil {
				if _, err := fetchTargets(ctx, tx, slug, b.rel, []any{v}); err != nil {
					return nil, nil, err
				}
			}
			if err := b.field.Set(ctx, rv, v); err != nil {
				return nil, nil, err
			}
			columns = append(columns, b.field.DBName)
		case bindMany:
			keys, _ := v.([]any)
			targets, err := fetchTargets(ctx, tx, slug, b.rel, keys)
			if err != nil {
				return nil, nil, err
			}
			many = append(many, pendingMany{rel: b.rel, targets: targets})
		}
	}
	return columns, many, nil
}

// zeroDefaults returns the submitted columns holding a zero value whose field
// declares a default.
func (s *Source) zeroDefaults(ctx context.Context, rv reflect.Value, columns []string) map[string]any {
	var out map[string]any
	for _, name := range columns {
		f := s.schema.LookUpField(name)
		if f == nil || f.DefaultValueInterface == nil {
			continue
		}
		if _, zero := f.ValueOf(ctx, rv); zero {
			if out == nil {
				out = map[string]any{}
			}
			out[f.DBName] = reflect.Zero(f.FieldType).Interface()
		}
	}
	return out
}

// fetchTargets loads the related models for keys into a slice value.
func fetchTargets(ctx context.Context, tx *gorm.DB, slug string, rel *schema.Relationship, keys []any) (reflect.Value, error) {
	dest := newSlice(rel.FieldSchema)
	if len(keys) == 0 {
		return dest.Elem(), nil
	}
	key := targetKey(rel)
	if err := tx.Where(clause.IN{Column: column(key), Values: keys}).Find(dest.Interface()).Error; err != nil {
		return reflect.Value{}, err
	}

	found := make(map[string]bool, dest.Elem().Len())
	for i := 0; i < dest.Elem().Len(); i++ {
		k, _ := key.ValueOf(ctx, dest.Elem().Index(i))
		found[admin.KeyString(plainValue(k))] = true
	}
	for _, k := range keys {
		if !found[admin.KeyString(k)] {
			return reflect.Value{}, admin.RelatedNotFound(slug, k)
		}
	}
	return dest.Elem(), nil
}

func replaceMany(tx *gorm.DB, owner any, many []pendingMany) error {
	for _, p := range many {
		assoc := tx.Model(owner).Association(p.rel.Name)
		if assoc.Error != nil {
			return assoc.Error
		}
		var err error
		if p.targets.Len() == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(p.targets.Interface())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
