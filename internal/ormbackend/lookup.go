package ormbackend

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// SearchRelated matches search against the title and key columns of the
// relationship's target model.
func (s *Source) SearchRelated(ctx context.Context, field *admin.RelatedField, slug, search string, limit int) ([]admin.Record, error) {
	rel, err := s.relationship(field, slug)
	if err != nil {
		return nil, err
	}
	target, key := rel.FieldSchema, targetKey(rel)

	dest := newSlice(target)
	q := s.db.WithContext(ctx)
	if search != "" {
		q = q.Where(clause.Or(likeExpr(column(titleField(target)), search), likeExpr(column(key), search)))
	}
	err = q.Order(clause.OrderByColumn{Column: column(key)}).Limit(limit).Find(dest.Interface()).Error
	if err != nil {
		return nil, s.translate(admin.CodeDBErrorList, err, logrus.Fields{"field": slug, "search": search})
	}

	items := dest.Elem()
	records := make([]admin.Record, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		records = append(records, recordOf(ctx, target, key, items.Index(i)))
	}
	return records, nil
}

// FetchRelated resolves keys in the order given, dropping unknown ones.
func (s *Source) FetchRelated(ctx context.Context, field *admin.RelatedField, slug string, keys []any) ([]admin.Record, error) {
	if len(keys) == 0 {
		return []admin.Record{}, nil
	}
	rel, err := s.relationship(field, slug)
	if err != nil {
		return nil, err
	}
	target, key := rel.FieldSchema, targetKey(rel)

	dest := newSlice(target)
	if err := s.db.WithContext(ctx).Where(clause.IN{Column: column(key), Values: keys}).Find(dest.Interface()).Error; err != nil {
		return nil, s.translate(admin.CodeDBErrorList, err, logrus.Fields{"field": slug, "keys": keys})
	}

	byKey := make(map[string]admin.Record, dest.Elem().Len())
	for i := 0; i < dest.Elem().Len(); i++ {
		r := recordOf(ctx, target, key, dest.Elem().Index(i))
		byKey[admin.KeyString(r.Key)] = r
	}
	records := make([]admin.Record, 0, len(keys))
	for _, k := range keys {
		if r, ok := byKey[admin.KeyString(k)]; ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// DeleteAction is the stock bulk delete for this model. Models with a
// gorm.DeletedAt field are soft deleted.
func (s *Source) DeleteAction() admin.Action {
	return admin.Action{
		Name:             "delete",
		Title:            i18n.T("delete"),
		ConfirmationText: i18n.T("delete_confirmation_text"),
		BaseColor:        "red-lighten-2",
		Variant:          "outlined",
		Handler:          s.deleteSelected,
	}
}

func (s *Source) deleteSelected(ctx context.Context, req admin.ActionRequest) (admin.ActionResult, error) {
	db := s.db.WithContext(ctx)
	if req.Data.SendToAll {
		plan, err := req.Table.Plan(admin.ListQuery{Search: req.Data.Filters.Search, Filters: req.Data.Filters.Filters})
		if err != nil {
			return admin.ActionResult{}, err
		}
		scope, err := s.scope(plan)
		if err != nil {
			return admin.ActionResult{}, err
		}
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true}).Scopes(scope)
	} else {
		keys := make([]any, 0, len(req.Data.PKs))
		for _, pk := range req.Data.PKs {
			if key, ok := s.nativeKey(pk); ok {
				keys = append(keys, key)
			}
		}
		db = db.Where(clause.IN{Column: column(s.pk), Values: keys})
	}

	res := db.Delete(s.newModel().Interface())
	if res.Error != nil {
		return admin.ActionResult{}, s.translate(admin.CodeDBErrorDelete, res.Error,
			logrus.Fields{"pks": req.Data.PKs, "send_to_all": req.Data.SendToAll})
	}
	customLog.WithFields(logrus.Fields{"model": s.schema.Name, "deleted": res.RowsAffected}).Info("ORMBackend: Records deleted")

	return admin.ActionResult{Message: admin.Message(i18n.T("deleted_successfully"))}, nil
}
