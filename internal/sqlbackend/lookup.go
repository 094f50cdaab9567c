package sqlbackend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// SearchRelated matches search against the title and key columns of the
// field's target table.
func (s *Source) SearchRelated(ctx context.Context, field *admin.RelatedField, slug, search string, limit int) ([]admin.Record, error) {
	rel, err := s.relation(field, slug)
	if err != nil {
		return nil, err
	}
	target, keyColumn := s.relationKeyColumn(rel)

	w := &where{}
	if search != "" {
		pattern := likePattern(search)
		w.add(fmt.Sprintf("(%s OR %s)", likeClause(quote(target.titleColumn())), likeClause(quote(keyColumn))),
			pattern, pattern)
	}
	query := fmt.Sprintf(`SELECT %s AS "key", %s AS "title" FROM %s%s ORDER BY %s LIMIT ?`,
		quote(keyColumn), quote(target.titleColumn()), quote(target.Name), w.sql(), quote(keyColumn))

	rows, err := queryRows(ctx, s.db, query, append(w.args, limit)...)
	if err != nil {
		return nil, s.translate(admin.CodeDBErrorList, err, logrus.Fields{"field": slug, "search": search})
	}
	records := make([]admin.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, admin.Record{Key: row["key"], Title: titleString(row["title"])})
	}
	return records, nil
}

// FetchRelated resolves keys of the field's target, in the order given.
// Unknown keys are dropped.
func (s *Source) FetchRelated(ctx context.Context, field *admin.RelatedField, slug string, keys []any) ([]admin.Record, error) {
	if len(keys) == 0 {
		return []admin.Record{}, nil
	}
	rel, err := s.relation(field, slug)
	if err != nil {
		return nil, err
	}
	target, keyColumn := s.relationKeyColumn(rel)

	found, err := s.fetchRecords(ctx, s.db, target, keyColumn, keys)
	if err != nil {
		return nil, s.translate(admin.CodeDBErrorList, err, logrus.Fields{"field": slug, "keys": keys})
	}
	byKey := make(map[string]admin.Record, len(found))
	for _, r := range found {
		byKey[admin.KeyString(r.Key)] = r
	}

	records := make([]admin.Record, 0, len(keys))
	for _, key := range keys {
		if r, ok := byKey[admin.KeyString(key)]; ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// DeleteAction is the stock bulk delete for this table. With send_to_all it
// deletes everything the list filters and search select.
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
	w := &where{}
	if req.Data.SendToAll {
		plan, err := req.Table.Plan(admin.ListQuery{Search: req.Data.Filters.Search, Filters: req.Data.Filters.Filters})
		if err != nil {
			return admin.ActionResult{}, err
		}
		if w, err = s.conditions(plan); err != nil {
			return admin.ActionResult{}, err
		}
	} else {
		keys := make([]any, 0, len(req.Data.PKs))
		for _, pk := range req.Data.PKs {
			if key, ok := s.nativeKey(pk); ok {
				keys = append(keys, key)
			}
		}
		w.add(fmt.Sprintf("%s IN (%s)", s.col(s.pk.Name), placeholders(len(keys))), keys...)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", quote(s.table.Name), w.sql()), w.args...)
	if err != nil {
		return admin.ActionResult{}, s.translate(admin.CodeDBErrorDelete, err,
			logrus.Fields{"pks": req.Data.PKs, "send_to_all": req.Data.SendToAll})
	}
	deleted, _ := res.RowsAffected()
	customLog.WithFields(logrus.Fields{"table": s.table.Name, "deleted": deleted}).Info("SQLBackend: Records deleted")

	return admin.ActionResult{Message: admin.Message(i18n.T("deleted_successfully"))}, nil
}
