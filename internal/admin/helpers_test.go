package admin_test

import (
	"context"
	"strings"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

type testUser string

func (u testUser) GetUsername() string { return string(u) }

func enManager() *i18n.Manager {
	return i18n.NewResolver(nil, nil).Manager("en")
}

// listSource is an in-memory DataSource without optional capabilities.
type listSource struct {
	rows      []map[string]any
	schema    *admin.FieldsSchema
	listCalls int
	lastPlan  admin.ListPlan
}

func (s *listSource) Bind(spec admin.TableSpec) error {
	s.schema = spec.Schema
	return nil
}

func (s *listSource) List(ctx context.Context, plan admin.ListPlan, fc admin.FieldContext) (admin.TableListResult, error) {
	s.listCalls++
	s.lastPlan = plan
	result := admin.TableListResult{Data: []*admin.OrderedMap[any]{}, TotalCount: int64(len(s.rows))}
	for _, row := range s.rows {
		data, err := s.schema.Serialize(ctx, row, fc)
		if err != nil {
			return admin.TableListResult{}, err
		}
		result.Data = append(result.Data, data)
	}
	return result, nil
}

// crudSource adds every optional capability on top of listSource.
type crudSource struct {
	listSource
	related []admin.Record
	created []map[string]any
	fetched []any
}

func (s *crudSource) Retrieve(ctx context.Context, pk string, fc admin.FieldContext) (admin.RetrieveResult, error) {
	for _, row := range s.rows {
		if admin.KeyString(row["id"]) == pk {
			data, err := s.schema.Serialize(ctx, row, fc)
			return admin.RetrieveResult{Data: data}, err
		}
	}
	return admin.RetrieveResult{}, admin.RecordNotFound("id", pk)
}

func (s *crudSource) Create(ctx context.Context, input map[string]any, fc admin.FieldContext) (admin.CreateResult, error) {
	values, err := s.schema.Deserialize(ctx, input, admin.ActionCreate, fc)
	if err != nil {
		return admin.CreateResult{}, err
	}
	s.created = append(s.created, values.ToMap())
	return admin.CreateResult{PK: int64(len(s.created))}, nil
}

func (s *crudSource) Update(ctx context.Context, pk string, input map[string]any, fc admin.FieldContext) (admin.UpdateResult, error) {
	if _, err := s.schema.Deserialize(ctx, input, admin.ActionUpdate, fc); err != nil {
		return admin.UpdateResult{}, err
	}
	return admin.UpdateResult{PK: pk}, nil
}

func (s *crudSource) SearchRelated(_ context.Context, _ *admin.RelatedField, _ string, search string, limit int) ([]admin.Record, error) {
	var out []admin.Record
	for _, r := range s.related {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(search)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *crudSource) FetchRelated(_ context.Context, _ *admin.RelatedField, _ string, keys []any) ([]admin.Record, error) {
	s.fetched = append(s.fetched, keys...)
	var out []admin.Record
	for _, key := range keys {
		for _, r := range s.related {
			if admin.KeyString(r.Key) == admin.KeyString(key) {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func terminalSchema() *admin.FieldsSchema {
	return admin.MustFieldsSchema([]admin.NamedField{
		admin.F("id", &admin.IntegerField{FieldBase: admin.FieldBase{ReadOnly: true}}),
		admin.F("title", &admin.StringField{FieldBase: admin.FieldBase{Required: true}, MaxLength: 32}),
		admin.F("merchant_id", &admin.RelatedField{FieldBase: admin.FieldBase{Required: true}, RelName: "merchant"}),
		admin.F("is_active", &admin.BooleanField{FieldBase: admin.FieldBase{Default: true}}),
	})
}
