package example

import (
	"context"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

const paymentsTotal = 5039

var (
	paymentStatusColors = map[string]string{
		"process": "grey-lighten-1",
		"success": "green-darken-1",
		"error":   "red-lighten-2",
	}
	paymentStatuses  = []string{"process", "success", "error"}
	paymentEndpoints = []string{"charge", "refund", "payout", "capture", "void"}
	paymentsEpoch    = time.Date(2025, 6, 16, 9, 45, 29, 0, time.UTC)
)

// paymentSource is a read-only, generated data set standing in for an
// external payments API. Records are derived from their id, so the same id
// always yields the same payment.
type paymentSource struct {
	spec  admin.TableSpec
	total int
}

func (s *paymentSource) Bind(spec admin.TableSpec) error {
	s.spec = spec
	return nil
}

func (s *paymentSource) payment(pk int) map[string]any {
	rng := rand.New(rand.NewPCG(uint64(pk), 7))
	return map[string]any{
		"id":            int64(pk),
		"amount":        int64(10 * rng.IntN(101)),
		"status":        paymentStatuses[rng.IntN(len(paymentStatuses))],
		"endpoint":      paymentEndpoints[rng.IntN(len(paymentEndpoints))],
		"whitelist_ips": []any{"localhost", "0.0.0.0"},
		"description":   sentence(rng, 5),
		"other_field":   loremWords[rng.IntN(len(loremWords))],
		"created_at":    paymentsEpoch.Add(-time.Duration(pk) * (time.Hour + time.Minute)),
	}
}

func matches(row map[string]any, f admin.Filter) bool {
	v := row[f.Field]
	switch f.Op {
	case admin.FilterIn:
		return slices.ContainsFunc(f.Values, func(x any) bool { return admin.KeyString(x) == admin.KeyString(v) })
	case admin.FilterRange:
		t, _ := v.(time.Time)
		if f.From != nil && t.Before(*f.From) {
			return false
		}
		return f.To == nil || !t.After(*f.To)
	case admin.FilterContains:
		return strings.Contains(strings.ToLower(admin.KeyString(v)), strings.ToLower(admin.KeyString(f.Value)))
	default:
		return admin.KeyString(v) == admin.KeyString(f.Value)
	}
}

func (s *paymentSource) serialize(ctx context.Context, row map[string]any, fc admin.FieldContext) (*admin.OrderedMap[any], error) {
	fc.Record = row
	return s.spec.Schema.Serialize(ctx, row, fc)
}

// List walks ids newest first unless ordered by ascending id.
func (s *paymentSource) List(ctx context.Context, plan admin.ListPlan, fc admin.FieldContext) (admin.TableListResult, error) {
	ascending := plan.Ordering != nil && plan.Ordering.Field == "id" && !plan.Ordering.Desc

	var (
		total int64
		data  = make([]*admin.OrderedMap[any], 0, plan.Limit)
	)
	for i := 0; i < s.total; i++ {
		pk := s.total - i
		if ascending {
			pk = i + 1
		}
		row := s.payment(pk)
		if plan.Search != "" && !strings.Contains(strconv.Itoa(pk), plan.Search) {
			continue
		}
		if !slices.ContainsFunc(plan.Filters, func(f admin.Filter) bool { return !matches(row, f) }) {
			total++
			if total > int64(plan.Offset) && len(data) < plan.Limit {
				item, err := s.serialize(ctx, row, fc)
				if err != nil {
					return admin.TableListResult{}, err
				}
				data = append(data, item)
			}
		}
	}
	return admin.TableListResult{Data: data, TotalCount: total}, nil
}

func (s *paymentSource) Retrieve(ctx context.Context, pk string, fc admin.FieldContext) (admin.RetrieveResult, error) {
	id, err := strconv.Atoi(pk)
	if err != nil || id < 1 || id > s.total {
		return admin.RetrieveResult{}, admin.RecordNotFound("id", pk)
	}
	data, err := s.serialize(ctx, s.payment(id), fc)
	if err != nil {
		return admin.RetrieveResult{}, err
	}
	return admin.RetrieveResult{Data: data}, nil
}

func paymentsTable() (*admin.CategoryTable, error) {
	choices := make([]admin.Choice, 0, len(paymentStatuses))
	for _, s := range paymentStatuses {
		choices = append(choices, admin.Choice{Value: s, Title: i18n.Raw(strings.ToUpper(s[:1]) + s[1:])})
	}
	registry := func(v bool) func(context.Context, admin.FieldContext) (any, error) {
		return func(context.Context, admin.FieldContext) (any, error) { return v, nil }
	}

	schema, err := admin.NewFieldsSchema([]admin.NamedField{
		admin.F("id", &admin.IntegerField{FieldBase: admin.FieldBase{Label: i18n.Raw("ID"), ReadOnly: true}}),
		admin.F("amount", &admin.IntegerField{FieldBase: admin.FieldBase{Label: i18n.T("amount")}}),
		admin.F("endpoint", &admin.StringField{FieldBase: admin.FieldBase{Label: i18n.T("endpoint")}}),
		admin.F("description", &admin.StringField{FieldBase: admin.FieldBase{Label: i18n.T("description")}}),
		admin.F("other_field", &admin.StringField{FieldBase: admin.FieldBase{ReadOnly: true}}),
		admin.F("whitelist_ips", &admin.ArrayField{FieldBase: admin.FieldBase{Label: i18n.T("whitelist_ips")}, ArrayType: admin.TypeString}),
		admin.F("status", &admin.ChoiceField{FieldBase: admin.FieldBase{Label: i18n.T("status")}, Choices: choices, TagColors: paymentStatusColors}),
		admin.F("created_at", &admin.DateTimeField{FieldBase: admin.FieldBase{Label: i18n.T("created_at"), ReadOnly: true}}),
		admin.F("get_provider_registry", &admin.FunctionField{
			FieldBase: admin.FieldBase{Label: i18n.T("registry_checked")}, As: &admin.BooleanField{}, Fn: registry(true),
		}),
		admin.F("get_provider_registry_info", &admin.FunctionField{
			FieldBase: admin.FieldBase{Label: i18n.T("registry_info_checked")}, As: &admin.BooleanField{}, Fn: registry(false),
		}),
	},
		admin.WithReadOnly("amount"),
		admin.WithListDisplay("id", "amount", "endpoint", "status", "description", "created_at",
			"get_provider_registry", "get_provider_registry_info"),
	)
	if err != nil {
		return nil, err
	}

	filters, err := admin.NewFieldsSchema([]admin.NamedField{
		admin.F("id", &admin.IntegerField{FieldBase: admin.FieldBase{Label: i18n.Raw("ID")}}),
		admin.F("created_at", &admin.DateTimeField{FieldBase: admin.FieldBase{Label: i18n.T("created_at")}, Range: true}),
	})
	if err != nil {
		return nil, err
	}

	createForm, err := admin.NewFieldsSchema([]admin.NamedField{
		admin.F("amount", &admin.IntegerField{FieldBase: admin.FieldBase{Label: i18n.T("amount"), Required: true}}),
		admin.F("is_throw_error", &admin.BooleanField{FieldBase: admin.FieldBase{Label: i18n.T("is_throw_error")}}),
	}, admin.WithValidator("is_throw_error", func(_ context.Context, value any, _ admin.FieldContext) (any, error) {
		if throw, _ := value.(bool); throw {
			return nil, admin.NewFieldError("throw_error", i18n.T("throw_error"))
		}
		return value, nil
	}))
	if err != nil {
		return nil, err
	}

	return admin.NewCategoryTable(admin.TableConfig{
		Slug:           "payments",
		Title:          i18n.T("payments"),
		Icon:           "mdi-credit-card-outline",
		Schema:         schema,
		Filters:        filters,
		OrderingFields: []string{"id"},
		SearchFields:   []string{"id"},
		SearchHelp:     i18n.T("payments_search_fields"),
		PKName:         "id",
		Source:         &paymentSource{total: paymentsTotal},
		Actions: []admin.Action{
			{
				Name:                "create_payment",
				Title:               i18n.T("create_payment"),
				Description:         i18n.T("create_payment_description"),
				FormSchema:          createForm,
				AllowEmptySelection: true,
				Handler:             createPayment,
			},
			{
				Name:             "delete",
				Title:            i18n.T("delete"),
				ConfirmationText: i18n.T("delete_confirmation_text"),
				BaseColor:        "red-lighten-2",
				Variant:          "outlined",
				Handler: func(context.Context, admin.ActionRequest) (admin.ActionResult, error) {
					return admin.ActionResult{Message: admin.Message(i18n.T("deleted_successfully"))}, nil
				},
			},
			{
				Name:                "action_with_exception",
				Title:               i18n.T("action_with_exception"),
				AllowEmptySelection: true,
				Handler: func(context.Context, admin.ActionRequest) (admin.ActionResult, error) {
					return admin.ActionResult{}, admin.UserActionError(i18n.T("exception_example"))
				},
			},
		},
	})
}

func createPayment(_ context.Context, req admin.ActionRequest) (admin.ActionResult, error) {
	amount, _ := req.Form.Get("amount")
	gatewayID := uuid.NewString()
	customLog.Printf("Example: Payment %s created for amount %v", gatewayID, amount)

	msg := i18n.T("payment_create_result").With(map[string]any{
		"gateway_id":   gatewayID,
		"amount":       amount,
		"redirect_url": "https://example.com/pay/" + gatewayID,
	})
	return admin.ActionResult{PersistentMessage: msg}, nil
}
