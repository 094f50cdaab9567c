package example

import (
	"context"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

func graphsCategory() (*admin.CategoryGraphs, error) {
	filters, err := admin.NewFieldsSchema([]admin.NamedField{
		admin.F("id", &admin.IntegerField{FieldBase: admin.FieldBase{Label: i18n.Raw("ID")}}),
		admin.F("created_at", &admin.DateTimeField{FieldBase: admin.FieldBase{Label: i18n.T("created_at")}}),
	})
	if err != nil {
		return nil, err
	}
	return admin.NewCategoryGraphs(admin.GraphsConfig{
		Slug:    "graphs-example",
		Title:   i18n.T("graphs_example"),
		Icon:    "mdi-chart-bar-stacked",
		Filters: filters,
		Handler: graphsData,
	})
}

func dataset(label, color string, data []any) map[string]any {
	return map[string]any{
		"label":           label,
		"backgroundColor": "rgba(" + color + ",0.2)",
		"borderColor":     "rgba(" + color + ",1)",
		"borderWidth":     2,
		"data":            data,
	}
}

func graphsData(_ context.Context, _ admin.GraphData, fc admin.FieldContext) (admin.GraphsDataResult, error) {
	barHeight := 50
	return admin.GraphsDataResult{Charts: []admin.ChartData{
		{
			Type: "line",
			Data: map[string]any{
				"labels": []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul"},
				"datasets": []any{
					dataset("Dataset #1", "255,99,132", []any{65, 59, 20, 81, 56, 55, 40}),
					dataset("Dataset #2", "233,150,122", []any{30, 35, 29, 15, 3, 10, 22}),
				},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"legend": map[string]any{"position": "top"},
					"title":  map[string]any{"display": true, "text": fc.Language.Get(i18n.T("payments"))},
				},
			},
		},
		{
			Type: "bar",
			Data: map[string]any{
				"labels": []string{"Process", "Success", "Error"},
				"datasets": []any{map[string]any{
					"label":           fc.Language.Get(i18n.T("status")),
					"data":            []any{12, 19, 3},
					"backgroundColor": []string{"rgba(189,189,189,0.2)", "rgba(67,160,71,0.2)", "rgba(229,115,115,0.2)"},
					"borderColor":     []string{"rgb(189,189,189)", "rgb(67,160,71)", "rgb(229,115,115)"},
					"borderWidth":     1,
				}},
			},
			Options: map[string]any{
				"scales":    map[string]any{"x": map[string]any{"beginAtZero": true}},
				"animation": map[string]any{"duration": 1500, "easing": "easeInOutQuad"},
			},
			Height: &barHeight,
		},
	}}, nil
}
