package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// GraphData is the chart request body.
type GraphData struct {
	Search  string         `json:"search"`
	Filters map[string]any `json:"filters"`
}

// ChartData is one chart in Chart.js terms.
type ChartData struct {
	Type    string         `json:"type"`
	Data    map[string]any `json:"data"`
	Options map[string]any `json:"options"`
	Height  *int           `json:"height,omitempty"`
}

// GraphsDataResult is the chart payload.
type GraphsDataResult struct {
	Charts []ChartData `json:"charts"`
}

// GraphHandler produces charts for the given search and filters.
type GraphHandler func(ctx context.Context, data GraphData, fc FieldContext) (GraphsDataResult, error)

// GraphsConfig declares a graphs category.
type GraphsConfig struct {
	Slug          string
	Title         i18n.Text
	Icon          string
	Filters       *FieldsSchema
	SearchEnabled bool
	SearchHelp    i18n.Text
	Handler       GraphHandler
}

// CategoryGraphs is a read-only chart view.
type CategoryGraphs struct {
	categoryBase
	filters       *FieldsSchema
	searchEnabled bool
	searchHelp    i18n.Text
	handler       GraphHandler
}

// GraphInfoSchemaData is the graph part of a category description.
type GraphInfoSchemaData struct {
	SearchEnabled bool              `json:"search_enabled"`
	SearchHelp    *string           `json:"search_help"`
	TableFilters  *FieldsSchemaData `json:"table_filters"`
}

// NewCategoryGraphs validates cfg.
func NewCategoryGraphs(cfg GraphsConfig) (*CategoryGraphs, error) {
	if cfg.Slug == "" {
		return nil, errors.New("graphs category: slug must not be empty")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("graphs category %q: handler is required", cfg.Slug)
	}
	return &CategoryGraphs{
		categoryBase:  categoryBase{slug: cfg.Slug, title: cfg.Title, icon: cfg.Icon},
		filters:       cfg.Filters,
		searchEnabled: cfg.SearchEnabled,
		searchHelp:    cfg.SearchHelp,
		handler:       cfg.Handler,
	}, nil
}

// MustCategoryGraphs panics on an invalid config.
func MustCategoryGraphs(cfg GraphsConfig) *CategoryGraphs {
	g, err := NewCategoryGraphs(cfg)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *CategoryGraphs) Type() string { return CategoryTypeGraphs }

func (g *CategoryGraphs) GenerateSchema(user User, lang *i18n.Manager) CategorySchemaData {
	data := g.baseSchema(g.Type(), lang)
	info := &GraphInfoSchemaData{
		SearchEnabled: g.searchEnabled,
		SearchHelp:    optText(lang, g.searchHelp),
	}
	if g.filters != nil {
		filters := g.filters.GenerateSchema(user, lang)
		info.TableFilters = &filters
	}
	data.GraphInfo = info
	return data
}

// GetData validates filter names and asks the handler for charts.
func (g *CategoryGraphs) GetData(ctx context.Context, data GraphData, fc FieldContext) (GraphsDataResult, error) {
	if len(data.Filters) > 0 {
		if g.filters == nil {
			return GraphsDataResult{}, filterError(firstKey(data.Filters))
		}
		if _, err := g.filters.ParseFilters(data.Filters); err != nil {
			return GraphsDataResult{}, err
		}
	}
	result, err := g.handler(ctx, data, fc)
	if err != nil {
		return GraphsDataResult{}, err
	}
	if result.Charts == nil {
		result.Charts = []ChartData{}
	}
	return result, nil
}
