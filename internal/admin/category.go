package admin

import (
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// Category type tags.
const (
	CategoryTypeTable  = "table"
	CategoryTypeGraphs = "graphs"
)

// Category is one admin UI section exposed under a Group.
type Category interface {
	Slug() string
	Type() string
	GenerateSchema(user User, lang *i18n.Manager) CategorySchemaData
}

// CategorySchemaData is the wire description of a category.
type CategorySchemaData struct {
	Title     string               `json:"title"`
	Icon      string               `json:"icon"`
	Type      string               `json:"type"`
	TableInfo *TableInfoSchemaData `json:"table_info,omitempty"`
	GraphInfo *GraphInfoSchemaData `json:"graph_info,omitempty"`
}

// categoryBase holds what every category variant shares.
type categoryBase struct {
	slug  string
	title i18n.Text
	icon  string
}

// Slug returns the category slug.
func (b *categoryBase) Slug() string {
	return b.slug
}

func (b *categoryBase) baseSchema(typ string, lang *i18n.Manager) CategorySchemaData {
	title := b.slug
	if !b.title.IsZero() {
		title = lang.Get(b.title)
	}
	return CategorySchemaData{Title: title, Icon: b.icon, Type: typ}
}
