package admin

import (
	"errors"
	"fmt"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// Group is an ordered set of categories shown as one menu section.
type Group struct {
	Slug       string
	Title      i18n.Text
	Icon       string
	Categories []Category
}

// SchemaConfig declares the whole admin panel.
type SchemaConfig struct {
	Title                 i18n.Text
	Description           i18n.Text
	LoginGreetingsMessage i18n.Text
	LogoImage             string
	Groups                []Group
	Languages             *i18n.Resolver
}

// Schema is the top-level, immutable admin definition.
type Schema struct {
	cfg    SchemaConfig
	groups []Group
	index  map[string]map[string]Category
}

// NewSchema checks slug uniqueness of groups and of categories within a group.
func NewSchema(cfg SchemaConfig) (*Schema, error) {
	s := &Schema{
		cfg:    cfg,
		groups: append([]Group(nil), cfg.Groups...),
		index:  make(map[string]map[string]Category, len(cfg.Groups)),
	}
	if s.cfg.Languages == nil {
		s.cfg.Languages = i18n.NewResolver(nil, nil)
	}

	for _, g := range cfg.Groups {
		if g.Slug == "" {
			return nil, errors.New("schema: group slug must not be empty")
		}
		if _, dup := s.index[g.Slug]; dup {
			return nil, fmt.Errorf("schema: duplicate group %q", g.Slug)
		}
		categories := make(map[string]Category, len(g.Categories))
		for _, c := range g.Categories {
			if c == nil {
				return nil, fmt.Errorf("schema: group %q has a nil category", g.Slug)
			}
			if c.Slug() == "" {
				return nil, fmt.Errorf("schema: group %q: category slug must not be empty", g.Slug)
			}
			if _, dup := categories[c.Slug()]; dup {
				return nil, fmt.Errorf("schema: group %q: duplicate category %q", g.Slug, c.Slug())
			}
			categories[c.Slug()] = c
		}
		s.index[g.Slug] = categories
	}
	return s, nil
}

// MustSchema panics on an invalid config.
func MustSchema(cfg SchemaConfig) *Schema {
	s, err := NewSchema(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Languages returns the language resolver.
func (s *Schema) Languages() *i18n.Resolver {
	return s.cfg.Languages
}

// Groups returns the groups in declaration order.
func (s *Schema) Groups() []Group {
	return append([]Group(nil), s.groups...)
}

func notFound() *APIError {
	return NotFound(CodeNotFound, i18n.T(CodeNotFound))
}

// Category looks up a category by group and slug.
func (s *Schema) Category(group, slug string) (Category, error) {
	categories, ok := s.index[group]
	if !ok {
		return nil, notFound()
	}
	c, ok := categories[slug]
	if !ok {
		return nil, notFound()
	}
	return c, nil
}

// Table looks up a table category.
func (s *Schema) Table(group, slug string) (*CategoryTable, error) {
	c, err := s.Category(group, slug)
	if err != nil {
		return nil, err
	}
	t, ok := c.(*CategoryTable)
	if !ok {
		return nil, notFound()
	}
	return t, nil
}

// Graphs looks up a graphs category.
func (s *Schema) Graphs(group, slug string) (*CategoryGraphs, error) {
	c, err := s.Category(group, slug)
	if err != nil {
		return nil, err
	}
	g, ok := c.(*CategoryGraphs)
	if !ok {
		return nil, notFound()
	}
	return g, nil
}

// GroupSchemaData is the wire description of a group.
type GroupSchemaData struct {
	Title      string                          `json:"title"`
	Icon       string                          `json:"icon"`
	Categories *OrderedMap[CategorySchemaData] `json:"categories"`
}

// SchemaData is the full UI metadata tree.
type SchemaData struct {
	Groups  *OrderedMap[GroupSchemaData] `json:"groups"`
	Profile UserProfile                  `json:"profile"`
}

// GenerateSchema describes every group and category for user in lang.
func (s *Schema) GenerateSchema(user User, lang *i18n.Manager) SchemaData {
	groups := NewOrderedMap[GroupSchemaData](len(s.groups))
	for _, g := range s.groups {
		title := g.Slug
		if !g.Title.IsZero() {
			title = lang.Get(g.Title)
		}
		categories := NewOrderedMap[CategorySchemaData](len(g.Categories))
		for _, c := range g.Categories {
			categories.Set(c.Slug(), c.GenerateSchema(user, lang))
		}
		groups.Set(g.Slug, GroupSchemaData{Title: title, Icon: g.Icon, Categories: categories})
	}

	var profile UserProfile
	if user != nil {
		profile.Username = user.GetUsername()
	}
	return SchemaData{Groups: groups, Profile: profile}
}

// SettingsData is the public panel configuration shown before login.
type SettingsData struct {
	Title                 string              `json:"title"`
	Description           *string             `json:"description"`
	LoginGreetingsMessage *string             `json:"login_greetings_message"`
	LogoImage             *string             `json:"logo_image"`
	Languages             *OrderedMap[string] `json:"languages"`
}

// Settings returns the public settings in lang.
func (s *Schema) Settings(lang *i18n.Manager) SettingsData {
	title := "Admin"
	if !s.cfg.Title.IsZero() {
		title = lang.Get(s.cfg.Title)
	}
	languages := NewOrderedMap[string](len(s.cfg.Languages.Languages()))
	for _, l := range s.cfg.Languages.Languages() {
		name := l.Code
		if !l.Name.IsZero() {
			name = lang.Get(l.Name)
		}
		languages.Set(l.Code, name)
	}
	return SettingsData{
		Title:                 title,
		Description:           optText(lang, s.cfg.Description),
		LoginGreetingsMessage: optText(lang, s.cfg.LoginGreetingsMessage),
		LogoImage:             optString(s.cfg.LogoImage),
		Languages:             languages,
	}
}
