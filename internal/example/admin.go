// Package example wires a demo admin panel over sqlite: currencies, merchants
// and terminals through sqlbackend, users through ormbackend, a generated
// payments table with actions and a graphs page.
package example

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
	"github.com/Annany2002/nebula-admin/internal/logger"
	"github.com/Annany2002/nebula-admin/internal/ormbackend"
	"github.com/Annany2002/nebula-admin/internal/sqlbackend"
)

var (
	customLog = logger.NewLogger()
)

// Options tunes the demo panel.
type Options struct {
	// Title overrides the translated admin_title phrase when set.
	Title string
	// DefaultLanguage is listed first and used as the fallback.
	DefaultLanguage string
}

func languages(defaultLang string) []i18n.Language {
	langs := []i18n.Language{
		{Code: "en", Name: i18n.Raw("English")},
		{Code: "ru", Name: i18n.Raw("Russian")},
	}
	for i, l := range langs {
		if l.Code == defaultLang && i > 0 {
			langs[0], langs[i] = langs[i], langs[0]
		}
	}
	return langs
}

// NewSchema builds the demo admin. The tables must exist; see Migrate.
func NewSchema(ctx context.Context, db *sql.DB, gdb *gorm.DB, opts Options) (*admin.Schema, error) {
	meta, err := sqlbackend.Reflect(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect demo tables: %w", err)
	}

	currencies, err := currencyTable(db, meta)
	if err != nil {
		return nil, err
	}
	merchants, err := merchantTable(db, meta)
	if err != nil {
		return nil, err
	}
	terminals, err := terminalTable(db, meta)
	if err != nil {
		return nil, err
	}
	users, err := userTable(gdb)
	if err != nil {
		return nil, err
	}
	payments, err := paymentsTable()
	if err != nil {
		return nil, err
	}
	graphs, err := graphsCategory()
	if err != nil {
		return nil, err
	}

	title := i18n.T("admin_title")
	if opts.Title != "" && opts.Title != "Admin" {
		title = i18n.Raw(opts.Title)
	}

	return admin.NewSchema(admin.SchemaConfig{
		Title:                 title,
		Description:           i18n.T("admin_description"),
		LoginGreetingsMessage: i18n.T("login_greetings_message"),
		Languages:             i18n.NewResolver(languages(opts.DefaultLanguage), Phrases),
		Groups: []admin.Group{
			{Slug: "payments", Title: i18n.T("payments"), Icon: "mdi-cash-multiple", Categories: []admin.Category{payments}},
			{Slug: "users", Title: i18n.T("users"), Icon: "mdi-account", Categories: []admin.Category{users}},
			{Slug: "merchants", Title: i18n.T("merchants"), Icon: "mdi-folder-account-outline", Categories: []admin.Category{merchants, terminals}},
			{Slug: "currencies", Title: i18n.T("currencies"), Icon: "mdi-cash-multiple", Categories: []admin.Category{currencies}},
			{Slug: "statistics", Title: i18n.T("statistics"), Icon: "mdi-finance", Categories: []admin.Category{graphs}},
		},
	})
}

func currencyTable(db *sql.DB, meta *sqlbackend.Metadata) (*admin.CategoryTable, error) {
	source, err := sqlbackend.New(db, meta, "currency")
	if err != nil {
		return nil, err
	}
	schema, err := sqlbackend.AutoSchema(source.Table(), nil)
	if err != nil {
		return nil, err
	}
	filters, err := sqlbackend.AutoSchema(source.Table(), []string{"id", "char_code"})
	if err != nil {
		return nil, err
	}
	return admin.NewCategoryTable(admin.TableConfig{
		Slug:           "currency",
		Title:          i18n.T("currencies"),
		Icon:           "mdi-currency-usd",
		Schema:         schema,
		Filters:        filters,
		OrderingFields: []string{"id", "num_code"},
		SearchFields:   []string{"title", "char_code"},
		Actions:        []admin.Action{source.DeleteAction()},
		Source:         source,
	})
}

func merchantTable(db *sql.DB, meta *sqlbackend.Metadata) (*admin.CategoryTable, error) {
	source, err := sqlbackend.New(db, meta, "merchant")
	if err != nil {
		return nil, err
	}
	// terminal.merchant_id is NOT NULL, so terminals are not reassignable
	// from the merchant side.
	schema, err := sqlbackend.AutoSchema(source.Table(), []string{"id", "user_id", "title", "created_at"},
		admin.WithReadOnly("created_at"))
	if err != nil {
		return nil, err
	}
	filters, err := sqlbackend.AutoSchema(source.Table(), []string{"id", "user_id"})
	if err != nil {
		return nil, err
	}
	return admin.NewCategoryTable(admin.TableConfig{
		Slug:           "merchant",
		Title:          i18n.T("merchants"),
		Icon:           "mdi-card-account-details-outline",
		Schema:         schema,
		Filters:        filters,
		OrderingFields: []string{"id", "user_id"},
		SearchFields:   []string{"id", "title"},
		Actions:        []admin.Action{source.DeleteAction()},
		Source:         source,
	})
}

func terminalTable(db *sql.DB, meta *sqlbackend.Metadata) (*admin.CategoryTable, error) {
	table, ok := meta.Table("terminal")
	if !ok {
		return nil, fmt.Errorf("%w: terminal", sqlbackend.ErrTableNotFound)
	}
	newUUID := func() any { return uuid.NewString() }
	for _, col := range []string{"secret_key", "public_id"} {
		if err := table.SetDefault(col, newUUID); err != nil {
			return nil, err
		}
	}

	source, err := sqlbackend.New(db, meta, "terminal")
	if err != nil {
		return nil, err
	}
	schema, err := sqlbackend.AutoSchema(table, nil,
		admin.WithReadOnly("created_at"),
		admin.WithListDisplay("id", "merchant_id", "public_id", "title", "is_h2h", "imitation_api", "test_mode", "is_active"))
	if err != nil {
		return nil, err
	}
	filters, err := admin.NewFieldsSchema([]admin.NamedField{
		admin.F("id", &admin.IntegerField{FieldBase: admin.FieldBase{Label: i18n.Raw("ID")}}),
		admin.F("merchant_id", &admin.RelatedField{FieldBase: admin.FieldBase{Label: i18n.T("merchants")}, RelName: "merchant"}),
		admin.F("is_active", &admin.BooleanField{}),
		admin.F("created_at", &admin.DateTimeField{FieldBase: admin.FieldBase{Label: i18n.T("created_at")}, Range: true}),
	})
	if err != nil {
		return nil, err
	}
	return admin.NewCategoryTable(admin.TableConfig{
		Slug:           "terminal",
		Title:          i18n.T("terminals"),
		Icon:           "mdi-console-network-outline",
		Schema:         schema,
		Filters:        filters,
		OrderingFields: []string{"id", "title", "created_at"},
		SearchFields:   []string{"id", "title"},
		Actions:        []admin.Action{source.DeleteAction()},
		Source:         source,
	})
}

func userTable(gdb *gorm.DB) (*admin.CategoryTable, error) {
	source, err := ormbackend.New(gdb, &User{})
	if err != nil {
		return nil, err
	}
	schema, err := ormbackend.AutoSchema(gdb, &User{}, nil,
		admin.WithListDisplay("id", "username", "email", "is_active", "created_at", "last_login"))
	if err != nil {
		return nil, err
	}
	filters, err := admin.NewFieldsSchema([]admin.NamedField{
		admin.F("id", &admin.IntegerField{FieldBase: admin.FieldBase{Label: i18n.Raw("ID")}}),
		admin.F("username", &admin.StringField{}),
		admin.F("is_active", &admin.BooleanField{}),
		admin.F("created_at", &admin.DateTimeField{FieldBase: admin.FieldBase{Label: i18n.T("created_at")}, Range: true}),
		admin.F("last_login", &admin.DateTimeField{Range: true}),
	})
	if err != nil {
		return nil, err
	}
	return admin.NewCategoryTable(admin.TableConfig{
		Slug:           "users",
		Title:          i18n.T("users"),
		Icon:           "mdi-account-details",
		Schema:         schema,
		Filters:        filters,
		OrderingFields: []string{"id", "username"},
		SearchFields:   []string{"username"},
		Actions:        []admin.Action{source.DeleteAction()},
		Source:         source,
	})
}
