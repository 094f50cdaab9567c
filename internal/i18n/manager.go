package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Manager translates texts into one language. A nil Manager renders texts
// untranslated.
type Manager struct {
	lang     string
	fallback string
	phrases  Phrases
}

// NewManager returns a manager for lang over the given phrase tables. Unknown
// languages fall back to fallback.
func NewManager(lang, fallback string, phrases Phrases) *Manager {
	return &Manager{lang: lang, fallback: fallback, phrases: phrases}
}

// Language returns the selected language code.
func (m *Manager) Language() string {
	if m == nil {
		return ""
	}
	return m.lang
}

// Get resolves t: requested language first, then the fallback language, then
// the slug itself.
func (m *Manager) Get(t Text) string {
	if t.slug == "" {
		return t.literal
	}
	if m == nil {
		return t.String()
	}

	table, ok := m.phrases[m.lang]
	if !ok {
		table = m.phrases[m.fallback]
	}
	phrase, ok := table[t.slug]
	if !ok || phrase == "" {
		phrase = t.slug
	}
	return format(phrase, t.args)
}

// Language describes one selectable UI language.
type Language struct {
	Code string
	Name Text
}

// Resolver picks a Manager from an Accept-Language header.
type Resolver struct {
	languages []Language
	phrases   Phrases
	tags      []language.Tag
	tagCodes  []string
	matcher   language.Matcher
}

// NewResolver builds a resolver. The first language is the default one.
// Caller phrases are laid over DefaultPhrases.
func NewResolver(languages []Language, phrases Phrases) *Resolver {
	if len(languages) == 0 {
		languages = []Language{{Code: "en", Name: Raw("English")}, {Code: "ru", Name: Raw("Russian")}}
	}

	r := &Resolver{
		languages: languages,
		phrases:   withDefaults(phrases),
	}
	for _, l := range languages {
		tag, err := language.Parse(l.Code)
		if err != nil {
			continue
		}
		r.tags = append(r.tags, tag)
		r.tagCodes = append(r.tagCodes, l.Code)
	}
	if len(r.tags) > 0 {
		r.matcher = language.NewMatcher(r.tags)
	}
	return r
}

// Languages returns the configured languages in declaration order.
func (r *Resolver) Languages() []Language {
	return r.languages
}

// Default returns the default language code.
func (r *Resolver) Default() string {
	return r.languages[0].Code
}

// Manager returns a manager for the best match of acceptLanguage.
func (r *Resolver) Manager(acceptLanguage string) *Manager {
	return NewManager(r.match(acceptLanguage), r.Default(), r.phrases)
}

func (r *Resolver) match(acceptLanguage string) string {
	header := strings.TrimSpace(acceptLanguage)
	if header == "" {
		return r.Default()
	}

	// Exact codes win so non-BCP47 codes keep working.
	first := strings.TrimSpace(strings.SplitN(strings.SplitN(header, ",", 2)[0], ";", 2)[0])
	for _, l := range r.languages {
		if strings.EqualFold(l.Code, first) {
			return l.Code
		}
	}

	if r.matcher == nil {
		return r.Default()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return r.Default()
	}
	_, idx, confidence := r.matcher.Match(tags...)
	if confidence == language.No {
		return r.Default()
	}
	return r.tagCodes[idx]
}
