// Package i18n resolves user-facing strings for the admin API.
//
// Strings are carried around as Text values and only turned into a concrete
// language at the HTTP boundary, through a Manager selected per request.
package i18n

import (
	"fmt"
	"sort"
	"strings"
)

// Text is a user-facing string. It is either a phrase slug looked up in the
// phrase tables or a literal that is returned untouched.
type Text struct {
	slug    string
	literal string
	args    map[string]any
}

// T returns a translatable text for the given phrase slug.
func T(slug string) Text {
	return Text{slug: slug}
}

// Raw returns a text that is never translated.
func Raw(s string) Text {
	return Text{literal: s}
}

// With returns a copy of t carrying substitution arguments. Phrases refer to
// them as {name}.
func (t Text) With(args map[string]any) Text {
	merged := make(map[string]any, len(t.args)+len(args))
	for k, v := range t.args {
		merged[k] = v
	}
	for k, v := range args {
		merged[k] = v
	}
	t.args = merged
	return t
}

// IsZero reports whether t holds neither a slug nor a literal.
func (t Text) IsZero() bool {
	return t.slug == "" && t.literal == ""
}

// Slug returns the phrase slug, empty for literals.
func (t Text) Slug() string {
	return t.slug
}

// String renders t without a phrase table: literals as-is, slugs as the slug.
func (t Text) String() string {
	if t.slug == "" {
		return t.literal
	}
	return format(t.slug, t.args)
}

func format(phrase string, args map[string]any) string {
	if len(args) == 0 {
		return phrase
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(args)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(args[k]))
	}
	return strings.NewReplacer(pairs...).Replace(phrase)
}
