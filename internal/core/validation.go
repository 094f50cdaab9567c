// internal/core/validation.go
package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Regular expression for valid table/column names (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var typeArgsRegex = regexp.MustCompile(`^\s*([A-Za-z ]+?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// IsValidIdentifier checks if a string is a valid identifier (table or column name).
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// DeclaredType is a parsed sqlite column declaration such as VARCHAR(255) or NUMERIC(10,2).
type DeclaredType struct {
	Name      string // uppercase base name
	Length    int    // first argument, 0 if absent
	Scale     int    // second argument, 0 if absent
	HasLength bool
}

// ParseDeclaredType parses a column type declaration. ok is false for empty or
// malformed declarations.
func ParseDeclaredType(decl string) (DeclaredType, bool) {
	m := typeArgsRegex.FindStringSubmatch(decl)
	if m == nil {
		return DeclaredType{}, false
	}
	dt := DeclaredType{Name: strings.ToUpper(strings.Join(strings.Fields(m[1]), " "))}
	if m[2] != "" {
		dt.HasLength = true
		dt.Length = atoi(m[2])
	}
	if m[3] != "" {
		dt.Scale = atoi(m[3])
	}
	return dt, true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// HumanizeSlug turns "merchant_id" into "Merchant id".
func HumanizeSlug(slug string) string {
	s := strings.TrimSpace(strings.ReplaceAll(slug, "_", " "))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return slug
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
