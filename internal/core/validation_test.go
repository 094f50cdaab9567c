// internal/core/validation_test.go
package core

import (
	"strings"
	"testing"
)

func TestIsValidIdentifier(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    bool
		comment string
	}{
		{"valid simple", "my_table", true, ""},
		{"valid with numbers", "table_123", true, ""},
		{"valid uppercase", "MY_TABLE", true, ""},
		{"valid underscore start", "_table", true, ""},
		{"valid short", "a", true, ""},
		{"valid long (64 chars)", strings.Repeat("a", 64), true, ""},
		{"invalid empty", "", false, "empty string"},
		{"invalid space", "my table", false, "contains space"},
		{"invalid hyphen", "my-table", false, "contains hyphen"},
		{"invalid quote", `id"; DROP TABLE x; --`, false, "injection attempt"},
		{"invalid too long", strings.Repeat("a", 65), false, "exceeds 64 chars"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsValidIdentifier(tc.input)
			if got != tc.want {
				t.Errorf("IsValidIdentifier(%q) = %v; want %v. %s", tc.input, got, tc.want, tc.comment)
			}
		})
	}
}

func TestParseDeclaredType(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		want   DeclaredType
		wantOk bool
	}{
		{"plain", "integer", DeclaredType{Name: "INTEGER"}, true},
		{"varchar", "VARCHAR(255)", DeclaredType{Name: "VARCHAR", Length: 255, HasLength: true}, true},
		{"numeric", "numeric( 10, 2 )", DeclaredType{Name: "NUMERIC", Length: 10, Scale: 2, HasLength: true}, true},
		{"two words", "double  precision", DeclaredType{Name: "DOUBLE PRECISION"}, true},
		{"empty", "", DeclaredType{}, false},
		{"garbage", "VARCHAR(abc)", DeclaredType{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDeclaredType(tc.input)
			if ok != tc.wantOk {
				t.Fatalf("ParseDeclaredType(%q): ok = %v; want %v", tc.input, ok, tc.wantOk)
			}
			if got != tc.want {
				t.Errorf("ParseDeclaredType(%q) = %+v; want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestHumanizeSlug(t *testing.T) {
	testCases := map[string]string{
		"merchant_id":  "Merchant id",
		"title":        "Title",
		"_private__x_": "Private x",
		"ID":           "Id",
		"":             "",
	}
	for in, want := range testCases {
		if got := HumanizeSlug(in); got != want {
			t.Errorf("HumanizeSlug(%q) = %q; want %q", in, got, want)
		}
	}
}
