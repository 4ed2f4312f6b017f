package sqltext

import (
	"strings"
	"testing"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{
			"empty input",
			"",
			"",
		},
		{
			"no comments",
			"SELECT * FROM users",
			"SELECT * FROM users",
		},
		{
			"line comment to end of line",
			"SELECT 1 -- trailing note\nFROM dual",
			"SELECT 1 \nFROM dual",
		},
		{
			"line comment without newline",
			"SELECT 1 -- trailing note",
			"SELECT 1 ",
		},
		{
			"block comment",
			"SELECT /* inline */ 1",
			"SELECT  1",
		},
		{
			"block comment spanning lines",
			"SELECT 1\n/* first\nsecond */\nFROM dual",
			"SELECT 1\n\nFROM dual",
		},
		{
			"block comments do not nest",
			"SELECT /* outer /* inner */ 1",
			"SELECT  1",
		},
		{
			"unterminated block comment",
			"SELECT 1 /* never closed",
			"SELECT 1 ",
		},
		{
			"line comment marker inside single quotes",
			"SELECT '--not a comment' FROM t",
			"SELECT '--not a comment' FROM t",
		},
		{
			"block comment marker inside single quotes",
			"SELECT '/* keep */' FROM t",
			"SELECT '/* keep */' FROM t",
		},
		{
			"comment marker inside double quotes",
			`SELECT "col--name" FROM t`,
			`SELECT "col--name" FROM t`,
		},
		{
			"comment after quoted literal",
			"SELECT 'a' -- gone\nFROM t",
			"SELECT 'a' \nFROM t",
		},
		{
			"single dash is not a comment",
			"SELECT 5 - 3",
			"SELECT 5 - 3",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := StripComments(test.sql)
			if actual != test.expected {
				t.Errorf("StripComments(%q) = %q, want %q", test.sql, actual, test.expected)
			}
		})
	}
}

func TestStripCommentsRemovesAllMarkers(t *testing.T) {
	sql := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY, -- user id
			name TEXT NOT NULL,     /* user name */
			email TEXT              -- user email
		);
	`
	clean := StripComments(sql)

	if strings.Contains(clean, "--") {
		t.Errorf("expected no line comments, got %q", clean)
	}
	if strings.Contains(clean, "/*") || strings.Contains(clean, "*/") {
		t.Errorf("expected no block comments, got %q", clean)
	}
	for _, keep := range []string{"id INTEGER PRIMARY KEY", "name TEXT NOT NULL", "email TEXT"} {
		if !strings.Contains(clean, keep) {
			t.Errorf("expected %q to survive stripping, got %q", keep, clean)
		}
	}
}
