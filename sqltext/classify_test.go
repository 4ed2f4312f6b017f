package sqltext

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected Kind
	}{
		{"select", "SELECT 1", KindFetch},
		{"select lowercase", "select * from users", KindFetch},
		{"select with trailing semicolon", "SELECT * FROM users;", KindFetch},
		{"select with subquery", "SELECT * FROM users WHERE id IN (SELECT user_id FROM posts)", KindFetch},
		{"values", "VALUES (1), (2)", KindFetch},
		{"show", "SHOW TABLES", KindFetch},
		{"explain", "EXPLAIN SELECT * FROM users", KindFetch},
		{"pragma", "PRAGMA table_info(users)", KindFetch},
		{"describe", "DESCRIBE users", KindFetch},
		{"desc", "DESC users", KindFetch},

		{"insert", "INSERT INTO t VALUES (1)", KindExecute},
		{"insert from select", "INSERT INTO t SELECT * FROM s", KindExecute},
		{"update", "UPDATE users SET name = 'x' WHERE id = 1", KindExecute},
		{"delete", "DELETE FROM users", KindExecute},
		{"create table", "CREATE TABLE t (id INT)", KindExecute},
		{"alter", "ALTER TABLE t ADD COLUMN c INT", KindExecute},
		{"drop", "DROP TABLE t", KindExecute},
		{"truncate", "TRUNCATE t", KindExecute},
		{"grant", "GRANT SELECT ON t TO alice", KindExecute},
		{"vacuum", "VACUUM", KindExecute},
		{"unrecognized keyword", "FROBNICATE the database", KindExecute},
		{"empty statement", "", KindExecute},
		{"whitespace only", "   \n\t", KindExecute},

		// Keyword matching is boundary-aware.
		{"selector is not select", "SELECTOR FROM t", KindExecute},
		{"description is not desc", "DESCRIPTION", KindExecute},

		// CTE lookahead.
		{"cte select", "WITH c AS (SELECT 1) SELECT * FROM c", KindFetch},
		{"cte lowercase", "with c as (select 1) select * from c", KindFetch},
		{"cte insert", "WITH c AS (SELECT 1) INSERT INTO t SELECT * FROM c", KindExecute},
		{"cte update", "WITH c AS (SELECT id FROM t) UPDATE t SET x = 1 WHERE id IN (SELECT id FROM c)", KindExecute},
		{"cte delete", "WITH c AS (SELECT id FROM t) DELETE FROM t WHERE id IN (SELECT id FROM c)", KindExecute},
		{"recursive cte", "WITH RECURSIVE c(n) AS (VALUES(1) UNION SELECT n+1 FROM c) SELECT n FROM c", KindFetch},
		{
			"multiple ctes",
			"WITH a AS (SELECT 1), b AS (SELECT 2) SELECT * FROM a JOIN b",
			KindFetch,
		},
		{
			"multiple ctes terminating in insert",
			"WITH a AS (SELECT 1), b AS (SELECT 2) INSERT INTO t SELECT * FROM a",
			KindExecute,
		},
		{
			"cte body with quoted parenthesis",
			"WITH c AS (SELECT '(' || name FROM t) SELECT * FROM c",
			KindFetch,
		},
		{
			"cte body with nested parens",
			"WITH c AS (SELECT count(*) FROM (SELECT 1)) SELECT * FROM c",
			KindFetch,
		},

		// Malformed CTE syntax falls back to fetch.
		{"cte missing as", "WITH c (SELECT 1) SELECT * FROM c", KindFetch},
		{"cte as without parens", "WITH c AS SELECT 1", KindFetch},
		{"cte unclosed parens", "WITH c AS (SELECT 1", KindFetch},
		{"bare with", "WITH", KindFetch},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := Classify(test.sql)
			if actual != test.expected {
				t.Errorf("Classify(%q) = %v, want %v", test.sql, actual, test.expected)
			}
		})
	}
}

func TestClassifyCTEColumnList(t *testing.T) {
	// A column list between the CTE name and AS must not derail the walk to
	// the terminal keyword.
	sql := "WITH c(n) AS (SELECT 1) INSERT INTO t SELECT n FROM c"
	if kind := Classify(sql); kind != KindExecute {
		t.Errorf("Classify(%q) = %v, want %v", sql, kind, KindExecute)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindFetch, "fetch"},
		{KindExecute, "execute"},
		{KindError, "error"},
		{Kind(42), "unknown"},
	}

	for _, test := range tests {
		if actual := test.kind.String(); actual != test.expected {
			t.Errorf("Kind(%d).String() = %q, want %q", int(test.kind), actual, test.expected)
		}
	}
}
