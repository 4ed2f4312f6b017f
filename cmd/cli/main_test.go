package main

import (
	"testing"

	"github.com/mkessler/sqlrun/db"
	"github.com/mkessler/sqlrun/security"
	"github.com/mkessler/sqlrun/sqltext"
)

func TestOpenSecurityClearsEverything(t *testing.T) {
	cfg := openSecurity(security.DefaultConfig())

	if len(cfg.DangerousSQLPatterns) != 0 || len(cfg.DangerousPathPatterns) != 0 {
		t.Error("pattern lists not cleared")
	}
	if len(cfg.AllowedExtensions) != 0 {
		t.Error("extension list not cleared")
	}
	if cfg.MaxFileSizeMB != 0 || cfg.MaxStatements != 0 || cfg.MaxStatementLength != 0 {
		t.Error("limits not cleared")
	}

	validator := security.NewValidator(cfg)
	if err := validator.ValidateSQL("DROP DATABASE anything"); err != nil {
		t.Errorf("open validator rejected content: %v", err)
	}
	if err := validator.ValidateScriptPath("/etc/whatever.txt"); err != nil {
		t.Errorf("open validator rejected path: %v", err)
	}
}

func TestBatchRecords(t *testing.T) {
	batch := &db.BatchResult{
		Results: []db.StatementResult{
			{
				Statement: "SELECT name FROM users",
				Kind:      sqltext.KindFetch,
				Rows: &db.RowSet{
					Columns: []string{"name"},
					Rows:    []db.Row{{"name": "Alice"}},
				},
				RowCount: 1,
			},
			{
				Statement: "UPDATE users SET name = 'Bob'",
				Kind:      sqltext.KindExecute,
				Affected:  1,
			},
			{
				Statement: "INSERT INTO missing (x) VALUES (1)",
				Kind:      sqltext.KindError,
				Err:       "no such table: missing",
			},
		},
	}

	records := batchRecords(batch)
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	fetch := records[0]
	if fetch.Type != "fetch" || fetch.RowCount != 1 || len(fetch.Rows) != 1 {
		t.Errorf("fetch record = %+v", fetch)
	}
	if fetch.Affected != nil {
		t.Error("fetch record carries an affected count")
	}

	execute := records[1]
	if execute.Type != "execute" || execute.Affected == nil || *execute.Affected != 1 {
		t.Errorf("execute record = %+v", execute)
	}
	if execute.Rows != nil {
		t.Error("execute record carries rows")
	}

	failure := records[2]
	if failure.Type != "error" || failure.Error == "" {
		t.Errorf("error record = %+v", failure)
	}
	if failure.Affected != nil {
		t.Error("error record carries an affected count")
	}
}

func TestTruncateStatement(t *testing.T) {
	if got := truncateStatement("SELECT   1"); got != "SELECT 1" {
		t.Errorf("collapse = %q", got)
	}

	long := "SELECT 'aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa'"
	got := truncateStatement(long)
	if len(got) != 72 {
		t.Errorf("truncated length = %d, want 72", len(got))
	}
}
