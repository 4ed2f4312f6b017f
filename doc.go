// Package sqlrun executes multi-statement SQL scripts against a database
// with validation, per-statement results, and resilience around transient
// connection failures.
//
// # Quick Start
//
// Run a script against an in-memory SQLite database:
//
//	cfg := config.Default()
//	instance, _ := sqlrun.Open(cfg)
//	defer instance.Close()
//
//	batch, _ := instance.RunScript(context.Background(), `
//	    CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
//	    INSERT INTO users (name) VALUES ('Alice');
//	    SELECT * FROM users;
//	`, true)
//	batch.Display()
//
// Scripts are stripped of comments, split on statement boundaries, and each
// statement is classified as a fetch (rows come back) or an execute (an
// affected-row count comes back) before running. Classification understands
// common table expressions, so a WITH-prefixed DELETE still runs as an
// execute.
//
// # Failure Policies
//
// With stopOnError true the whole script runs in one transaction: the first
// failing statement is recorded as the final result and everything rolls
// back. With stopOnError false each statement runs behind its own
// savepoint, failed statements are recorded and undone individually, and
// the surviving work commits.
//
// # Resilience
//
// Batch execution is guarded by a retry policy with exponential backoff and
// a circuit breaker. Both act only on connection-level failures; a
// statement rejected by the database is never retried.
package sqlrun
