// Package db provides the batch execution engine for SQL scripts.
//
// An Engine resolves a database URL to a driver, owns the underlying pool,
// and hands out Conn sessions. The Executor drives a Conn through an ordered
// list of statements, classifying each as row-producing or side-effecting
// and collecting one StatementResult per statement.
//
// # Engine Usage
//
//	engine, err := db.OpenEngine("sqlite://app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	conn, err := engine.Conn(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	executor := db.NewExecutor(engine.Metrics())
//	batch, err := executor.ExecuteBatch(ctx, conn, sqltext.Statements(script), false)
//
// # Failure policy
//
// With stop-on-error enabled the batch runs in a single transaction and the
// first failing statement rolls the whole batch back. With it disabled each
// statement runs under its own savepoint, so a failure discards only that
// statement's effect and the surviving statements commit together.
//
// # Errors
//
// A failing statement is recorded in its StatementResult and never aborts
// ExecuteBatch by itself. Failures of the session plumbing - begin, commit,
// rollback, savepoints, an unreachable store - surface as *ConnError from
// ExecuteBatch, and no BatchResult is produced.
package db
