package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Row maps column names to values for one result row.
type Row map[string]any

// RowSet is the outcome of a row-producing statement: the column order as
// the store reported it, plus one Row per result row.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// Conn is one database session. The executor borrows a Conn for the
// duration of a batch: it drives the transactional operations but never
// closes the session; releasing it stays with whoever acquired it.
//
// Query and Exec failures are *StatementError; failures of the
// transactional plumbing are *ConnError.
type Conn interface {
	// Query runs a row-producing statement.
	Query(ctx context.Context, statement string) (*RowSet, error)

	// Exec runs a side-effecting statement and returns the affected-row
	// count, or -1 when the driver cannot report one.
	Exec(ctx context.Context, statement string) (int64, error)

	// Begin opens a transaction on this session.
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// Savepoint, Release, and RollbackTo manage nested per-statement
	// isolation inside an open transaction.
	Savepoint(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error

	Ping(ctx context.Context) error
	Close() error
}

// sqlConn adapts a database/sql connection to the Conn interface. It pins a
// single driver session so that transactions and savepoints observe the
// same connection state across calls.
type sqlConn struct {
	conn *sql.Conn
	tx   *sql.Tx
}

func (c *sqlConn) Query(ctx context.Context, statement string) (*RowSet, error) {
	var rows *sql.Rows
	var err error
	if c.tx != nil {
		rows, err = c.tx.QueryContext(ctx, statement)
	} else {
		rows, err = c.conn.QueryContext(ctx, statement)
	}
	if err != nil {
		return nil, &StatementError{Statement: statement, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &StatementError{Statement: statement, Err: err}
	}

	set := &RowSet{Columns: columns}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, &StatementError{Statement: statement, Err: err}
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		set.Rows = append(set.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StatementError{Statement: statement, Err: err}
	}

	return set, nil
}

func (c *sqlConn) Exec(ctx context.Context, statement string) (int64, error) {
	var result sql.Result
	var err error
	if c.tx != nil {
		result, err = c.tx.ExecContext(ctx, statement)
	} else {
		result, err = c.conn.ExecContext(ctx, statement)
	}
	if err != nil {
		return 0, &StatementError{Statement: statement, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		// Some drivers cannot report a count for DDL; that is not a failure.
		return -1, nil
	}
	return affected, nil
}

func (c *sqlConn) Begin(ctx context.Context) error {
	if c.tx != nil {
		return &ConnError{Op: "begin", Err: fmt.Errorf("transaction already open")}
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return &ConnError{Op: "begin", Err: err}
	}
	c.tx = tx
	return nil
}

func (c *sqlConn) Commit() error {
	if c.tx == nil {
		return &ConnError{Op: "commit", Err: fmt.Errorf("no open transaction")}
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return &ConnError{Op: "commit", Err: err}
	}
	return nil
}

func (c *sqlConn) Rollback() error {
	if c.tx == nil {
		return &ConnError{Op: "rollback", Err: fmt.Errorf("no open transaction")}
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil {
		return &ConnError{Op: "rollback", Err: err}
	}
	return nil
}

func (c *sqlConn) Savepoint(ctx context.Context, name string) error {
	return c.txExec(ctx, "savepoint", "SAVEPOINT "+name)
}

func (c *sqlConn) Release(ctx context.Context, name string) error {
	return c.txExec(ctx, "release savepoint", "RELEASE SAVEPOINT "+name)
}

func (c *sqlConn) RollbackTo(ctx context.Context, name string) error {
	return c.txExec(ctx, "rollback to savepoint", "ROLLBACK TO SAVEPOINT "+name)
}

func (c *sqlConn) txExec(ctx context.Context, op, statement string) error {
	if c.tx == nil {
		return &ConnError{Op: op, Err: fmt.Errorf("no open transaction")}
	}
	if _, err := c.tx.ExecContext(ctx, statement); err != nil {
		return &ConnError{Op: op, Err: err}
	}
	return nil
}

func (c *sqlConn) Ping(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return &ConnError{Op: "ping", Err: err}
	}
	return nil
}

func (c *sqlConn) Close() error {
	if c.tx != nil {
		c.tx.Rollback()
		c.tx = nil
	}
	return c.conn.Close()
}

// normalizeValue converts driver byte slices to strings so results print
// and marshal cleanly.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
