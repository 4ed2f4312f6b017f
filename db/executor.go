package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkessler/sqlrun/sqltext"
)

// Executor runs statement batches on a connection. Two failure policies are
// supported: stop-on-error runs the whole batch in one transaction and rolls
// everything back at the first statement failure, while continue-on-error
// isolates each statement behind a savepoint so earlier and later successes
// still commit.
//
// Statement failures are recorded in the returned results and never surface
// as an error from ExecuteBatch. Connection and transaction plumbing
// failures abort the batch and return an error instead.
type Executor struct {
	metrics *Metrics
}

// NewExecutor creates an executor recording into metrics, which may be nil.
func NewExecutor(metrics *Metrics) *Executor {
	return &Executor{metrics: metrics}
}

// ExecuteBatch runs statements in order on conn under the given failure
// policy. The returned results are in attempt order; statements after an
// aborting failure under stop-on-error are never attempted and get no
// result entry.
func (executor *Executor) ExecuteBatch(ctx context.Context, conn Conn, statements []string, stopOnError bool) (*BatchResult, error) {
	batch := &BatchResult{ID: uuid.NewString()}
	started := time.Now()

	if err := conn.Begin(ctx); err != nil {
		return nil, err
	}

	var err error
	if stopOnError {
		err = executor.runStopOnError(ctx, conn, statements, batch)
	} else {
		err = executor.runIsolated(ctx, conn, statements, batch)
	}
	if err != nil {
		conn.Rollback()
		return nil, err
	}

	batch.finalize(time.Since(started))
	return batch, nil
}

// runStopOnError executes the batch as a single all-or-nothing transaction.
// The first statement failure is recorded as the final result and the whole
// transaction is rolled back.
func (executor *Executor) runStopOnError(ctx context.Context, conn Conn, statements []string, batch *BatchResult) error {
	for _, statement := range statements {
		result, err := executor.executeOne(ctx, conn, statement)
		if err != nil {
			return err
		}
		batch.Results = append(batch.Results, result)
		if !result.OK() {
			return conn.Rollback()
		}
	}
	return conn.Commit()
}

// runIsolated wraps every statement in its own savepoint. Failed statements
// are rolled back individually and the surviving work commits at the end.
func (executor *Executor) runIsolated(ctx context.Context, conn Conn, statements []string, batch *BatchResult) error {
	for i, statement := range statements {
		name := fmt.Sprintf("sqlrun_sp_%d", i)
		if err := conn.Savepoint(ctx, name); err != nil {
			return err
		}

		result, err := executor.executeOne(ctx, conn, statement)
		if err != nil {
			return err
		}

		if result.OK() {
			if err := conn.Release(ctx, name); err != nil {
				return err
			}
		} else {
			if err := conn.RollbackTo(ctx, name); err != nil {
				return err
			}
			if err := conn.Release(ctx, name); err != nil {
				return err
			}
		}
		batch.Results = append(batch.Results, result)
	}
	return conn.Commit()
}

// executeOne classifies and runs a single statement. Statement-level
// failures come back inside the result; connection-level failures come back
// as the error.
func (executor *Executor) executeOne(ctx context.Context, conn Conn, statement string) (StatementResult, error) {
	kind := sqltext.Classify(statement)
	started := time.Now()

	if kind == sqltext.KindFetch {
		set, err := conn.Query(ctx, statement)
		elapsed := time.Since(started)
		if err != nil {
			return executor.failure(statement, elapsed, err)
		}
		executor.record(sqltext.KindFetch, elapsed)
		return StatementResult{
			Statement: statement,
			Kind:      sqltext.KindFetch,
			Rows:      set,
			RowCount:  len(set.Rows),
			Elapsed:   elapsed,
		}, nil
	}

	affected, err := conn.Exec(ctx, statement)
	elapsed := time.Since(started)
	if err != nil {
		return executor.failure(statement, elapsed, err)
	}
	executor.record(sqltext.KindExecute, elapsed)
	return StatementResult{
		Statement: statement,
		Kind:      sqltext.KindExecute,
		Affected:  affected,
		Elapsed:   elapsed,
	}, nil
}

// failure converts an execution error into either an error-kind result or,
// for connection-level failures, a batch-aborting error.
func (executor *Executor) failure(statement string, elapsed time.Duration, err error) (StatementResult, error) {
	if IsConnError(err) {
		return StatementResult{}, err
	}

	executor.record(sqltext.KindError, elapsed)
	message := err.Error()
	var stmtErr *StatementError
	if errors.As(err, &stmtErr) {
		message = stmtErr.Err.Error()
	}
	return StatementResult{
		Statement: statement,
		Kind:      sqltext.KindError,
		Err:       message,
		Elapsed:   elapsed,
	}, nil
}

func (executor *Executor) record(kind sqltext.Kind, elapsed time.Duration) {
	if executor.metrics == nil {
		return
	}
	switch kind {
	case sqltext.KindFetch:
		executor.metrics.recordFetch(elapsed)
	case sqltext.KindError:
		executor.metrics.recordError(elapsed)
	default:
		executor.metrics.recordExecute(elapsed)
	}
}
