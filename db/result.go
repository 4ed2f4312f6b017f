package db

import (
	"fmt"
	"os"
	"time"

	"github.com/mkessler/sqlrun/sqltext"
)

// StatementResult records the outcome of one attempted statement. Exactly
// one of Rows, Affected, or Err carries the outcome, consistent with Kind:
// fetches carry a row set, executes an affected-row count, failures an
// error message.
type StatementResult struct {
	Statement string
	Kind      sqltext.Kind
	Rows      *RowSet
	RowCount  int
	Affected  int64
	Err       string
	Elapsed   time.Duration
}

// OK reports whether the statement succeeded.
func (result StatementResult) OK() bool {
	return result.Kind != sqltext.KindError
}

// BatchResult is the ordered outcome of one batch call. Attempted always
// equals len(Results), and Succeeded plus Failed equals Attempted.
type BatchResult struct {
	ID        string
	Results   []StatementResult
	Attempted int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// finalize derives the aggregate counts from the result sequence.
func (batch *BatchResult) finalize(elapsed time.Duration) {
	batch.Attempted = len(batch.Results)
	batch.Succeeded = 0
	for _, result := range batch.Results {
		if result.OK() {
			batch.Succeeded++
		}
	}
	batch.Failed = batch.Attempted - batch.Succeeded
	batch.Elapsed = elapsed
}

// SuccessRate returns the fraction of attempted statements that succeeded.
func (batch *BatchResult) SuccessRate() float64 {
	if batch.Attempted == 0 {
		return 0
	}
	return float64(batch.Succeeded) / float64(batch.Attempted)
}

// formatDuration formats a duration in human-readable form
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 0.01 {
		return fmt.Sprintf("%dms", int(secs*1000))
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

// ExecutionTime returns the statement's elapsed time in human-readable form.
func (result StatementResult) ExecutionTime() string {
	return formatDuration(result.Elapsed)
}

// ExecutionTime returns the batch's elapsed time in human-readable form.
func (batch *BatchResult) ExecutionTime() string {
	return formatDuration(batch.Elapsed)
}

// Display writes the statement outcome to stdout.
func (result StatementResult) Display() {
	switch result.Kind {
	case sqltext.KindError:
		fmt.Printf("error: %s\n", result.Err)

	case sqltext.KindFetch:
		if result.Rows != nil && len(result.Rows.Rows) > 0 {
			table := NewResultTable(os.Stdout)
			table.FromRowSet(result.Rows)
			table.Render()
		}
		fmt.Printf("%d row(s) (%s)\n", result.RowCount, result.ExecutionTime())

	default:
		if result.Affected >= 0 {
			fmt.Printf("OK, %d row(s) affected (%s)\n", result.Affected, result.ExecutionTime())
		} else {
			fmt.Printf("OK (%s)\n", result.ExecutionTime())
		}
	}
}

// Display writes a batch summary line to stdout.
func (batch *BatchResult) Display() {
	fmt.Printf("%d statement(s): %d succeeded, %d failed (%s)\n",
		batch.Attempted, batch.Succeeded, batch.Failed, batch.ExecutionTime())
}
