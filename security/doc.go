// Package security validates SQL script content, script file paths, and
// database URLs before anything reaches the executor.
//
// Validation is a caller-side gate: the CLI and server consult a Validator
// before splitting or executing a script, and a ValidationError aborts the
// whole call before any statement runs. The checks are deliberately
// lexical - dangerous-pattern substring matches, statement count and length
// limits - not a SQL-aware policy engine.
package security
