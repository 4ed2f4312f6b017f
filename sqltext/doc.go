// Package sqltext provides lexical processing of raw SQL script text.
//
// It splits multi-statement scripts into individual statements and decides,
// per statement, whether executing it is expected to produce rows. It is
// deliberately not a SQL parser: everything here works on the leading
// keywords and on quote/comment/parenthesis structure, so it is
// dialect-agnostic and total over arbitrary input.
//
// # Pipeline
//
//	clean := sqltext.StripComments(raw)        // usually implicit via Split
//	statements := sqltext.Split(raw, false)
//	for _, stmt := range statements {
//	    kind := sqltext.Classify(stmt)
//	    // KindFetch -> expect a row set, KindExecute -> expect a row count
//	}
//
// Comment-like sequences and semicolons inside quoted string literals are
// always preserved; splitting only happens on semicolons that sit outside
// quotes and outside any open parenthesis.
package sqltext
