package sqltext

import "strings"

// Statement is one statement split out of a script, paired with its
// zero-based position in the batch. Values are never mutated after creation.
type Statement struct {
	Text  string
	Index int
}

// Split breaks SQL text into individual statements. Comments are stripped
// first, then the text is cut at semicolons that sit outside string literals
// and outside any open parenthesis. Segments that are empty, whitespace-only,
// or a bare semicolon are dropped. When stripSemicolon is true the trailing
// semicolon is removed from each returned statement; otherwise it is kept.
func Split(text string, stripSemicolon bool) []string {
	if text == "" {
		return nil
	}

	clean := StripComments(text)

	var statements []string
	var current strings.Builder

	flush := func() {
		trimmed := strings.TrimSpace(current.String())
		current.Reset()
		if trimmed == "" || trimmed == ";" {
			return
		}
		statements = append(statements, trimmed)
	}

	mode := modeNormal
	depth := 0

	for i := 0; i < len(clean); i++ {
		ch := clean[i]

		switch mode {
		case modeSingleQuote:
			current.WriteByte(ch)
			if ch == '\'' {
				mode = modeNormal
			}

		case modeDoubleQuote:
			current.WriteByte(ch)
			if ch == '"' {
				mode = modeNormal
			}

		default:
			switch ch {
			case '\'':
				mode = modeSingleQuote
				current.WriteByte(ch)
			case '"':
				mode = modeDoubleQuote
				current.WriteByte(ch)
			case '(':
				depth++
				current.WriteByte(ch)
			case ')':
				if depth > 0 {
					depth--
				}
				current.WriteByte(ch)
			case ';':
				if depth == 0 {
					if !stripSemicolon {
						current.WriteByte(ch)
					}
					flush()
				} else {
					current.WriteByte(ch)
				}
			default:
				current.WriteByte(ch)
			}
		}
	}

	flush()
	return statements
}

// Statements splits a script and pairs each statement with its batch
// position. Trailing semicolons are preserved.
func Statements(text string) []Statement {
	parts := Split(text, false)
	if len(parts) == 0 {
		return nil
	}
	out := make([]Statement, len(parts))
	for i, part := range parts {
		out[i] = Statement{Text: part, Index: i}
	}
	return out
}
