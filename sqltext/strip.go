package sqltext

import "strings"

// scanMode tracks whether the scanner is inside a quoted string literal.
type scanMode int

const (
	modeNormal scanMode = iota
	modeSingleQuote
	modeDoubleQuote
)

// StripComments removes -- line comments and /* */ block comments from SQL
// text. Comment markers inside single- or double-quoted string literals are
// copied through untouched. Block comments do not nest: the first */ closes
// the comment regardless of any /* seen in between. An unterminated comment
// runs to the end of the input.
func StripComments(text string) string {
	if text == "" {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	mode := modeNormal
	for i := 0; i < len(text); i++ {
		ch := text[i]

		switch mode {
		case modeSingleQuote:
			out.WriteByte(ch)
			if ch == '\'' {
				mode = modeNormal
			}

		case modeDoubleQuote:
			out.WriteByte(ch)
			if ch == '"' {
				mode = modeNormal
			}

		default:
			if ch == '-' && i+1 < len(text) && text[i+1] == '-' {
				// Line comment: discard through end of line, keep the
				// newline so statements on following lines stay separated.
				for i < len(text) && text[i] != '\n' {
					i++
				}
				if i < len(text) {
					out.WriteByte('\n')
				}
				continue
			}
			if ch == '/' && i+1 < len(text) && text[i+1] == '*' {
				i += 2
				for i+1 < len(text) && !(text[i] == '*' && text[i+1] == '/') {
					i++
				}
				i++ // lands on the closing '/', loop increment steps past it
				continue
			}

			out.WriteByte(ch)
			switch ch {
			case '\'':
				mode = modeSingleQuote
			case '"':
				mode = modeDoubleQuote
			}
		}
	}

	return out.String()
}
