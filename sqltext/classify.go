package sqltext

// Kind tags a statement by the shape of result its execution produces.
type Kind int

const (
	// KindExecute marks side-effecting statements that return at most an
	// affected-row count (INSERT, CREATE, GRANT, ...).
	KindExecute Kind = iota

	// KindFetch marks row-producing statements (SELECT, SHOW, ...).
	KindFetch

	// KindError is never returned by Classify; it tags results of
	// statements that failed during execution.
	KindError
)

func (kind Kind) String() string {
	switch kind {
	case KindFetch:
		return "fetch"
	case KindExecute:
		return "execute"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// fetchKeywords are the leading keywords of row-producing statements.
var fetchKeywords = map[string]bool{
	"SELECT":   true,
	"VALUES":   true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
	"DESCRIBE": true,
	"DESC":     true,
}

// Classify reports whether a statement is expected to produce rows. The
// statement is assumed to be comment-stripped. Matching is case-insensitive
// and keyword-boundary-aware (SELECTOR does not match SELECT). A statement
// opening with WITH is resolved by walking its CTE list to the terminal
// keyword; if the CTE prefix is malformed the statement is treated as a
// fetch, the safe default for anything that starts with WITH. Classification
// always succeeds; execution-time failures are surfaced separately.
func Classify(statement string) Kind {
	word, next := scanWord(statement, 0)
	if word == "" {
		return KindExecute
	}
	if fetchKeywords[word] {
		return KindFetch
	}
	if word == "WITH" {
		return classifyAfterWith(statement, next)
	}
	return KindExecute
}

// classifyAfterWith walks "name AS ( ... ) [, name AS ( ... )]..." and
// classifies by the keyword that follows the final CTE.
func classifyAfterWith(s string, pos int) Kind {
	word, next := scanWord(s, pos)
	if word == "RECURSIVE" {
		word, next = scanWord(s, next)
	}

	for {
		if word == "" {
			return KindFetch
		}

		// word is the CTE name; allow an optional column list, then require
		// AS and a balanced parenthesized sub-expression.
		if j := skipSpace(s, next); j < len(s) && s[j] == '(' {
			cols, ok := skipBalanced(s, j)
			if !ok {
				return KindFetch
			}
			next = cols
		}
		kw, afterAs := scanWord(s, next)
		if kw != "AS" {
			return KindFetch
		}
		i := skipSpace(s, afterAs)
		if i >= len(s) || s[i] != '(' {
			return KindFetch
		}
		i, ok := skipBalanced(s, i)
		if !ok {
			return KindFetch
		}

		i = skipSpace(s, i)
		if i < len(s) && s[i] == ',' {
			word, next = scanWord(s, i+1)
			continue
		}

		terminal, _ := scanWord(s, i)
		if terminal == "" || fetchKeywords[terminal] {
			return KindFetch
		}
		return KindExecute
	}
}

// scanWord returns the next identifier-like word, uppercased, together with
// the index just past it. It returns "" when the next non-space character is
// not a word character.
func scanWord(s string, pos int) (string, int) {
	i := skipSpace(s, pos)
	start := i
	for i < len(s) && isWordChar(s[i]) {
		i++
	}
	if i == start {
		return "", i
	}
	return toUpper(s[start:i]), i
}

// skipBalanced consumes a parenthesized group starting at s[pos] == '(' and
// returns the index just past the matching ')'. Parentheses and semicolons
// inside string literals do not count toward the depth.
func skipBalanced(s string, pos int) (int, bool) {
	depth := 0
	mode := modeNormal
	for i := pos; i < len(s); i++ {
		ch := s[i]
		switch mode {
		case modeSingleQuote:
			if ch == '\'' {
				mode = modeNormal
			}
		case modeDoubleQuote:
			if ch == '"' {
				mode = modeNormal
			}
		default:
			switch ch {
			case '\'':
				mode = modeSingleQuote
			case '"':
				mode = modeDoubleQuote
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i + 1, true
				}
			}
		}
	}
	return len(s), false
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n' || s[pos] == '\r') {
		pos++
	}
	return pos
}

func isWordChar(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') || ch == '_'
}

// toUpper uppercases ASCII without allocating when the input already is.
func toUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := make([]byte, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] >= 'a' && s[j] <= 'z' {
					b[j] = s[j] - 32
				} else {
					b[j] = s[j]
				}
			}
			return string(b)
		}
	}
	return s
}
