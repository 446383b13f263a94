package output

import (
	"strings"
)

// Repair is one text rewrite applied before a parse attempt.
type Repair struct {
	Name  string
	Apply func(string) string
}

// Repairs run cumulatively, least invasive first. The last step turns
// single-quoted strings into JSON strings; an apostrophe outside any string
// literal will be taken for an opening quote.
var Repairs = []Repair{
	{Name: "smart_quotes", Apply: NormalizeSmartQuotes},
	{Name: "strip_comments", Apply: StripComments},
	{Name: "trailing_commas", Apply: RemoveTrailingCommas},
	{Name: "quote_keys", Apply: QuoteUnquotedKeys},
	{Name: "single_quotes", Apply: SingleToDoubleQuotes},
}

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
)

// NormalizeSmartQuotes maps typographic quotes to ASCII.
func NormalizeSmartQuotes(s string) string {
	return smartQuotes.Replace(s)
}

// scanner walks s tracking string literals delimited by ' or ".
type scanner struct {
	s       string
	i       int
	quote   byte
	escaped bool
}

// step advances the literal state for s[i] and reports whether s[i]
// belongs to a string literal (delimiters included).
func (sc *scanner) step() bool {
	c := sc.s[sc.i]
	if sc.quote != 0 {
		switch {
		case sc.escaped:
			sc.escaped = false
		case c == '\\':
			sc.escaped = true
		case c == sc.quote:
			sc.quote = 0
		}
		return true
	}
	if c == '"' || c == '\'' {
		sc.quote = c
		return true
	}
	return false
}

// StripComments removes // line and /* block */ comments outside strings.
func StripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	sc := &scanner{s: s}
	for sc.i = 0; sc.i < len(s); sc.i++ {
		if sc.step() {
			b.WriteByte(s[sc.i])
			continue
		}
		if s[sc.i] == '/' && sc.i+1 < len(s) {
			switch s[sc.i+1] {
			case '/':
				end := strings.IndexByte(s[sc.i:], '\n')
				if end < 0 {
					sc.i = len(s)
				} else {
					sc.i += end - 1
				}
				continue
			case '*':
				end := strings.Index(s[sc.i+2:], "*/")
				if end < 0 {
					sc.i = len(s)
				} else {
					sc.i += end + 3
				}
				continue
			}
		}
		b.WriteByte(s[sc.i])
	}
	return b.String()
}

// RemoveTrailingCommas drops a comma that is followed only by whitespace and
// a closing } or ].
func RemoveTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	sc := &scanner{s: s}
	for sc.i = 0; sc.i < len(s); sc.i++ {
		if sc.step() {
			b.WriteByte(s[sc.i])
			continue
		}
		if s[sc.i] == ',' {
			j := sc.i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(s[sc.i])
	}
	return b.String()
}

// QuoteUnquotedKeys wraps bare identifier keys in double quotes.
func QuoteUnquotedKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	sc := &scanner{s: s}
	expectKey := false
	for sc.i = 0; sc.i < len(s); sc.i++ {
		if sc.step() {
			expectKey = false
			b.WriteByte(s[sc.i])
			continue
		}
		c := s[sc.i]
		switch {
		case c == '{' || c == ',':
			expectKey = true
		case isSpace(c):
		case expectKey && isIdentStart(c):
			j := sc.i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			k := j
			for k < len(s) && isSpace(s[k]) {
				k++
			}
			if k < len(s) && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[sc.i:j])
				b.WriteByte('"')
				sc.i = j - 1
				expectKey = false
				continue
			}
			expectKey = false
		default:
			expectKey = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// SingleToDoubleQuotes rewrites '...' literals as "..." literals, escaping
// embedded double quotes and unescaping \'.
func SingleToDoubleQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch quote {
		case 0:
			if c == '"' || c == '\'' {
				quote = c
				b.WriteByte('"')
				continue
			}
			b.WriteByte(c)
		case '"':
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				quote = 0
			}
		case '\'':
			switch {
			case escaped:
				escaped = false
				if c == '\'' {
					b.WriteByte('\'')
				} else {
					b.WriteByte('\\')
					b.WriteByte(c)
				}
			case c == '\\':
				escaped = true
			case c == '\'':
				quote = 0
				b.WriteByte('"')
			case c == '"':
				b.WriteString(`\"`)
			default:
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
