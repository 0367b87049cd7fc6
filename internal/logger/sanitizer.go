package logger

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultSensitiveFields are the column name fragments masked by a
// Sanitizer created without explicit fields.
var DefaultSensitiveFields = []string{
	"password", "passwd", "pwd",
	"token", "api_key", "apikey",
	"secret", "auth",
	"credit_card", "card_number", "cvv", "cvc",
	"ssn", "private_key",
}

const maskValue = "***REDACTED***"

// Sanitizer masks statement params bound to sensitive columns before they
// are logged. A param is attributed to the column compared against its
// placeholder, or to its position in the column list of an INSERT. Params
// that cannot be attributed are masked when the statement mentions any
// sensitive column at all.
type Sanitizer struct {
	fields []string
}

// NewSanitizer creates a sanitizer for the given column name fragments;
// none means DefaultSensitiveFields. Matching is case-insensitive.
func NewSanitizer(fields []string) *Sanitizer {
	if len(fields) == 0 {
		fields = DefaultSensitiveFields
	}
	lower := make([]string, len(fields))
	for i, f := range fields {
		lower[i] = strings.ToLower(f)
	}
	return &Sanitizer{fields: lower}
}

// IsSensitive reports whether a column name contains a sensitive fragment.
func (s *Sanitizer) IsSensitive(column string) bool {
	column = strings.ToLower(column)
	for _, f := range s.fields {
		if strings.Contains(column, f) {
			return true
		}
	}
	return false
}

// MaskParams returns params with sensitive values replaced. params is not
// modified; it is returned as is when nothing needs masking.
func (s *Sanitizer) MaskParams(sql string, params []any) []any {
	if len(params) == 0 || !s.IsSensitive(sql) {
		return params
	}

	columns := placeholderColumns(sql)
	masked := make([]any, len(params))
	for i, p := range params {
		column := ""
		if i < len(columns) {
			column = columns[i]
		}
		if column == "" || s.IsSensitive(column) {
			masked[i] = maskValue
		} else {
			masked[i] = p
		}
	}
	return masked
}

// FormatParams renders params for a log line, truncating long values.
func (s *Sanitizer) FormatParams(params []any) string {
	if len(params) == 0 {
		return "[]"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatValue(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	var str string
	if b, ok := v.([]byte); ok {
		str = string(b)
	} else {
		str = fmt.Sprintf("%v", v)
	}
	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

var skippedWords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "IN": true, "IS": true, "LIKE": true,
	"BETWEEN": true, "ESCAPE": true, "SET": true, "WHERE": true, "HAVING": true,
	"ON": true, "VALUES": true, "NULL": true, "LIMIT": true, "OFFSET": true,
}

// placeholderColumns returns, for each placeholder of sql in order, the
// column it is bound to or "" when unknown.
func placeholderColumns(sql string) []string {
	tokens := tokenize(sql)

	var insertColumns []string
	if len(tokens) > 0 && strings.EqualFold(tokens[0].text, "INSERT") {
		insertColumns = insertColumnList(tokens)
	}

	var (
		out      []string
		last     string
		inValues bool
		depth    int
		position int
	)
	for _, t := range tokens {
		switch t.kind {
		case tokenWord:
			if insertColumns != nil && strings.EqualFold(t.text, "VALUES") {
				inValues = true
			}
			if !skippedWords[strings.ToUpper(t.text)] {
				last = t.text
			}
		case tokenPunct:
			switch t.text {
			case "(":
				depth++
				if depth == 1 {
					position = 0
				}
			case ")":
				depth--
			case ",":
				if depth == 1 {
					position++
				}
			}
		case tokenPlaceholder:
			switch {
			case inValues && depth == 1 && position < len(insertColumns):
				out = append(out, insertColumns[position])
			case inValues:
				out = append(out, "")
			default:
				out = append(out, last)
			}
		}
	}
	return out
}

// insertColumnList returns the names of the first parenthesized list of
// an INSERT statement.
func insertColumnList(tokens []token) []string {
	columns := []string{}
	open := false
	for _, t := range tokens {
		switch {
		case t.kind == tokenWord && strings.EqualFold(t.text, "VALUES"), t.kind == tokenWord && strings.EqualFold(t.text, "SELECT"):
			return columns
		case t.kind == tokenPunct && t.text == "(":
			open = true
		case t.kind == tokenPunct && t.text == ")":
			return columns
		case open && t.kind == tokenWord:
			columns = append(columns, t.text)
		}
	}
	return columns
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenPunct
	tokenPlaceholder
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits sql into words (bare or quoted identifiers, with the
// table prefix of dotted names dropped), punctuation and placeholders.
// String literals are skipped.
func tokenize(sql string) []token {
	var out []token
	rs := []rune(sql)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\'':
			j := i + 1
			for j < len(rs) {
				if rs[j] == '\'' {
					if j+1 < len(rs) && rs[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			i = j
		case r == '"' || r == '`' || r == '[':
			end := r
			if r == '[' {
				end = ']'
			}
			j := i + 1
			for j < len(rs) && rs[j] != end {
				j++
			}
			out = appendWord(out, string(rs[i+1:min(j, len(rs))]))
			i = j
		case r == '?':
			out = append(out, token{kind: tokenPlaceholder})
		case r == '$' && i+1 < len(rs) && unicode.IsDigit(rs[i+1]):
			for i+1 < len(rs) && unicode.IsDigit(rs[i+1]) {
				i++
			}
			out = append(out, token{kind: tokenPlaceholder})
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			j := i
			for j < len(rs) && (rs[j] == '_' || rs[j] == '$' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			out = appendWord(out, string(rs[i:j]))
			i = j - 1
		case r == '(' || r == ')' || r == ',':
			out = append(out, token{kind: tokenPunct, text: string(r)})
		case r == '.':
			// the next word replaces the table name
			if n := len(out); n > 0 && out[n-1].kind == tokenWord {
				out = out[:n-1]
			}
		}
	}
	return out
}

func appendWord(out []token, w string) []token {
	return append(out, token{kind: tokenWord, text: w})
}
