package dialects

import (
	"regexp"
	"strings"
)

var (
	// plainNameRegex matches identifiers, dotted identifiers and table.* selectors.
	plainNameRegex = regexp.MustCompile(`^(\*|[\w$]+(\.[\w$]+)*(\.\*)?)$`)

	// aliasRegex splits "expr AS alias".
	aliasRegex = regexp.MustCompile(`(?is)^(.+?)\s+AS\s+([\w$]+)$`)
)

// quoteName implements Dialect.QuoteName for a given identifier quoter.
//
//	users          -> `users`
//	users.id       -> `users`.`id`
//	users.*        -> `users`.*
//	users.id AS u  -> `users`.`id` AS `u`
//	COUNT(!u.id)   -> COUNT(`u`.`id`)
func quoteName(quote func(string) string, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}

	if m := aliasRegex.FindStringSubmatch(name); m != nil {
		return quoteName(quote, m[1]) + " AS " + quote(m[2])
	}

	if !plainNameRegex.MatchString(name) {
		return quoteSQL(quote, name)
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if part == "*" {
			continue
		}
		parts[i] = quote(part)
	}
	return strings.Join(parts, ".")
}

// quoteSQL implements Dialect.QuoteSQL. String literals and already quoted
// identifiers are copied verbatim.
func quoteSQL(quote func(string) string, sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 16)

	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(sql, i)
			b.WriteString(sql[i:end])
			i = end

		case c == '!' && i+1 < len(sql) && isNameStart(sql[i+1]):
			end := i + 1
			for end < len(sql) && (isNameChar(sql[end]) || sql[end] == '.') {
				end++
			}
			ref := strings.TrimRight(sql[i+1:end], ".")
			end = i + 1 + len(ref)
			b.WriteString(quoteName(quote, ref))
			i = end

		case (c == '{' || c == '[') && i+1 < len(sql) && sql[i+1] == c:
			closing := "}}"
			if c == '[' {
				closing = "]]"
			}
			j := strings.Index(sql[i+2:], closing)
			if j < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			ident := strings.TrimSpace(sql[i+2 : i+2+j])
			parts := strings.Split(ident, ".")
			for k, part := range parts {
				parts[k] = quote(strings.TrimSpace(part))
			}
			b.WriteString(strings.Join(parts, "."))
			i += 2 + j + 2

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// skipQuoted returns the index just past the quoted section starting at i.
// A doubled quote character is an escaped quote.
func skipQuoted(s string, i int) int {
	q := s[i]
	j := i + 1
	for j < len(s) {
		if s[j] == '\\' && q == '\'' && j+1 < len(s) {
			j += 2
			continue
		}
		if s[j] == q {
			if j+1 < len(s) && s[j+1] == q {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return len(s)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '$' || c == '*'
}

// Rebind rewrites "?" placeholders to the dialect's positional form,
// skipping string literals and quoted identifiers.
func Rebind(d Dialect, sql string) string {
	if d.Placeholder(1) == "?" || !strings.Contains(sql, "?") {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 16)
	n := 0
	for i := 0; i < len(sql); {
		c := sql[i]
		switch c {
		case '\'', '"', '`':
			end := skipQuoted(sql, i)
			b.WriteString(sql[i:end])
			i = end
		case '?':
			n++
			b.WriteString(d.Placeholder(n))
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// CountPlaceholders counts "?" placeholders outside of literals and quoted identifiers.
func CountPlaceholders(sql string) int {
	n := 0
	for i := 0; i < len(sql); {
		switch sql[i] {
		case '\'', '"', '`':
			i = skipQuoted(sql, i)
		case '?':
			n++
			i++
		default:
			i++
		}
	}
	return n
}
