// Package security screens statements for injection patterns and writes
// audit records of executed statements.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrDangerousSQL is returned for a statement matching a blocked pattern.
var ErrDangerousSQL = errors.New("dangerous SQL pattern")

// ErrSuspiciousParam is returned for a param that looks like an injection.
var ErrSuspiciousParam = errors.New("suspicious parameter")

// Validator rejects statements and params matching known injection
// patterns. Statements built from conditions never contain such patterns
// unless raw fragments carry them.
type Validator struct {
	patterns []*regexp.Regexp
	strict   bool
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithStrict also blocks tautologies such as "OR 1 = 1". Strict mode
// rejects the "1 = 0" and "1 = 1" placeholders rendered for empty IN
// lists.
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) { v.strict = strict }
}

// NewValidator creates a validator with the default pattern set.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	v.patterns = compilePatterns(blockedPatterns)
	if v.strict {
		v.patterns = append(v.patterns, compilePatterns(strictPatterns)...)
	}
	return v
}

var blockedPatterns = []string{
	`--\s`,
	`/\*.*\*/`,
	`;\s*(DROP|DELETE|TRUNCATE|ALTER|CREATE)\s+`,
	`\bUNION\s+(ALL\s+)?SELECT\b`,
	`\bXP_CMDSHELL\b`,
	`\bSP_EXECUTESQL\b`,
	`\bEXEC(UTE)?\s*\(`,
	`\bPG_SLEEP\s*\(`,
	`\bBENCHMARK\s*\(`,
	`\bWAITFOR\s+DELAY\b`,
	`\bLOAD_FILE\s*\(`,
	`\bINTO\s+(OUT|DUMP)FILE\b`,
}

var strictPatterns = []string{
	`\bOR\s+'?1'?\s*=\s*'?1'?`,
	`\bAND\s+'?1'?\s*=\s*'?0'?`,
	`\b1\s*=\s*[01]\b`,
}

// ValidateQuery checks a statement. String literals are ignored so that
// values such as 'a -- b' do not trigger the comment pattern.
func (v *Validator) ValidateQuery(sql string) error {
	normalized := strings.ToUpper(stripLiterals(sql))
	for _, p := range v.patterns {
		if p.MatchString(normalized) {
			return fmt.Errorf("%w: %s", ErrDangerousSQL, p.String())
		}
	}
	return nil
}

var paramIndicators = []string{"'--", "';", "' OR ", "' AND ", "/*", "*/", "' UNION ", "' DROP ", "XP_"}

// ValidateParams checks string params.
func (v *Validator) ValidateParams(params []any) error {
	for i, p := range params {
		s, ok := p.(string)
		if !ok {
			continue
		}
		upper := strings.ToUpper(s)
		for _, ind := range paramIndicators {
			if strings.Contains(upper, ind) {
				return fmt.Errorf("%w at index %d", ErrSuspiciousParam, i)
			}
		}
	}
	return nil
}

// Validate checks a statement and its params.
func (v *Validator) Validate(sql string, params []any) error {
	if err := v.ValidateQuery(sql); err != nil {
		return err
	}
	return v.ValidateParams(params)
}

// stripLiterals blanks the content of single-quoted literals.
func stripLiterals(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	in := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if c == '\'' {
			if in && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			in = !in
			b.WriteByte(c)
			continue
		}
		if !in {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
