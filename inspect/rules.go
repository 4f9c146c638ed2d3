package inspect

import "regexp"

// Rule pairs a compiled pattern with the rejection kind it produces.
//
// The built-in rules are package-level constants in behavior: both patterns
// are compiled once at init and shared by every Validator.
type Rule struct {
	// ID names the rule group for audit records and events.
	ID string

	// Kind is the rejection kind reported on match.
	Kind Kind

	// Pattern is the compiled scan expression.
	Pattern *regexp.Regexp
}

var (
	// sqlPattern matches the SQL keywords and metacharacters the gateway
	// refuses, case-insensitively, anywhere in the body.
	sqlPattern = regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|DROP|;|--|#)`)

	// xssPattern matches any HTML-tag-shaped token: "<", one or more
	// non-">" characters, ">". Case-sensitive by contract (tag names are
	// not the discriminator, the bracket shape is).
	xssPattern = regexp.MustCompile(`<[^>]+>`)
)

// BuiltinRules returns the two fixed rule groups in evaluation order:
// SQL tokens first, HTML-tag shapes second.
//
// The slice is freshly allocated on each call so callers cannot mutate the
// validator's rule set, but the compiled patterns are shared.
func BuiltinRules() []Rule {
	return []Rule{
		{ID: "sql-tokens", Kind: KindSQLInjection, Pattern: sqlPattern},
		{ID: "html-tags", Kind: KindXSS, Pattern: xssPattern},
	}
}
