package templates

import (
	"strings"
	"text/template"
)

// Rule is the banner line framing every prompt section.
const Rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// Funcs returns the helpers available inside prompt templates
func Funcs() template.FuncMap {
	return template.FuncMap{
		"rule":  func() string { return Rule },
		"upper": strings.ToUpper,
		"label": Label,
	}
}

// Label turns a knowledge key like "return_policy" into the header "RETURN POLICY"
func Label(key string) string {
	return strings.ReplaceAll(strings.ToUpper(key), "_", " ")
}

// Truncate cuts s to at most limit runes and appends suffix when something was cut
func Truncate(s string, limit int, suffix string) string {
	if limit < 0 {
		return s
	}
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + suffix
}
