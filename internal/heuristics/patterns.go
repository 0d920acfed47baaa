package heuristics

import (
	"regexp"
	"strings"
)

// LongBase64Label is reported when a file carries a long base64-looking run
const LongBase64Label = "long_base64_blob"

// minBase64Run is the shortest run of base64 alphabet characters that counts as a blob
const minBase64Run = 120

// PatternRule is one behavioral indicator searched for in script and HTML content
type PatternRule struct {
	Label string
	Expr  *regexp.Regexp
}

// Matching is plain regex presence without any JavaScript lexing, so a match
// inside a comment or string literal still counts.
var patternRules = []PatternRule{
	{Label: "eval(", Expr: regexp.MustCompile(`eval\s*\(`)},
	{Label: "new Function", Expr: regexp.MustCompile(`new\s+Function\s*\(`)},
	{Label: "atob", Expr: regexp.MustCompile(`atob\s*\(`)},
	{Label: "unescape", Expr: regexp.MustCompile(`unescape\s*\(`)},
	{Label: "fromCharCode", Expr: regexp.MustCompile(`fromCharCode\s*\(`)},
	{Label: "XMLHttpRequest", Expr: regexp.MustCompile(`XMLHttpRequest`)},
	{Label: "fetch(", Expr: regexp.MustCompile(`\.fetch\s*\(`)},
	{Label: "WebSocket", Expr: regexp.MustCompile(`WebSocket\s*\(`)},
	{Label: "native messaging", Expr: regexp.MustCompile(`chrome\.runtime\.connectNative`)},
	{Label: "chrome.management", Expr: regexp.MustCompile(`chrome\.management`)},
	{Label: "document.write", Expr: regexp.MustCompile(`document\.write\s*\(`)},
}

var longBase64 = regexp.MustCompile(`[A-Za-z0-9+/]{120,}={0,2}`)

// Rules returns a copy of the ordered pattern rules
func Rules() []PatternRule {
	rules := make([]PatternRule, len(patternRules))
	copy(rules, patternRules)
	return rules
}

// ScanText returns the label of every rule found in text, in rule order.
// A rule is reported once no matter how often it occurs.
func ScanText(text string) []string {
	var labels []string
	for _, rule := range patternRules {
		if rule.Expr.MatchString(text) {
			labels = append(labels, rule.Label)
		}
	}
	return labels
}

// HasLongBase64 reports whether text contains a run of at least 120 base64
// alphabet characters, optionally padded with up to two '='.
func HasLongBase64(text string) bool {
	if len(text) < minBase64Run {
		return false
	}
	return longBase64.MatchString(text)
}

// LongBase64Expr returns the expression behind HasLongBase64
func LongBase64Expr() string {
	return longBase64.String()
}

// ScannableFile reports whether a file name is content the matcher should see
func ScannableFile(name string) bool {
	return strings.HasSuffix(name, ".js") || strings.HasSuffix(name, ".html")
}
