package revision

import (
	"regexp"
	"strconv"
	"strings"
)

// Token is the revision decomposition of a filename without its extension.
type Token struct {
	Prefix    string
	Separator string
	Number    string
	Suffix    string
}

// String reassembles the original name.
func (t Token) String() string {
	return t.Prefix + t.Separator + t.Number + t.Suffix
}

// Revision parses Number as a non-negative integer.
func (t Token) Revision() (int, error) {
	return strconv.Atoi(t.Number)
}

// Rule pairs a compiled pattern with the kind of separator it recognizes.
// Rules are evaluated in order by Extract; first match wins.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Rules lists the tokenizer patterns in priority order. Each pattern has four
// groups: prefix, separator, digits and suffix.
var Rules = []Rule{
	{
		Name:    "marker",
		Pattern: regexp.MustCompile(`(?i)(.*)(Rev|v)(\d+)(.*)`),
	},
	{
		Name:    "delimiter",
		Pattern: regexp.MustCompile(`(?i)(.*)(_|-)(\d+)(.*)`),
	},
}

// Extract decomposes name (without extension) into a Token using the first
// matching rule. It reports false when no rule matches.
func Extract(name string) (Token, bool) {
	tok, _, ok := extract(name)
	return tok, ok
}

// ExtractRule is Extract that also names the rule that produced the token.
func ExtractRule(name string) (Token, string, bool) {
	return extract(name)
}

func extract(name string) (Token, string, bool) {
	for _, rule := range Rules {
		m := rule.Pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		tok := Token{Prefix: m[1], Separator: m[2], Number: m[3], Suffix: m[4]}
		if rule.Name == "marker" {
			tok = widenMarker(tok)
		}
		return tok, rule.Name, true
	}
	return Token{}, "", false
}

// widenMarker restores a "Rev" marker that the greedy prefix split into
// "Re" + "v": both alternatives end in "v", so the prefix always wins the
// leading "Re".
func widenMarker(tok Token) Token {
	if !strings.EqualFold(tok.Separator, "v") || len(tok.Prefix) < 2 {
		return tok
	}
	head := tok.Prefix[len(tok.Prefix)-2:]
	if !strings.EqualFold(head, "re") {
		return tok
	}
	tok.Separator = head + tok.Separator
	tok.Prefix = tok.Prefix[:len(tok.Prefix)-2]
	return tok
}
