// Package categorize assigns fine-grained categories to normalized
// transaction descriptions.
//
// A RuleSet is an ordered list of rules evaluated top to bottom; the first
// rule whose matcher accepts the description wins, regardless of how
// specific a later rule might be. Rule order is part of the table's
// meaning. A description no rule accepts gets the set's fallback category.
package categorize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultFallback is the category for descriptions no rule matches.
const DefaultFallback = "OTHER"

// MatchKind selects how a Matcher compares patterns to a description.
type MatchKind string

const (
	MatchContains MatchKind = "contains" // any pattern is a substring
	MatchEquals   MatchKind = "equals"   // description equals a pattern
	MatchPrefix   MatchKind = "prefix"   // description starts with a pattern
	MatchRegex    MatchKind = "regex"
)

// Matcher tests a normalized (uppercase, whitespace-collapsed) description.
type Matcher struct {
	Kind     MatchKind
	Patterns []string
	re       *regexp.Regexp
}

// Contains matches when any pattern occurs in the description.
func Contains(patterns ...string) Matcher {
	return Matcher{Kind: MatchContains, Patterns: upper(patterns)}
}

// Equals matches when the description equals any pattern exactly.
func Equals(patterns ...string) Matcher {
	return Matcher{Kind: MatchEquals, Patterns: upper(patterns)}
}

// Prefix matches when the description starts with any pattern.
func Prefix(patterns ...string) Matcher {
	return Matcher{Kind: MatchPrefix, Patterns: upper(patterns)}
}

// Regex matches when expr matches anywhere in the description.
func Regex(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Matcher{}, fmt.Errorf("compiling regex %q: %w", expr, err)
	}
	return Matcher{Kind: MatchRegex, Patterns: []string{expr}, re: re}, nil
}

// Match reports whether desc satisfies the matcher.
func (m Matcher) Match(desc string) bool {
	switch m.Kind {
	case MatchContains:
		for _, p := range m.Patterns {
			if strings.Contains(desc, p) {
				return true
			}
		}
	case MatchEquals:
		for _, p := range m.Patterns {
			if desc == p {
				return true
			}
		}
	case MatchPrefix:
		for _, p := range m.Patterns {
			if strings.HasPrefix(desc, p) {
				return true
			}
		}
	case MatchRegex:
		return m.re != nil && m.re.MatchString(desc)
	}
	return false
}

func (m Matcher) String() string {
	return fmt.Sprintf("%s %q", m.Kind, m.Patterns)
}

// upper uppercases patterns without trimming, so a deliberate trailing
// space (e.g. "UNITED ") still only matches mid-description.
func upper(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToUpper(p)
	}
	return out
}

// Rule maps descriptions accepted by Matcher to Category.
type Rule struct {
	Name     string
	Category string
	Matcher  Matcher
}

// RuleSet is an ordered, first-match-wins list of rules.
type RuleSet struct {
	Rules    []Rule
	Fallback string
}

// NewRuleSet creates a RuleSet. An empty fallback uses DefaultFallback.
func NewRuleSet(fallback string, rules ...Rule) *RuleSet {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &RuleSet{Rules: rules, Fallback: fallback}
}

// Match returns the first rule accepting desc, or nil.
func (rs *RuleSet) Match(desc string) *Rule {
	for i := range rs.Rules {
		if rs.Rules[i].Matcher.Match(desc) {
			return &rs.Rules[i]
		}
	}
	return nil
}

// Categorize returns the category for desc and whether it fell through to the fallback.
func (rs *RuleSet) Categorize(desc string) (category string, fallback bool) {
	if r := rs.Match(desc); r != nil {
		return r.Category, false
	}
	return rs.Fallback, true
}

// Categories returns every category the set can produce, sorted.
func (rs *RuleSet) Categories() []string {
	seen := map[string]bool{rs.Fallback: true}
	for _, r := range rs.Rules {
		seen[r.Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// rule builds a Rule named after its category.
func rule(category string, m Matcher) Rule {
	return Rule{Name: strings.ToLower(category), Category: category, Matcher: m}
}
