package categorize

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk form of a RuleSet.
type ruleFile struct {
	Fallback string     `yaml:"fallback"`
	Rules    []ruleSpec `yaml:"rules"`
}

// ruleSpec sets exactly one of Contains, Equals, Prefix or Regex.
type ruleSpec struct {
	Name     string   `yaml:"name,omitempty"`
	Category string   `yaml:"category"`
	Contains []string `yaml:"contains,omitempty"`
	Equals   []string `yaml:"equals,omitempty"`
	Prefix   []string `yaml:"prefix,omitempty"`
	Regex    string   `yaml:"regex,omitempty"`
}

// stringList accepts either a scalar or a sequence.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = []string{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// UnmarshalYAML lets equals/prefix/contains be written as a single string.
func (r *ruleSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name     string     `yaml:"name"`
		Category string     `yaml:"category"`
		Contains stringList `yaml:"contains"`
		Equals   stringList `yaml:"equals"`
		Prefix   stringList `yaml:"prefix"`
		Regex    string     `yaml:"regex"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = ruleSpec{
		Name:     raw.Name,
		Category: raw.Category,
		Contains: raw.Contains,
		Equals:   raw.Equals,
		Prefix:   raw.Prefix,
		Regex:    raw.Regex,
	}
	return nil
}

// LoadRuleSet reads a YAML rule file from disk.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ParseRuleSet decodes a YAML rule file. Rule order in the file is the
// evaluation order.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i, spec := range f.Rules {
		r, err := spec.toRule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, r)
	}
	return NewRuleSet(f.Fallback, rules...), nil
}

func (spec ruleSpec) toRule() (Rule, error) {
	category := strings.TrimSpace(spec.Category)
	if category == "" {
		return Rule{}, errors.New("missing category")
	}

	var matchers []Matcher
	if len(spec.Contains) > 0 {
		matchers = append(matchers, Contains(spec.Contains...))
	}
	if len(spec.Equals) > 0 {
		matchers = append(matchers, Equals(spec.Equals...))
	}
	if len(spec.Prefix) > 0 {
		matchers = append(matchers, Prefix(spec.Prefix...))
	}
	if spec.Regex != "" {
		m, err := Regex(spec.Regex)
		if err != nil {
			return Rule{}, err
		}
		matchers = append(matchers, m)
	}
	if len(matchers) != 1 {
		return Rule{}, fmt.Errorf("category %s: exactly one of contains, equals, prefix, regex is required", category)
	}

	name := spec.Name
	if name == "" {
		name = strings.ToLower(category)
	}
	return Rule{Name: name, Category: category, Matcher: matchers[0]}, nil
}

// MarshalRuleSet encodes rs in the YAML rule file format.
func MarshalRuleSet(rs *RuleSet) ([]byte, error) {
	f := ruleFile{Fallback: rs.Fallback}
	for _, r := range rs.Rules {
		spec := ruleSpec{Name: r.Name, Category: r.Category}
		switch r.Matcher.Kind {
		case MatchContains:
			spec.Contains = r.Matcher.Patterns
		case MatchEquals:
			spec.Equals = r.Matcher.Patterns
		case MatchPrefix:
			spec.Prefix = r.Matcher.Patterns
		case MatchRegex:
			spec.Regex = r.Matcher.Patterns[0]
		default:
			return nil, fmt.Errorf("rule %s: unknown matcher kind %q", r.Name, r.Matcher.Kind)
		}
		f.Rules = append(f.Rules, spec)
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("marshaling rules: %w", err)
	}
	return data, nil
}
