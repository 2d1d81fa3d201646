package naming

import (
	"encoding"
	"fmt"
	"strings"
)

var _ interface {
	fmt.Stringer
	encoding.TextMarshaler
	encoding.TextUnmarshaler
} = (*Rule)(nil)

// Rule is a rename-all policy applied to JSON member names.
type Rule int

const (
	// RuleNone leaves identifiers unchanged.
	RuleNone Rule = iota
	RuleLower
	RuleUpper
	RulePascal
	RuleCamel
	RuleSnake
	RuleScreamingSnake
	RuleKebab
	RuleScreamingKebab
)

// String implements the [fmt.Stringer] interface.
// The names match the spelling accepted in attributes.
func (r Rule) String() string {
	switch r {
	case RuleLower:
		return "lowercase"
	case RuleUpper:
		return "UPPERCASE"
	case RulePascal:
		return "PascalCase"
	case RuleCamel:
		return "camelCase"
	case RuleSnake:
		return "snake_case"
	case RuleScreamingSnake:
		return "SCREAMING_SNAKE_CASE"
	case RuleKebab:
		return "kebab-case"
	case RuleScreamingKebab:
		return "SCREAMING-KEBAB-CASE"
	}
	return ""
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (r *Rule) UnmarshalText(text []byte) error {
	rule, err := ParseRule(string(text))
	if err != nil {
		return err
	}
	*r = rule
	return nil
}

// ParseRule parses a rename-all policy name. The empty string yields RuleNone.
func ParseRule(s string) (Rule, error) {
	switch strings.TrimSpace(s) {
	case "":
		return RuleNone, nil
	case "lowercase":
		return RuleLower, nil
	case "UPPERCASE":
		return RuleUpper, nil
	case "PascalCase":
		return RulePascal, nil
	case "camelCase":
		return RuleCamel, nil
	case "snake_case":
		return RuleSnake, nil
	case "SCREAMING_SNAKE_CASE":
		return RuleScreamingSnake, nil
	case "kebab-case":
		return RuleKebab, nil
	case "SCREAMING-KEBAB-CASE":
		return RuleScreamingKebab, nil
	}
	return RuleNone, fmt.Errorf("unknown rename rule %q", s)
}

// Apply renames an identifier according to the rule.
func (r Rule) Apply(ident string) string {
	switch r {
	case RuleLower:
		return strings.ToLower(ident)
	case RuleUpper:
		return strings.ToUpper(ident)
	case RulePascal:
		return Pascal(ident)
	case RuleCamel:
		return LowerCamel(ident)
	case RuleSnake:
		return Snake(ident)
	case RuleScreamingSnake:
		return ScreamingSnake(ident)
	case RuleKebab:
		return Kebab(ident)
	case RuleScreamingKebab:
		return ScreamingKebab(ident)
	}
	return ident
}
