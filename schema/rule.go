package schema

import (
	"encoding/json"
	"path"

	"github.com/invopop/jsonschema"
)

// RuleCategory places a rule in the injection hierarchy.
type RuleCategory string

// Rule categories. The zero value encodes as RuleProject.
const (
	RuleProject   RuleCategory = "project"
	RuleTech      RuleCategory = "tech"
	RuleFramework RuleCategory = "framework"
	RuleModule    RuleCategory = "module"
	RuleGroup     RuleCategory = "group"
	RuleDomain    RuleCategory = "domain"
)

var ruleCategories = []RuleCategory{
	RuleProject, RuleTech, RuleFramework,
	RuleModule, RuleGroup, RuleDomain,
}

// DefaultRulePriority is the priority of a decoded rule that does not set one.
const DefaultRulePriority = 50

// DefaultPriority is the injection priority for rules of the category.
// Broader categories are injected first.
func (c RuleCategory) DefaultPriority() uint8 {
	switch orDefault(c, RuleProject) {
	case RuleTech:
		return 90
	case RuleFramework:
		return 85
	case RuleModule:
		return 80
	case RuleGroup:
		return 70
	case RuleDomain:
		return 60
	default:
		return 100
	}
}

// Subdirectory is where rules of the category live under the rules root.
// Project rules live at the root itself.
func (c RuleCategory) Subdirectory() string {
	switch orDefault(c, RuleProject) {
	case RuleTech:
		return "tech"
	case RuleFramework:
		return "frameworks"
	case RuleModule:
		return "modules"
	case RuleGroup:
		return "groups"
	case RuleDomain:
		return "domains"
	default:
		return ""
	}
}

func (c RuleCategory) String() string { return string(orDefault(c, RuleProject)) }

// MarshalText encodes the category, substituting the default for the zero value.
func (c RuleCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText rejects unknown categories.
func (c *RuleCategory) UnmarshalText(b []byte) error {
	return decodeEnum(b, c, ruleCategories, "rule category")
}

// JSONSchema describes RuleCategory as a string enumeration.
func (RuleCategory) JSONSchema() *jsonschema.Schema { return enumSchema(ruleCategories) }

// Rule is a block of guidance injected into context when a path or
// keyword matches. Content holds markdown lines.
type Rule struct {
	Name         string       `json:"name" jsonschema:"required"`
	Paths        []string     `json:"paths,omitempty"`
	Triggers     []string     `json:"triggers,omitempty"`
	Priority     uint8        `json:"priority"`
	Category     RuleCategory `json:"category"`
	AlwaysInject bool         `json:"always_inject"`
	Content      []string     `json:"content" jsonschema:"required"`
}

// NewRule returns a rule of the given category at the category's default
// priority. Project rules match every path and are always injected.
func NewRule(name string, category RuleCategory, content []string) Rule {
	r := Rule{
		Name:     name,
		Priority: category.DefaultPriority(),
		Category: orDefault(category, RuleProject),
		Content:  content,
	}
	if r.Category == RuleProject {
		r.Paths = []string{"**/*"}
		r.AlwaysInject = true
	}
	fillDefaults(&r)
	return r
}

// UnmarshalJSON decodes a rule, defaulting priority and category.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	v := plain{Priority: DefaultRulePriority, Category: RuleProject}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Rule(v)
	return nil
}

// WithCategory returns a copy of r moved to category, with the priority
// reset to the category's default.
func (r Rule) WithCategory(category RuleCategory) Rule {
	r.Category = category
	r.Priority = category.DefaultPriority()
	return r
}

// OutputPath is the rule's file path relative to the rules root, e.g.
// "tech/go.md", or "style.md" for project rules.
func (r Rule) OutputPath() string {
	return path.Join(r.Category.Subdirectory(), r.Name+".md")
}
