package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// ContextMode selects how a skill runs relative to the calling conversation.
type ContextMode string

// ContextFork runs the skill in a forked context.
const ContextFork ContextMode = "fork"

var contextModes = []ContextMode{ContextFork}

// ParseContextMode matches s ignoring case. Unlike the agent enums it
// rejects unknown names.
func ParseContextMode(s string) (ContextMode, error) {
	var m ContextMode
	if err := m.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return "", fmt.Errorf("unknown context mode: %s", s)
	}
	return m, nil
}

func (m ContextMode) String() string { return string(m) }

// UnmarshalText rejects unknown modes.
func (m *ContextMode) UnmarshalText(b []byte) error {
	return decodeEnum(b, m, contextModes, "context mode")
}

// JSONSchema describes ContextMode as a string enumeration.
func (ContextMode) JSONSchema() *jsonschema.Schema { return enumSchema(contextModes) }

// DefaultSkillVersion is the version of a skill that does not declare one.
const DefaultSkillVersion = "1.0.0"

// SkillFile is an extra file shipped alongside a skill's main document.
type SkillFile struct {
	Name    string `json:"name" jsonschema:"required"`
	Content string `json:"content" jsonschema:"required"`
}

// Skill defines a plugin skill. Body is the markdown of SKILL.md.
type Skill struct {
	Name                   string      `json:"name" jsonschema:"required"`
	Description            string      `json:"description" jsonschema:"required"`
	Version                string      `json:"version"`
	AllowedTools           []string    `json:"allowed_tools,omitempty"`
	Model                  *string     `json:"model,omitempty" jsonschema:"nullable"`
	Context                ContextMode `json:"context,omitempty"`
	Agent                  *string     `json:"agent,omitempty" jsonschema:"nullable"`
	UserInvocable          *bool       `json:"user_invocable,omitempty" jsonschema:"nullable"`
	ArgumentHint           *string     `json:"argument_hint,omitempty" jsonschema:"nullable"`
	DisableModelInvocation *bool       `json:"disable_model_invocation,omitempty" jsonschema:"nullable"`
	Body                   string      `json:"body" jsonschema:"required"`
	AdditionalFiles        []SkillFile `json:"additional_files,omitempty"`
}

// NewSkill returns a skill at DefaultSkillVersion with only its required fields set.
func NewSkill(name, description, body string) Skill {
	s := Skill{Name: name, Description: description, Version: DefaultSkillVersion, Body: body}
	fillDefaults(&s)
	return s
}

// UnmarshalJSON decodes a skill, defaulting the version.
func (s *Skill) UnmarshalJSON(data []byte) error {
	type plain Skill
	v := plain{Version: DefaultSkillVersion}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Skill(v)
	return nil
}
