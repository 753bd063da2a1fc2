package schema

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
)

// AgentColor is the color an agent is drawn with in the UI.
type AgentColor string

// Agent colors. The zero value means unset and renders as AgentBlue.
const (
	AgentBlue   AgentColor = "blue"
	AgentGreen  AgentColor = "green"
	AgentPurple AgentColor = "purple"
	AgentOrange AgentColor = "orange"
	AgentRed    AgentColor = "red"
)

var agentColors = []AgentColor{AgentBlue, AgentGreen, AgentPurple, AgentOrange, AgentRed}

// ParseAgentColor maps s to a color ignoring case. Unknown names yield AgentBlue.
func ParseAgentColor(s string) AgentColor {
	return parseLenient(strings.ToLower(s), agentColors, AgentBlue)
}

func (c AgentColor) String() string { return string(orDefault(c, AgentBlue)) }

// MarshalText encodes the color, substituting the default for the zero value.
func (c AgentColor) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText rejects unknown colors. Use ParseAgentColor for lenient input.
func (c *AgentColor) UnmarshalText(b []byte) error {
	return decodeEnum(b, c, agentColors, "agent color")
}

// JSONSchema describes AgentColor as a string enumeration.
func (AgentColor) JSONSchema() *jsonschema.Schema { return enumSchema(agentColors) }

// AgentModel selects the model an agent runs on.
type AgentModel string

// Agent models. The zero value means unset and renders as ModelInherit.
const (
	ModelSonnet  AgentModel = "sonnet"
	ModelOpus    AgentModel = "opus"
	ModelHaiku   AgentModel = "haiku"
	ModelInherit AgentModel = "inherit"
)

var agentModels = []AgentModel{ModelSonnet, ModelOpus, ModelHaiku, ModelInherit}

// ParseAgentModel maps s to a model ignoring case. Unknown names yield ModelInherit.
func ParseAgentModel(s string) AgentModel {
	return parseLenient(strings.ToLower(s), agentModels, ModelInherit)
}

func (m AgentModel) String() string { return string(orDefault(m, ModelInherit)) }

// MarshalText encodes the model, substituting the default for the zero value.
func (m AgentModel) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText rejects unknown models. Use ParseAgentModel for lenient input.
func (m *AgentModel) UnmarshalText(b []byte) error {
	return decodeEnum(b, m, agentModels, "agent model")
}

// JSONSchema describes AgentModel as a string enumeration.
func (AgentModel) JSONSchema() *jsonschema.Schema { return enumSchema(agentModels) }

// PermissionMode controls how an agent asks before acting.
type PermissionMode string

// Permission modes, in their camelCase wire form. The zero value renders as PermissionDefault.
const (
	PermissionDefault           PermissionMode = "default"
	PermissionAcceptEdits       PermissionMode = "acceptEdits"
	PermissionDontAsk           PermissionMode = "dontAsk"
	PermissionBypassPermissions PermissionMode = "bypassPermissions"
	PermissionPlan              PermissionMode = "plan"
)

var permissionModes = []PermissionMode{
	PermissionDefault, PermissionAcceptEdits, PermissionDontAsk,
	PermissionBypassPermissions, PermissionPlan,
}

// ParsePermissionMode matches s ignoring case and underscores, so
// "ACCEPT_EDITS" and "acceptedits" both yield PermissionAcceptEdits.
// Unknown names yield PermissionDefault.
func ParsePermissionMode(s string) PermissionMode {
	key := strings.ReplaceAll(strings.ToLower(s), "_", "")
	for _, m := range permissionModes {
		if strings.ToLower(string(m)) == key {
			return m
		}
	}
	return PermissionDefault
}

func (p PermissionMode) String() string { return string(orDefault(p, PermissionDefault)) }

// MarshalText encodes the mode, substituting the default for the zero value.
func (p PermissionMode) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText rejects unknown modes. Use ParsePermissionMode for lenient input.
func (p *PermissionMode) UnmarshalText(b []byte) error {
	return decodeEnum(b, p, permissionModes, "permission mode")
}

// JSONSchema describes PermissionMode as a string enumeration.
func (PermissionMode) JSONSchema() *jsonschema.Schema { return enumSchema(permissionModes) }

// DefaultVoteThreshold is the approval share a consensus role requires when unset.
const DefaultVoteThreshold = 0.67

// ConsensusRole configures an agent's weight in multi-agent decisions.
type ConsensusRole struct {
	Priority      uint8   `json:"priority" jsonschema:"required"`
	CanVeto       bool    `json:"can_veto"`
	VoteThreshold float64 `json:"vote_threshold"`
}

// NewConsensusRole returns a role with the given priority, no veto and the default threshold.
func NewConsensusRole(priority uint8) ConsensusRole {
	return ConsensusRole{Priority: priority, VoteThreshold: DefaultVoteThreshold}
}

// UnmarshalJSON decodes a role, defaulting the vote threshold.
func (r *ConsensusRole) UnmarshalJSON(data []byte) error {
	type plain ConsensusRole
	v := plain{VoteThreshold: DefaultVoteThreshold}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = ConsensusRole(v)
	return nil
}

// AgentExample is a sample exchange included in an agent's description.
type AgentExample struct {
	Context    string  `json:"context" jsonschema:"required"`
	User       string  `json:"user" jsonschema:"required"`
	Assistant  string  `json:"assistant" jsonschema:"required"`
	Commentary *string `json:"commentary,omitempty" jsonschema:"nullable"`
}

// Agent defines a plugin subagent.
type Agent struct {
	Name            string         `json:"name" jsonschema:"required"`
	Description     string         `json:"description" jsonschema:"required"`
	Color           AgentColor     `json:"color,omitempty"`
	Tools           []string       `json:"tools,omitempty"`
	DisallowedTools []string       `json:"disallowed_tools,omitempty"`
	Model           AgentModel     `json:"model,omitempty"`
	PermissionMode  PermissionMode `json:"permission_mode,omitempty"`
	Skills          []string       `json:"skills,omitempty"`
	Consensus       *ConsensusRole `json:"consensus,omitempty" jsonschema:"nullable"`
	Prompt          string         `json:"prompt" jsonschema:"required"`
	Examples        []AgentExample `json:"examples,omitempty"`
}

// NewAgent returns an agent with only its required fields set.
func NewAgent(name, description, prompt string) Agent {
	a := Agent{Name: name, Description: description, Prompt: prompt}
	fillDefaults(&a)
	return a
}

func parseLenient[T ~string](s string, valid []T, def T) T {
	if i := slices.Index(valid, T(s)); i >= 0 {
		return valid[i]
	}
	return def
}
