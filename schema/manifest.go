package schema

import (
	"encoding/json"
	"time"
)

// ManifestVersion is the format version stamped on new manifests. It is
// independent of SchemaVersion; compatibility is judged on the embedded
// module map.
const ManifestVersion = "1.0.0"

// DefaultManifestGenerator names the tool recorded on new manifests.
const DefaultManifestGenerator = "claudegen"

// ModuleContext links a module to the plugin resources that apply to it.
type ModuleContext struct {
	Rules       []string `json:"rules,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Conventions []string `json:"conventions,omitempty"`
	Issues      []string `json:"issues,omitempty"`
	GroupID     *string  `json:"group_id,omitempty" jsonschema:"nullable"`
	DomainID    *string  `json:"domain_id,omitempty" jsonschema:"nullable"`
}

// IsEmpty reports whether the context carries no links at all.
func (c ModuleContext) IsEmpty() bool {
	return len(c.Rules) == 0 && len(c.Skills) == 0 && len(c.Conventions) == 0 &&
		len(c.Issues) == 0 && c.GroupID == nil && c.DomainID == nil
}

// GroupContext links a module group to its rules and members.
type GroupContext struct {
	Rules         []string `json:"rules,omitempty"`
	Constraints   []string `json:"constraints,omitempty"`
	MemberModules []string `json:"member_modules,omitempty"`
	DomainID      *string  `json:"domain_id,omitempty" jsonschema:"nullable"`
}

// IsEmpty reports whether the context carries no links at all.
func (c GroupContext) IsEmpty() bool {
	return len(c.Rules) == 0 && len(c.Constraints) == 0 && len(c.MemberModules) == 0 && c.DomainID == nil
}

// DomainContext links a business domain to its rules, groups and interfaces.
type DomainContext struct {
	Rules        []string `json:"rules,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	MemberGroups []string `json:"member_groups,omitempty"`
	Interfaces   []string `json:"interfaces,omitempty"`
}

// IsEmpty reports whether the context carries no links at all.
func (c DomainContext) IsEmpty() bool {
	return len(c.Rules) == 0 && len(c.Constraints) == 0 && len(c.MemberGroups) == 0 && len(c.Interfaces) == 0
}

// TrackedFile records the content hash of a source file at generation time.
type TrackedFile struct {
	Path     string `json:"path" jsonschema:"required"`
	Hash     string `json:"hash" jsonschema:"required"`
	Modified int64  `json:"modified" jsonschema:"required"` // unix seconds
}

// ProjectManifest wraps a module map with the plugin resources generated
// for it. Resource lists hold paths relative to the plugin root, such as
// "rules/tech/go.md".
type ProjectManifest struct {
	Version   string                   `json:"version" jsonschema:"required"`
	CreatedAt time.Time                `json:"created_at" jsonschema:"required"`
	Generator string                   `json:"generator" jsonschema:"required"`
	Project   ModuleMap                `json:"project" jsonschema:"required"`
	Rules     []string                 `json:"rules,omitempty"`
	Skills    []string                 `json:"skills,omitempty"`
	Agents    []string                 `json:"agents,omitempty"`
	Modules   map[string]ModuleContext `json:"modules,omitempty"`
	Groups    map[string]GroupContext  `json:"groups,omitempty"`
	Domains   map[string]DomainContext `json:"domains,omitempty"`
	Tracked   []TrackedFile            `json:"tracked,omitempty"`
}

// NewProjectManifest wraps project in a manifest with empty resource links.
func NewProjectManifest(project ModuleMap) *ProjectManifest {
	m := &ProjectManifest{
		Version:   ManifestVersion,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Generator: DefaultManifestGenerator,
		Project:   project,
	}
	fillDefaults(m)
	return m
}

// SchemaVersion returns the schema version of the embedded module map.
func (m *ProjectManifest) SchemaVersion() string { return m.Project.SchemaVersion }

// ModuleContext returns the context recorded for a module.
func (m *ProjectManifest) ModuleContext(id string) (ModuleContext, bool) {
	c, ok := m.Modules[id]
	return c, ok
}

// GroupContext returns the context recorded for a group.
func (m *ProjectManifest) GroupContext(id string) (GroupContext, bool) {
	c, ok := m.Groups[id]
	return c, ok
}

// DomainContext returns the context recorded for a domain.
func (m *ProjectManifest) DomainContext(id string) (DomainContext, bool) {
	c, ok := m.Domains[id]
	return c, ok
}

// ToJSON encodes the manifest as indented JSON.
func (m *ProjectManifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
