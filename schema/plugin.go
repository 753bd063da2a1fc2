package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PluginBundle carries the agents, rules and skills of one plugin under a
// schema version.
type PluginBundle struct {
	SchemaVersion string         `json:"schema_version" jsonschema:"required"`
	Generator     *GeneratorInfo `json:"generator,omitempty" jsonschema:"nullable"`
	Agents        []Agent        `json:"agents,omitempty"`
	Rules         []Rule         `json:"rules,omitempty"`
	Skills        []Skill        `json:"skills,omitempty"`
}

// NewPluginBundle returns an empty bundle stamped with SchemaVersion.
func NewPluginBundle() *PluginBundle {
	b := &PluginBundle{SchemaVersion: SchemaVersion}
	fillDefaults(b)
	return b
}

// ToJSON encodes the bundle as indented JSON.
func (b *PluginBundle) ToJSON() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// DocumentKind names a root document shape the Registry can load.
type DocumentKind string

// Root document kinds.
const (
	KindModuleMap DocumentKind = "modulemap"
	KindManifest  DocumentKind = "manifest"
	KindPlugin    DocumentKind = "plugin"
)

// DocumentKinds lists every root document kind.
func DocumentKinds() []DocumentKind {
	return []DocumentKind{KindModuleMap, KindManifest, KindPlugin}
}

// ParseDocumentKind matches s case-insensitively against the known kinds.
func ParseDocumentKind(s string) (DocumentKind, error) {
	k := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindModuleMap, KindManifest, KindPlugin:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDocumentKind, s)
}

func (k DocumentKind) String() string { return string(k) }
