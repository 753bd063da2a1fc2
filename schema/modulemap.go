package schema

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// ModuleMap is the root document describing a codebase: its project
// metadata, modules, module groups and dependency graph.
type ModuleMap struct {
	SchemaVersion   string           `json:"schema_version" jsonschema:"required"`
	Generator       GeneratorInfo    `json:"generator" jsonschema:"required"`
	Project         ProjectMetadata  `json:"project" jsonschema:"required"`
	Modules         []Module         `json:"modules" jsonschema:"required"`
	Groups          []ModuleGroup    `json:"groups,omitempty"`
	DependencyGraph *DependencyGraph `json:"dependency_graph,omitempty" jsonschema:"nullable"`
	GeneratedAt     time.Time        `json:"generated_at" jsonschema:"required"`
}

// ProjectMetadata describes the project as a whole.
type ProjectMetadata struct {
	Name        string             `json:"name" jsonschema:"required"`
	ProjectType ProjectType        `json:"project_type"`
	Description *string            `json:"description,omitempty" jsonschema:"nullable"`
	Repository  *string            `json:"repository,omitempty" jsonschema:"nullable"`
	Workspace   WorkspaceInfo      `json:"workspace" jsonschema:"required"`
	TechStack   TechStack          `json:"tech_stack" jsonschema:"required"`
	Languages   []DetectedLanguage `json:"languages" jsonschema:"required"`
	TotalFiles  uint64             `json:"total_files" jsonschema:"required"`
	Commands    *ProjectCommands   `json:"commands,omitempty" jsonschema:"nullable"`
}

// UnmarshalJSON decodes project metadata, defaulting the project type.
func (p *ProjectMetadata) UnmarshalJSON(data []byte) error {
	type plain ProjectMetadata
	v := plain{ProjectType: ProjectApplication}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ProjectMetadata(v)
	return nil
}

// WorkspaceInfo describes the repository layout.
type WorkspaceInfo struct {
	WorkspaceType WorkspaceType `json:"workspace_type"`
	Root          *string       `json:"root,omitempty" jsonschema:"nullable"`
}

// UnmarshalJSON decodes workspace info, defaulting the workspace type.
func (w *WorkspaceInfo) UnmarshalJSON(data []byte) error {
	type plain WorkspaceInfo
	v := plain{WorkspaceType: WorkspaceSinglePackage}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = WorkspaceInfo(v)
	return nil
}

// ProjectCommands lists the commands used to build and check the project.
type ProjectCommands struct {
	Build  string  `json:"build" jsonschema:"required"`
	Test   string  `json:"test" jsonschema:"required"`
	Lint   *string `json:"lint,omitempty" jsonschema:"nullable"`
	Format *string `json:"format,omitempty" jsonschema:"nullable"`
}

// ModuleMetrics scores a module. The fields are flattened into the module's JSON object.
type ModuleMetrics struct {
	CoverageRatio float64 `json:"coverage_ratio"`
	ValueScore    float64 `json:"value_score"`
	RiskScore     float64 `json:"risk_score"`
}

// PriorityScore weighs value at 60% and risk at 40%.
func (m ModuleMetrics) PriorityScore() float64 {
	return m.ValueScore*0.6 + m.RiskScore*0.4
}

// Module is a cohesive unit of the codebase.
type Module struct {
	ID              string             `json:"id" jsonschema:"required"`
	Name            string             `json:"name" jsonschema:"required"`
	Paths           []string           `json:"paths" jsonschema:"required"`
	KeyFiles        []string           `json:"key_files,omitempty"`
	Dependencies    []ModuleDependency `json:"dependencies,omitempty"`
	Dependents      []string           `json:"dependents,omitempty"`
	Responsibility  string             `json:"responsibility" jsonschema:"required"`
	PrimaryLanguage string             `json:"primary_language" jsonschema:"required"`
	ModuleMetrics
	Conventions []Convention       `json:"conventions,omitempty"`
	KnownIssues []KnownIssue       `json:"known_issues,omitempty"`
	Evidence    []EvidenceLocation `json:"evidence,omitempty"`
}

// ContainsFile reports whether p starts with any of the module's paths.
func (m *Module) ContainsFile(p string) bool {
	return slices.ContainsFunc(m.Paths, func(prefix string) bool {
		return strings.HasPrefix(p, prefix)
	})
}

// ModuleGroup bundles modules that share a responsibility and boundary rules.
type ModuleGroup struct {
	ID             string   `json:"id" jsonschema:"required"`
	Name           string   `json:"name" jsonschema:"required"`
	ModuleIDs      []string `json:"module_ids" jsonschema:"required"`
	Responsibility string   `json:"responsibility" jsonschema:"required"`
	BoundaryRules  []string `json:"boundary_rules,omitempty"`
	LeaderModule   *string  `json:"leader_module,omitempty" jsonschema:"nullable"`
}

// DependencyGraph holds module edges and architecture layers.
type DependencyGraph struct {
	Edges  []DependencyEdge    `json:"edges,omitempty"`
	Layers []ArchitectureLayer `json:"layers,omitempty"`
}

// DependencyEdge is a directed dependency from one module to another.
type DependencyEdge struct {
	From     string         `json:"from" jsonschema:"required"`
	To       string         `json:"to" jsonschema:"required"`
	EdgeType DependencyType `json:"edge_type"`
}

// UnmarshalJSON decodes an edge, defaulting the edge type to runtime.
func (e *DependencyEdge) UnmarshalJSON(data []byte) error {
	type plain DependencyEdge
	v := plain{EdgeType: DependencyRuntime}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = DependencyEdge(v)
	return nil
}

// ArchitectureLayer names a layer and the modules it contains.
type ArchitectureLayer struct {
	Name    string   `json:"name" jsonschema:"required"`
	Modules []string `json:"modules" jsonschema:"required"`
}

// NewModuleMap returns a module map stamped with SchemaVersion and the current time.
func NewModuleMap(generator GeneratorInfo, project ProjectMetadata, modules []Module, groups []ModuleGroup) *ModuleMap {
	m := &ModuleMap{
		SchemaVersion: SchemaVersion,
		Generator:     generator,
		Project:       project,
		Modules:       modules,
		Groups:        groups,
		GeneratedAt:   time.Now().UTC().Truncate(time.Second),
	}
	fillDefaults(m)
	return m
}

// FindModule returns the module with the given id, or nil.
func (m *ModuleMap) FindModule(id string) *Module {
	for i := range m.Modules {
		if m.Modules[i].ID == id {
			return &m.Modules[i]
		}
	}
	return nil
}

// FindGroup returns the group with the given id, or nil.
func (m *ModuleMap) FindGroup(id string) *ModuleGroup {
	for i := range m.Groups {
		if m.Groups[i].ID == id {
			return &m.Groups[i]
		}
	}
	return nil
}

// FindGroupContaining returns the first group listing moduleID, or nil.
func (m *ModuleMap) FindGroupContaining(moduleID string) *ModuleGroup {
	for i := range m.Groups {
		if slices.Contains(m.Groups[i].ModuleIDs, moduleID) {
			return &m.Groups[i]
		}
	}
	return nil
}

// FindModulesInGroup returns the modules of a group in the group's order.
// Member ids that do not resolve to a module are skipped. ok is false when
// the group does not exist.
func (m *ModuleMap) FindModulesInGroup(groupID string) (modules []*Module, ok bool) {
	g := m.FindGroup(groupID)
	if g == nil {
		return nil, false
	}
	modules = make([]*Module, 0, len(g.ModuleIDs))
	for _, id := range g.ModuleIDs {
		if mod := m.FindModule(id); mod != nil {
			modules = append(modules, mod)
		}
	}
	return modules, true
}

// ToJSON encodes the module map as indented JSON.
func (m *ModuleMap) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
