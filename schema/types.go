package schema

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
)

// DependencyType classifies an edge between two modules.
type DependencyType string

// Dependency kinds. The zero value encodes as DependencyRuntime.
const (
	DependencyRuntime  DependencyType = "runtime"
	DependencyBuild    DependencyType = "build"
	DependencyTest     DependencyType = "test"
	DependencyOptional DependencyType = "optional"
)

var dependencyTypes = []DependencyType{DependencyRuntime, DependencyBuild, DependencyTest, DependencyOptional}

func (d DependencyType) String() string { return string(orDefault(d, DependencyRuntime)) }

// MarshalText encodes the dependency kind, substituting the default for the zero value.
func (d DependencyType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText rejects unknown dependency kinds.
func (d *DependencyType) UnmarshalText(b []byte) error {
	return decodeEnum(b, d, dependencyTypes, "dependency type")
}

// JSONSchema describes DependencyType as a string enumeration.
func (DependencyType) JSONSchema() *jsonschema.Schema { return enumSchema(dependencyTypes) }

// WorkspaceType describes how a repository is organized.
type WorkspaceType string

// Workspace topologies. The zero value encodes as WorkspaceSinglePackage.
const (
	WorkspaceSinglePackage WorkspaceType = "single_package"
	WorkspaceMonorepo      WorkspaceType = "monorepo"
	WorkspaceMicroservices WorkspaceType = "microservices"
	WorkspaceMultiPackage  WorkspaceType = "multi_package"
)

var workspaceTypes = []WorkspaceType{WorkspaceSinglePackage, WorkspaceMonorepo, WorkspaceMicroservices, WorkspaceMultiPackage}

func (w WorkspaceType) String() string { return string(orDefault(w, WorkspaceSinglePackage)) }

// MarshalText encodes the workspace type, substituting the default for the zero value.
func (w WorkspaceType) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText rejects unknown workspace types.
func (w *WorkspaceType) UnmarshalText(b []byte) error {
	return decodeEnum(b, w, workspaceTypes, "workspace type")
}

// JSONSchema describes WorkspaceType as a string enumeration.
func (WorkspaceType) JSONSchema() *jsonschema.Schema { return enumSchema(workspaceTypes) }

// ProjectType describes what a project ships.
type ProjectType string

// Project kinds. The zero value encodes as ProjectApplication.
const (
	ProjectApplication ProjectType = "application"
	ProjectLibrary     ProjectType = "library"
	ProjectService     ProjectType = "service"
	ProjectCLI         ProjectType = "cli"
)

var projectTypes = []ProjectType{ProjectApplication, ProjectLibrary, ProjectService, ProjectCLI}

func (p ProjectType) String() string { return string(orDefault(p, ProjectApplication)) }

// MarshalText encodes the project type, substituting the default for the zero value.
func (p ProjectType) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText rejects unknown project types.
func (p *ProjectType) UnmarshalText(b []byte) error {
	return decodeEnum(b, p, projectTypes, "project type")
}

// JSONSchema describes ProjectType as a string enumeration.
func (ProjectType) JSONSchema() *jsonschema.Schema { return enumSchema(projectTypes) }

// IssueSeverity ranks a known issue. Critical sorts first.
type IssueSeverity string

// Severities, most severe first.
const (
	SeverityCritical IssueSeverity = "critical"
	SeverityHigh     IssueSeverity = "high"
	SeverityMedium   IssueSeverity = "medium"
	SeverityLow      IssueSeverity = "low"
)

var issueSeverities = []IssueSeverity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// String renders the severity in upper case, e.g. "HIGH".
func (s IssueSeverity) String() string { return strings.ToUpper(string(s)) }

// Less reports whether s is more severe than other.
func (s IssueSeverity) Less(other IssueSeverity) bool {
	return slices.Index(issueSeverities, s) < slices.Index(issueSeverities, other)
}

// UnmarshalText rejects unknown severities.
func (s *IssueSeverity) UnmarshalText(b []byte) error {
	return decodeEnum(b, s, issueSeverities, "issue severity")
}

// JSONSchema describes IssueSeverity as a string enumeration.
func (IssueSeverity) JSONSchema() *jsonschema.Schema { return enumSchema(issueSeverities) }

// IssueCategory groups known issues by the kind of risk they carry.
type IssueCategory string

// Issue categories.
const (
	CategorySecurity        IssueCategory = "security"
	CategoryPerformance     IssueCategory = "performance"
	CategoryCorrectness     IssueCategory = "correctness"
	CategoryMaintainability IssueCategory = "maintainability"
	CategoryConcurrency     IssueCategory = "concurrency"
	CategoryCompatibility   IssueCategory = "compatibility"
)

var issueCategories = []IssueCategory{
	CategorySecurity, CategoryPerformance, CategoryCorrectness,
	CategoryMaintainability, CategoryConcurrency, CategoryCompatibility,
}

func (c IssueCategory) String() string { return string(c) }

// UnmarshalText rejects unknown categories.
func (c *IssueCategory) UnmarshalText(b []byte) error {
	return decodeEnum(b, c, issueCategories, "issue category")
}

// JSONSchema describes IssueCategory as a string enumeration.
func (IssueCategory) JSONSchema() *jsonschema.Schema { return enumSchema(issueCategories) }

// ModuleDependency is an outgoing dependency of a module.
type ModuleDependency struct {
	ModuleID       string         `json:"module_id" jsonschema:"required"`
	DependencyType DependencyType `json:"dependency_type"`
}

// NewModuleDependency returns a dependency on moduleID of the given kind.
func NewModuleDependency(moduleID string, kind DependencyType) ModuleDependency {
	return ModuleDependency{ModuleID: moduleID, DependencyType: kind}
}

// UnmarshalJSON decodes a dependency, defaulting the kind to runtime.
func (d *ModuleDependency) UnmarshalJSON(data []byte) error {
	type plain ModuleDependency
	p := plain{DependencyType: DependencyRuntime}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = ModuleDependency(p)
	return nil
}

// EvidenceLocation cites a file and line span that supports a convention or issue.
// An EndLine of zero or equal to StartLine denotes a single line.
type EvidenceLocation struct {
	File        string  `json:"file"`
	StartLine   uint32  `json:"start_line"`
	EndLine     uint32  `json:"end_line"`
	StartColumn *uint32 `json:"start_column,omitempty" jsonschema:"nullable"`
	EndColumn   *uint32 `json:"end_column,omitempty" jsonschema:"nullable"`
}

// NewEvidence returns a location pointing at a single line.
func NewEvidence(file string, line uint32) EvidenceLocation {
	return EvidenceLocation{File: file, StartLine: line, EndLine: line}
}

// NewEvidenceRange returns a location covering start through end inclusive.
// It returns ErrInvalidRange when start is after end.
func NewEvidenceRange(file string, start, end uint32) (EvidenceLocation, error) {
	if start > end {
		return EvidenceLocation{}, fmt.Errorf("%w: %s:%d-%d", ErrInvalidRange, file, start, end)
	}
	return EvidenceLocation{File: file, StartLine: start, EndLine: end}, nil
}

// Reference renders the location as "path:line" or "path:start-end".
func (e EvidenceLocation) Reference() string {
	if e.EndLine != e.StartLine && e.EndLine > 0 {
		return fmt.Sprintf("%s:%d-%d", e.File, e.StartLine, e.EndLine)
	}
	return fmt.Sprintf("%s:%d", e.File, e.StartLine)
}

func (e EvidenceLocation) String() string { return e.Reference() }

// GeneratorInfo names the tool that produced a document.
type GeneratorInfo struct {
	Name    string `json:"name" jsonschema:"required"`
	Version string `json:"version" jsonschema:"required"`
}

// Convention is a coding pattern observed in a module.
type Convention struct {
	Name      string             `json:"name" jsonschema:"required"`
	Pattern   string             `json:"pattern" jsonschema:"required"`
	Rationale *string            `json:"rationale,omitempty" jsonschema:"nullable"`
	Evidence  []EvidenceLocation `json:"evidence,omitempty"`
}

func (c Convention) String() string { return c.Name + ": " + c.Pattern }

// KnownIssue records a defect or hazard a contributor should know about.
type KnownIssue struct {
	ID          string             `json:"id" jsonschema:"required"`
	Description string             `json:"description" jsonschema:"required"`
	Severity    IssueSeverity      `json:"severity" jsonschema:"required"`
	Category    IssueCategory      `json:"category" jsonschema:"required"`
	Prevention  *string            `json:"prevention,omitempty" jsonschema:"nullable"`
	Evidence    []EvidenceLocation `json:"evidence,omitempty"`
}

func (k KnownIssue) String() string {
	return fmt.Sprintf("[%s] %s: %s", k.Severity, k.ID, k.Description)
}

// TechStack summarizes the languages, frameworks and tools of a project.
type TechStack struct {
	PrimaryLanguage string          `json:"primary_language" jsonschema:"required"`
	LanguageVersion *string         `json:"language_version,omitempty" jsonschema:"nullable"`
	Frameworks      []FrameworkInfo `json:"frameworks,omitempty"`
	BuildTools      []string        `json:"build_tools,omitempty"`
	TestFrameworks  []string        `json:"test_frameworks,omitempty"`
	KeyLibraries    []LibraryInfo   `json:"key_libraries,omitempty"`
}

// FrameworkInfo describes a framework and where it is used.
type FrameworkInfo struct {
	Name    string   `json:"name" jsonschema:"required"`
	Version *string  `json:"version,omitempty" jsonschema:"nullable"`
	Purpose string   `json:"purpose" jsonschema:"required"`
	Paths   []string `json:"paths,omitempty"`
}

// LibraryInfo describes a notable library dependency.
type LibraryInfo struct {
	Name    string `json:"name" jsonschema:"required"`
	Purpose string `json:"purpose" jsonschema:"required"`
}

// DetectedLanguage is a language found in the repository and its share of files.
type DetectedLanguage struct {
	Name        string   `json:"name" jsonschema:"required"`
	Percentage  float64  `json:"percentage"`
	Frameworks  []string `json:"frameworks,omitempty"`
	BuildTools  []string `json:"build_tools,omitempty"`
	MarkerFiles []string `json:"marker_files,omitempty"`
}

// PathInScope reports whether p equals or lies beneath any of the allowed
// paths. Matching is by whole path components, so "src/auth" covers
// "src/auth/login.go" but not "src/authz/policy.go".
func PathInScope(p string, allowed []string) bool {
	p = path.Clean(filepath.ToSlash(p))
	for _, a := range allowed {
		a = path.Clean(filepath.ToSlash(a))
		if p == a || strings.HasPrefix(p, strings.TrimSuffix(a, "/")+"/") {
			return true
		}
	}
	return false
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func decodeEnum[T ~string](text []byte, dst *T, valid []T, what string) error {
	v := T(text)
	if !slices.Contains(valid, v) {
		return fmt.Errorf("unknown %s %q", what, string(text))
	}
	*dst = v
	return nil
}

func enumSchema[T ~string](values []T) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}
