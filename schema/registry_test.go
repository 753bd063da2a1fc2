package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func moduleMapJSON(schemaVersion string) string {
	return fmt.Sprintf(`{
		"schema_version": %q,
		"generator": {"name": "claudegen", "version": "0.3.0"},
		"project": {
			"name": "demo",
			"workspace": {},
			"tech_stack": {"primary_language": "go"},
			"languages": [],
			"total_files": 0
		},
		"modules": [],
		"generated_at": "2026-01-29T00:00:00Z"
	}`, schemaVersion)
}

const richModuleMap = `{
	"schema_version": "1.2.0",
	"generator": {"name": "claudegen", "version": "0.3.0"},
	"project": {
		"name": "shop",
		"project_type": "service",
		"workspace": {"workspace_type": "monorepo", "root": "."},
		"tech_stack": {"primary_language": "go", "frameworks": [{"name": "chi", "purpose": "routing"}]},
		"languages": [{"name": "go", "percentage": 92.5}],
		"total_files": 311,
		"commands": {"build": "go build ./...", "test": "go test ./..."}
	},
	"modules": [{
		"id": "auth",
		"name": "Authentication",
		"paths": ["internal/auth/"],
		"responsibility": "Sessions",
		"primary_language": "go",
		"value_score": 0.9,
		"risk_score": 0.5,
		"dependencies": [{"module_id": "db"}, {"module_id": "log", "dependency_type": "build"}],
		"conventions": [{"name": "errors", "pattern": "wrap with %w", "evidence": [{"file": "internal/auth/login.go", "start_line": 10, "end_line": 20}]}],
		"known_issues": [{"id": "auth-1", "description": "token not rotated", "severity": "high", "category": "security"}]
	}],
	"groups": [{"id": "core", "name": "Core", "module_ids": ["auth"], "responsibility": "core"}],
	"dependency_graph": {"edges": [{"from": "auth", "to": "db"}]},
	"generated_at": "2026-01-29T08:30:00Z",
	"future_field": {"anything": true}
}`

func TestRegistryLoad_Accepts(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, v := range []string{"1.0.0", "1.0.1", "1.5.2", "1.99.0"} {
		t.Run(v, func(t *testing.T) {
			t.Parallel()
			m, err := r.Load(moduleMapJSON(v))
			if err != nil {
				t.Fatalf("Load(%s): %v", v, err)
			}
			if m.SchemaVersion != v {
				t.Errorf("SchemaVersion = %q, want %q", m.SchemaVersion, v)
			}
		})
	}
}

func TestRegistryLoad_Incompatible(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, v := range []string{"2.0.0", "0.9.0", "3.1.4"} {
		t.Run(v, func(t *testing.T) {
			t.Parallel()
			_, err := r.Load(moduleMapJSON(v))
			var iv *IncompatibleVersionError
			if !errors.As(err, &iv) {
				t.Fatalf("Load(%s) error = %v, want *IncompatibleVersionError", v, err)
			}
			if iv.Found != v || iv.RequiredMajor != 1 {
				t.Errorf("got %+v, want Found=%s RequiredMajor=1", iv, v)
			}
			want := fmt.Sprintf("incompatible schema version: found %s, required major version 1", v)
			if err.Error() != want {
				t.Errorf("Error() = %q, want %q", err.Error(), want)
			}
			if KindOf(err) != KindIncompatibleVersion {
				t.Errorf("KindOf = %q", KindOf(err))
			}
		})
	}
}

func TestRegistryLoad_Malformed(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, v := range []string{"latest", "v1.0.0", "1.0", "", "not-a-version"} {
		t.Run(fmt.Sprintf("%q", v), func(t *testing.T) {
			t.Parallel()
			_, err := r.Load(moduleMapJSON(v))
			var mv *MalformedVersionError
			if !errors.As(err, &mv) {
				t.Fatalf("Load(%q) error = %v, want *MalformedVersionError", v, err)
			}
			if mv.Raw != v {
				t.Errorf("Raw = %q, want %q", mv.Raw, v)
			}
			if KindOf(err) != KindMalformedVersion {
				t.Errorf("KindOf = %q", KindOf(err))
			}
		})
	}
}

func TestRegistryLoad_ParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"syntax", `{"schema_version": "1.0.0",`},
		{"not an object", `["1.0.0"]`},
		{"trailing data", moduleMapJSON("1.0.0") + " {}"},
		{"missing schema_version", strings.Replace(moduleMapJSON("1.0.0"), `"schema_version": "1.0.0",`, "", 1)},
		{"version is a number", strings.Replace(moduleMapJSON("1.0.0"), `"1.0.0"`, `1`, 1)},
		{"missing project with bad version", `{"schema_version": "9.9.9", "generator": {"name": "x", "version": "1"}, "modules": [], "generated_at": "2026-01-29T00:00:00Z"}`},
		{"unknown enum", strings.Replace(richModuleMap, `"severity": "high"`, `"severity": "urgent"`, 1)},
		{"null required field", strings.Replace(richModuleMap, `"name": "shop"`, `"name": null`, 1)},
		{"bad timestamp", strings.Replace(moduleMapJSON("1.0.0"), "2026-01-29T00:00:00Z", "yesterday", 1)},
		{"negative count", strings.Replace(moduleMapJSON("1.0.0"), `"total_files": 0`, `"total_files": -1`, 1)},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := r.Load(tt.raw)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Load error = %v, want *ParseError", err)
			}
			if pe.Doc != KindModuleMap {
				t.Errorf("Doc = %q, want %q", pe.Doc, KindModuleMap)
			}
			if !errors.Is(err, ErrParse) || errors.Is(err, ErrMalformedVersion) || errors.Is(err, ErrIncompatibleVersion) {
				t.Errorf("error %v should match only ErrParse", err)
			}
		})
	}
}

func TestRegistryLoad_ParseErrorNamesField(t *testing.T) {
	t.Parallel()

	raw := strings.Replace(moduleMapJSON("1.0.0"), `"name": "demo",`, "", 1)
	_, err := NewRegistry().Load(raw)
	if err == nil {
		t.Fatal("Load succeeded without project.name")
	}
	if !strings.Contains(err.Error(), "name") || !strings.Contains(err.Error(), "project") {
		t.Errorf("error %q does not locate the missing field", err)
	}
}

func TestRegistryLoad_Defaults(t *testing.T) {
	t.Parallel()

	m, err := NewRegistry().Load(moduleMapJSON("1.0.0"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Project.ProjectType != ProjectApplication {
		t.Errorf("ProjectType = %q, want application", m.Project.ProjectType)
	}
	if m.Project.Workspace.WorkspaceType != WorkspaceSinglePackage {
		t.Errorf("WorkspaceType = %q, want single_package", m.Project.Workspace.WorkspaceType)
	}
	if m.Groups == nil || len(m.Groups) != 0 {
		t.Errorf("Groups = %#v, want empty non-nil slice", m.Groups)
	}
	if m.Project.TechStack.Frameworks == nil {
		t.Error("TechStack.Frameworks should be an empty slice")
	}
	if m.DependencyGraph != nil || m.Project.Commands != nil || m.Project.Description != nil {
		t.Error("absent optional records should stay nil")
	}
}

func TestRegistryLoad_RichDocument(t *testing.T) {
	t.Parallel()

	m, err := NewRegistry().Load(richModuleMap)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	auth := m.FindModule("auth")
	if auth == nil {
		t.Fatal("module auth missing")
	}
	if auth.Dependencies[0].DependencyType != DependencyRuntime || auth.Dependencies[1].DependencyType != DependencyBuild {
		t.Errorf("dependency kinds = %v", auth.Dependencies)
	}
	if auth.KeyFiles == nil || auth.Evidence == nil || auth.Dependents == nil {
		t.Error("absent module lists should be empty slices")
	}
	if got := auth.PriorityScore(); got < 0.739 || got > 0.741 {
		t.Errorf("PriorityScore = %v, want 0.74", got)
	}
	if got := auth.Conventions[0].Evidence[0].Reference(); got != "internal/auth/login.go:10-20" {
		t.Errorf("evidence reference = %q", got)
	}
	if got := auth.KnownIssues[0].String(); got != "[HIGH] auth-1: token not rotated" {
		t.Errorf("issue = %q", got)
	}
	if m.DependencyGraph == nil || m.DependencyGraph.Edges[0].EdgeType != DependencyRuntime {
		t.Errorf("dependency graph = %+v", m.DependencyGraph)
	}
	if m.DependencyGraph.Layers == nil {
		t.Error("DependencyGraph.Layers should be an empty slice")
	}
	if m.Project.ProjectType != ProjectService || m.Project.Workspace.WorkspaceType != WorkspaceMonorepo {
		t.Errorf("project = %+v", m.Project)
	}
}

func TestRegistryLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, raw := range []string{moduleMapJSON("1.0.0"), richModuleMap} {
		first, err := r.Load(raw)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		encoded, err := first.ToJSON()
		if err != nil {
			t.Fatalf("ToJSON: %v", err)
		}
		second, err := r.Load(string(encoded))
		if err != nil {
			t.Fatalf("reload: %v\n%s", err, encoded)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("round trip mismatch (-first +second):\n%s", diff)
		}
	}
}

func TestRegistryLoad_ConstructedRoundTrip(t *testing.T) {
	t.Parallel()

	m := sampleModuleMap()
	encoded, err := m.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := NewRegistry().Load(string(encoded))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("constructed map did not survive a round trip (-want +got):\n%s", diff)
	}
}

func TestRegistryLoad_Idempotent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a, errA := r.Load(richModuleMap)
	b, errB := r.Load(richModuleMap)
	if errA != nil || errB != nil {
		t.Fatalf("Load errors: %v, %v", errA, errB)
	}
	if a == b {
		t.Error("Load returned the same pointer twice; the registry must not retain documents")
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated loads differ:\n%s", diff)
	}
}

func TestRegistryLoad_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := "1.0.0"
			if i%2 == 1 {
				v = "2.0.0"
			}
			_, err := r.Load(moduleMapJSON(v))
			if (v == "1.0.0") != (err == nil) {
				errs <- fmt.Errorf("version %s: unexpected result %v", v, err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestRegistryVersion(t *testing.T) {
	t.Parallel()

	if got := NewRegistry().Version(); got != (Version{1, 0, 0}) {
		t.Errorf("Version() = %s, want 1.0.0", got)
	}
}

func TestRegistryCustomVersion(t *testing.T) {
	t.Parallel()

	r := &Registry{version: MustParseVersion("2.0.0")}
	if _, err := r.Load(moduleMapJSON("2.3.0")); err != nil {
		t.Errorf("2.x registry rejected 2.3.0: %v", err)
	}
	_, err := r.Load(moduleMapJSON("1.0.0"))
	var iv *IncompatibleVersionError
	if !errors.As(err, &iv) || iv.RequiredMajor != 2 {
		t.Errorf("2.x registry on 1.0.0 = %v, want incompatible with required major 2", err)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{errors.New("other"), ""},
		{&ParseError{Doc: KindPlugin, Err: errors.New("x")}, KindParse},
		{fmt.Errorf("wrapped: %w", &MalformedVersionError{Raw: "x"}), KindMalformedVersion},
		{&IncompatibleVersionError{Found: "2.0.0", RequiredMajor: 1}, KindIncompatibleVersion},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRegistryLoadKind(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	doc, err := r.LoadKind(KindModuleMap, moduleMapJSON("1.0.0"))
	if err != nil {
		t.Fatalf("LoadKind: %v", err)
	}
	if _, ok := doc.(*ModuleMap); !ok {
		t.Errorf("LoadKind returned %T, want *ModuleMap", doc)
	}

	doc, err = r.LoadKind(KindModuleMap, moduleMapJSON("2.0.0"))
	if err == nil || doc != nil {
		t.Errorf("LoadKind on incompatible document = (%v, %v), want (nil, error)", doc, err)
	}

	if _, err := r.LoadKind("graph", "{}"); !errors.Is(err, ErrUnknownDocumentKind) {
		t.Errorf("LoadKind(graph) error = %v, want ErrUnknownDocumentKind", err)
	}
}
