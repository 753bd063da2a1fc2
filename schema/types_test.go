package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"
)

func TestEvidenceReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  EvidenceLocation
		want string
	}{
		{"single line", NewEvidence("src/auth/login.go", 42), "src/auth/login.go:42"},
		{"zero end", EvidenceLocation{File: "a.go", StartLine: 7}, "a.go:7"},
		{"range", EvidenceLocation{File: "src/x.rs", StartLine: 10, EndLine: 25}, "src/x.rs:10-25"},
		{"all zero", EvidenceLocation{File: "a.go"}, "a.go:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.loc.Reference(); got != tt.want {
				t.Errorf("Reference() = %q, want %q", got, tt.want)
			}
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewEvidenceRange(t *testing.T) {
	t.Parallel()

	loc, err := NewEvidenceRange("src/x.rs", 10, 25)
	if err != nil {
		t.Fatalf("NewEvidenceRange: %v", err)
	}
	if loc.Reference() != "src/x.rs:10-25" {
		t.Errorf("Reference() = %q", loc.Reference())
	}

	_, err = NewEvidenceRange("src/x.rs", 30, 10)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("NewEvidenceRange(30, 10) error = %v, want ErrInvalidRange", err)
	}
}

func TestEvidenceReferenceProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		file := rapid.StringMatching(`[a-z]{1,8}(/[a-z]{1,8}){0,3}\.go`).Draw(rt, "file")
		start := rapid.Uint32Range(1, 100000).Draw(rt, "start")
		end := rapid.Uint32Range(start, start+1000).Draw(rt, "end")

		loc, err := NewEvidenceRange(file, start, end)
		if err != nil {
			rt.Fatalf("NewEvidenceRange(%d, %d): %v", start, end, err)
		}
		want := fmt.Sprintf("%s:%d-%d", file, start, end)
		if start == end {
			want = fmt.Sprintf("%s:%d", file, start)
		}
		if got := loc.Reference(); got != want {
			rt.Fatalf("Reference() = %q, want %q", got, want)
		}
	})
}

func TestIssueSeverity(t *testing.T) {
	t.Parallel()

	if got := SeverityCritical.String(); got != "CRITICAL" {
		t.Errorf("String() = %q, want CRITICAL", got)
	}
	if got := SeverityLow.String(); got != "LOW" {
		t.Errorf("String() = %q, want LOW", got)
	}

	shuffled := []IssueSeverity{SeverityLow, SeverityCritical, SeverityMedium, SeverityHigh}
	slices.SortFunc(shuffled, func(a, b IssueSeverity) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	want := []IssueSeverity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
	if !slices.Equal(shuffled, want) {
		t.Errorf("sorted = %v, want %v", shuffled, want)
	}
}

func TestEnumDecoding(t *testing.T) {
	t.Parallel()

	var dt DependencyType
	if err := json.Unmarshal([]byte(`"build"`), &dt); err != nil || dt != DependencyBuild {
		t.Errorf("decode build = %q, %v", dt, err)
	}
	if err := json.Unmarshal([]byte(`"Build"`), &dt); err == nil {
		t.Error("decode of \"Build\" should fail: enums are case-sensitive on the wire")
	}

	var ws WorkspaceType
	if err := json.Unmarshal([]byte(`"galaxy"`), &ws); err == nil {
		t.Error("decode of unknown workspace type should fail")
	}

	var zero ProjectType
	b, err := json.Marshal(zero)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"application"` {
		t.Errorf("zero ProjectType encodes as %s, want \"application\"", b)
	}
}

func TestModuleDependency(t *testing.T) {
	t.Parallel()

	var d ModuleDependency
	if err := json.Unmarshal([]byte(`{"module_id":"auth"}`), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if d != NewModuleDependency("auth", DependencyRuntime) {
		t.Errorf("decoded %+v, want runtime dependency on auth", d)
	}

	if got := NewModuleDependency("db", DependencyTest); got.DependencyType != DependencyTest {
		t.Errorf("NewModuleDependency kind = %q, want test", got.DependencyType)
	}
}

func TestDisplayForms(t *testing.T) {
	t.Parallel()

	c := Convention{Name: "errors", Pattern: "wrap with %w"}
	if got := c.String(); got != "errors: wrap with %w" {
		t.Errorf("Convention.String() = %q", got)
	}

	k := KnownIssue{ID: "race-1", Description: "unguarded map", Severity: SeverityHigh, Category: CategoryConcurrency}
	if got := k.String(); got != "[HIGH] race-1: unguarded map" {
		t.Errorf("KnownIssue.String() = %q", got)
	}
}

func TestPathInScope(t *testing.T) {
	t.Parallel()

	allowed := []string{"src/auth", "pkg/db/"}
	tests := []struct {
		path string
		want bool
	}{
		{"src/auth/login.go", true},
		{"src/auth", true},
		{"src/authz/policy.go", false},
		{"pkg/db/conn.go", true},
		{"pkg/dbx/conn.go", false},
		{"./src/auth/deep/x.go", true},
		{"lib/other.go", false},
	}
	for _, tt := range tests {
		if got := PathInScope(tt.path, allowed); got != tt.want {
			t.Errorf("PathInScope(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if PathInScope("src/auth/x.go", nil) {
		t.Error("PathInScope with no allowed paths should be false")
	}
}
