package docfmt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/junyeong-ai/modmap/schema"
)

const moduleMapDoc = `{
	"schema_version": "1.0.0",
	"generator": {"name": "claudegen", "version": "0.3.0"},
	"project": {
		"name": "shop",
		"project_type": "service",
		"workspace": {"workspace_type": "monorepo", "root": "."},
		"tech_stack": {"primary_language": "go"},
		"languages": [{"name": "go", "percentage": 92.5}],
		"total_files": 311
	},
	"modules": [{
		"id": "auth",
		"name": "Authentication",
		"paths": ["internal/auth/"],
		"responsibility": "Sessions",
		"primary_language": "go",
		"value_score": 0.9,
		"dependencies": [{"module_id": "db", "dependency_type": "build"}],
		"known_issues": [{"id": "auth-1", "description": "token not rotated", "severity": "high", "category": "security",
			"evidence": [{"file": "internal/auth/login.go", "start_line": 10, "end_line": 20}]}]
	}],
	"groups": [{"id": "core", "name": "Core", "module_ids": ["auth"], "responsibility": "core"}],
	"generated_at": "2026-01-29T08:30:00Z"
}`

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"json", JSON, false},
		{"YAML", YAML, false},
		{"yml", YAML, false},
		{" toml ", TOML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if tt.err && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error should wrap ErrUnknownFormat", tt.in)
		}
	}
}

func TestFromPathAndMediaType(t *testing.T) {
	t.Parallel()

	paths := map[string]Format{
		"modulemap.json":   JSON,
		"plugin.yaml":      YAML,
		"dir/manifest.YML": YAML,
		"bundle.toml":      TOML,
	}
	for p, want := range paths {
		if got, ok := FromPath(p); !ok || got != want {
			t.Errorf("FromPath(%q) = %q, %v", p, got, ok)
		}
	}
	if _, ok := FromPath("notes.txt"); ok {
		t.Error("FromPath(notes.txt) should not match")
	}

	types := map[string]Format{
		"application/json":                  JSON,
		"application/yaml":                  YAML,
		"application/x-yaml; charset=utf-8": YAML,
		"text/yaml":                         YAML,
		"application/toml":                  TOML,
		"":                                  JSON,
	}
	for ct, want := range types {
		if got := FromMediaType(ct); got != want {
			t.Errorf("FromMediaType(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Format
	}{
		{"json", "  {\"a\": 1}", JSON},
		{"toml", "schema_version = \"1.0.0\"\n[generator]\nname = \"x\"\n", TOML},
		{"yaml", "schema_version: 1.0.0\ngenerator:\n  name: x\n", YAML},
		{"empty", "", YAML},
	}
	for _, tt := range tests {
		if got := Detect([]byte(tt.raw)); got != tt.want {
			t.Errorf("Detect(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	yamlDoc := "name: reviewer\npriority: 80\ntags: [a, b]\nnested:\n  ok: true\n"
	tomlDoc := "name = \"reviewer\"\npriority = 80\ntags = [\"a\", \"b\"]\n[nested]\nok = true\n"
	want := map[string]any{
		"name":     "reviewer",
		"priority": float64(80),
		"tags":     []any{"a", "b"},
		"nested":   map[string]any{"ok": true},
	}

	for f, raw := range map[Format]string{YAML: yamlDoc, TOML: tomlDoc} {
		out, err := ToJSON([]byte(raw), f)
		if err != nil {
			t.Fatalf("ToJSON(%s): %v", f, err)
		}
		var got map[string]any
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatalf("ToJSON(%s) produced invalid JSON: %v", f, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ToJSON(%s) (-want +got):\n%s", f, diff)
		}
	}

	if out, err := ToJSON([]byte("{not json"), JSON); err != nil || string(out) != "{not json" {
		t.Error("JSON input should pass through untouched")
	}
	if _, err := ToJSON([]byte("a = ["), TOML); err == nil || !strings.Contains(err.Error(), "parse toml") {
		t.Errorf("broken TOML error = %v", err)
	}
	if _, err := ToJSON([]byte("a: [b"), YAML); err == nil {
		t.Error("broken YAML should fail")
	}
}

func TestEncode_RoundTripsThroughRegistry(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	want, err := reg.Load(moduleMapDoc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, f := range []Format{JSON, YAML, TOML} {
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()
			encoded, err := Encode(want, f)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if got := Detect(encoded); got != f {
				t.Errorf("Detect(Encode(%s)) = %s", f, got)
			}
			raw, err := ToJSON(encoded, f)
			if err != nil {
				t.Fatalf("ToJSON: %v\n%s", err, encoded)
			}
			got, err := reg.Load(string(raw))
			if err != nil {
				t.Fatalf("reload: %v\n%s", err, encoded)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := Encode(map[string]int{"a": 1}, "xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(xml) error = %v", err)
	}
	if _, err := Encode([]int{1}, TOML); err == nil {
		t.Error("TOML needs a table at the root")
	}
}
