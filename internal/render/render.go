// Package render turns a plugin bundle into the markdown files an agent
// runtime reads: one file per agent and rule, and one directory per skill.
// Each file starts with a YAML frontmatter block.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/junyeong-ai/modmap/schema"
)

// Output roots inside the target directory.
const (
	AgentsDir = "agents"
	RulesDir  = "rules"
	SkillsDir = "skills"
)

// ErrUnsafeName is returned when an artifact name would place a file
// outside its directory.
var ErrUnsafeName = errors.New("unsafe artifact name")

// File is one rendered artifact. Path is slash-separated and relative to
// the output directory.
type File struct {
	Path    string
	Content []byte
}

type agentFrontmatter struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Tools           string `yaml:"tools,omitempty"`
	DisallowedTools string `yaml:"disallowedTools,omitempty"`
	Model           string `yaml:"model,omitempty"`
	PermissionMode  string `yaml:"permissionMode,omitempty"`
	Color           string `yaml:"color,omitempty"`
	Skills          string `yaml:"skills,omitempty"`
}

type ruleFrontmatter struct {
	Paths        []string `yaml:"paths,omitempty"`
	Triggers     []string `yaml:"triggers,omitempty"`
	Priority     uint8    `yaml:"priority"`
	AlwaysInject bool     `yaml:"alwaysInject,omitempty"`
}

type skillFrontmatter struct {
	Name                   string `yaml:"name"`
	Description            string `yaml:"description"`
	Version                string `yaml:"version,omitempty"`
	AllowedTools           string `yaml:"allowed-tools,omitempty"`
	Model                  string `yaml:"model,omitempty"`
	Context                string `yaml:"context,omitempty"`
	Agent                  string `yaml:"agent,omitempty"`
	UserInvocable          *bool  `yaml:"user-invocable,omitempty"`
	ArgumentHint           string `yaml:"argument-hint,omitempty"`
	DisableModelInvocation *bool  `yaml:"disable-model-invocation,omitempty"`
}

// Bundle renders every artifact in b. Files come back in bundle order:
// agents, then rules, then skills.
func Bundle(b *schema.PluginBundle) ([]File, error) {
	var files []File
	for _, a := range b.Agents {
		f, err := Agent(a)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	for _, r := range b.Rules {
		f, err := Rule(r)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	for _, s := range b.Skills {
		fs, err := Skill(s)
		if err != nil {
			return nil, err
		}
		files = append(files, fs...)
	}
	return files, nil
}

// Agent renders agents/<name>.md. The prompt is the body; examples follow
// it under an Examples heading.
func Agent(a schema.Agent) (File, error) {
	if err := checkName(a.Name); err != nil {
		return File{}, err
	}
	fm := agentFrontmatter{
		Name:            a.Name,
		Description:     a.Description,
		Tools:           strings.Join(a.Tools, ", "),
		DisallowedTools: strings.Join(a.DisallowedTools, ", "),
		Skills:          strings.Join(a.Skills, ", "),
	}
	if a.Model != "" {
		fm.Model = a.Model.String()
	}
	if a.PermissionMode != "" {
		fm.PermissionMode = a.PermissionMode.String()
	}
	if a.Color != "" {
		fm.Color = a.Color.String()
	}

	var body strings.Builder
	body.WriteString(strings.TrimSpace(a.Prompt))
	body.WriteString("\n")
	if len(a.Examples) > 0 {
		body.WriteString("\n## Examples\n")
		for _, ex := range a.Examples {
			fmt.Fprintf(&body, "\n<example>\nContext: %s\nuser: %q\nassistant: %q\n", ex.Context, ex.User, ex.Assistant)
			if ex.Commentary != nil {
				fmt.Fprintf(&body, "<commentary>%s</commentary>\n", *ex.Commentary)
			}
			body.WriteString("</example>\n")
		}
	}

	content, err := document(fm, body.String())
	if err != nil {
		return File{}, fmt.Errorf("render agent %s: %w", a.Name, err)
	}
	return File{Path: path.Join(AgentsDir, a.Name+".md"), Content: content}, nil
}

// Rule renders the rule at rules/<Rule.OutputPath()>. Content blocks are
// separated by blank lines.
func Rule(r schema.Rule) (File, error) {
	if err := checkName(r.Name); err != nil {
		return File{}, err
	}
	fm := ruleFrontmatter{
		Paths:        r.Paths,
		Triggers:     r.Triggers,
		Priority:     r.Priority,
		AlwaysInject: r.AlwaysInject,
	}
	blocks := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		blocks = append(blocks, strings.TrimSpace(c))
	}
	content, err := document(fm, strings.Join(blocks, "\n\n")+"\n")
	if err != nil {
		return File{}, fmt.Errorf("render rule %s: %w", r.Name, err)
	}
	return File{Path: path.Join(RulesDir, r.OutputPath()), Content: content}, nil
}

// Skill renders skills/<name>/SKILL.md followed by the skill's additional
// files, written verbatim next to it.
func Skill(s schema.Skill) ([]File, error) {
	if err := checkName(s.Name); err != nil {
		return nil, err
	}
	fm := skillFrontmatter{
		Name:                   s.Name,
		Description:            s.Description,
		Version:                s.Version,
		AllowedTools:           strings.Join(s.AllowedTools, ", "),
		Model:                  deref(s.Model),
		Context:                string(s.Context),
		Agent:                  deref(s.Agent),
		UserInvocable:          s.UserInvocable,
		ArgumentHint:           deref(s.ArgumentHint),
		DisableModelInvocation: s.DisableModelInvocation,
	}
	content, err := document(fm, strings.TrimSpace(s.Body)+"\n")
	if err != nil {
		return nil, fmt.Errorf("render skill %s: %w", s.Name, err)
	}

	dir := path.Join(SkillsDir, s.Name)
	files := []File{{Path: path.Join(dir, "SKILL.md"), Content: content}}
	for _, extra := range s.AdditionalFiles {
		if err := checkRelative(extra.Name); err != nil {
			return nil, fmt.Errorf("render skill %s: %w", s.Name, err)
		}
		files = append(files, File{Path: path.Join(dir, extra.Name), Content: []byte(extra.Content)})
	}
	return files, nil
}

// Write writes files under dir, creating directories as needed.
func Write(dir string, files []File) error {
	for _, f := range files {
		if err := checkRelative(f.Path); err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("render: create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return fmt.Errorf("render: write %s: %w", target, err)
		}
	}
	return nil
}

func document(frontmatter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(frontmatter); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// checkName accepts single path components only.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return nil
}

// checkRelative accepts relative paths that stay inside their root.
func checkRelative(p string) error {
	clean := path.Clean(filepath.ToSlash(p))
	if p == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(p, `\`) {
		return fmt.Errorf("%w: %q", ErrUnsafeName, p)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
