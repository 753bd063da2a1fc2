// Package ui prints human-facing results: validation verdicts, document
// summaries, diffs and progress lines. Machine-readable output (schemas,
// converted documents) bypasses it and goes straight to stdout.
package ui

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/junyeong-ai/modmap/internal/ansi"
	"github.com/junyeong-ai/modmap/internal/docdiff"
	"github.com/junyeong-ai/modmap/internal/render"
	"github.com/junyeong-ai/modmap/internal/validate"
	"github.com/junyeong-ai/modmap/internal/watcher"
	"github.com/junyeong-ai/modmap/schema"
)

// Printer writes reports to out and status lines to errOut, coloring each
// only when it is a terminal.
type Printer struct {
	out      io.Writer
	errOut   io.Writer
	color    bool
	errColor bool
}

// New returns a Printer writing reports to stdout and status to stderr.
func New() *Printer {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters returns a Printer on the given writers.
func NewWithWriters(out, errOut io.Writer) *Printer {
	return &Printer{
		out:      out,
		errOut:   errOut,
		color:    ansi.Enabled(out),
		errColor: ansi.Enabled(errOut),
	}
}

func (p *Printer) style(s string, styles ...string) string {
	if !p.color {
		return s
	}
	return ansi.Wrap(s, styles...)
}

func (p *Printer) errStyle(s string, styles ...string) string {
	if !p.errColor {
		return s
	}
	return ansi.Wrap(s, styles...)
}

// Info prints a dim status line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.errOut, p.errStyle(msg, ansi.Dim))
}

// Warn prints a warning status line.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.errOut, "%s%s\n", p.errStyle("warning: ", ansi.Yellow, ansi.Bold), msg)
}

// Error prints an error status line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.errOut, "%s%s\n", p.errStyle("error: ", ansi.Red, ansi.Bold), msg)
}

// Verdict prints one line per validated document, followed by the error
// when it was rejected.
func (p *Printer) Verdict(res validate.Result) {
	if res.OK() {
		fmt.Fprintf(p.out, "%s %s %s\n",
			p.style("✓", ansi.Green, ansi.Bold),
			res.Source,
			p.style(fmt.Sprintf("(%s %s)", res.Kind, res.SchemaVersion), ansi.Dim))
		return
	}
	label := string(res.ErrorKind())
	if label == "" {
		label = "error"
	}
	fmt.Fprintf(p.out, "%s %s %s\n",
		p.style("✗", ansi.Red, ansi.Bold),
		res.Source,
		p.style(fmt.Sprintf("(%s, %s)", res.Kind, label), ansi.Red))
	fmt.Fprintf(p.out, "  %s\n", res.Err)
}

// ValidateSummary prints the accepted and rejected totals of a run.
func (p *Printer) ValidateSummary(accepted, rejected int) {
	if rejected == 0 {
		fmt.Fprintln(p.out, p.style(fmt.Sprintf("%d document(s) valid", accepted), ansi.Green, ansi.Bold))
		return
	}
	fmt.Fprintln(p.out, p.style(fmt.Sprintf("%d of %d document(s) rejected", rejected, accepted+rejected), ansi.Red, ansi.Bold))
}

// ModuleMap prints a module map summary: project, modules by priority,
// groups, and known issues most severe first.
func (p *Printer) ModuleMap(m *schema.ModuleMap) {
	proj := m.Project
	fmt.Fprintf(p.out, "%s %s\n", p.style(proj.Name, ansi.Bold, ansi.Cyan), p.style("("+proj.ProjectType.String()+")", ansi.Dim))
	fmt.Fprintf(p.out, "  schema:     %s\n", m.SchemaVersion)
	fmt.Fprintf(p.out, "  generator:  %s %s\n", m.Generator.Name, m.Generator.Version)
	fmt.Fprintf(p.out, "  generated:  %s\n", m.GeneratedAt.Format("2006-01-02 15:04:05Z07:00"))
	fmt.Fprintf(p.out, "  workspace:  %s\n", proj.Workspace.WorkspaceType)
	fmt.Fprintf(p.out, "  language:   %s\n", proj.TechStack.PrimaryLanguage)
	fmt.Fprintf(p.out, "  files:      %d\n", proj.TotalFiles)

	mods := make([]schema.Module, len(m.Modules))
	copy(mods, m.Modules)
	slices.SortStableFunc(mods, func(a, b schema.Module) int {
		switch pa, pb := a.PriorityScore(), b.PriorityScore(); {
		case pa > pb:
			return -1
		case pa < pb:
			return 1
		}
		return 0
	})
	fmt.Fprintf(p.out, "\n%s\n", p.style(fmt.Sprintf("modules (%d)", len(mods)), ansi.Bold))
	for _, mod := range mods {
		fmt.Fprintf(p.out, "  %-20s %s  %s\n", mod.ID, p.style(fmt.Sprintf("%.2f", mod.PriorityScore()), ansi.Yellow), mod.Responsibility)
	}

	if len(m.Groups) > 0 {
		fmt.Fprintf(p.out, "\n%s\n", p.style(fmt.Sprintf("groups (%d)", len(m.Groups)), ansi.Bold))
		for _, g := range m.Groups {
			fmt.Fprintf(p.out, "  %-20s %s\n", g.ID, strings.Join(g.ModuleIDs, ", "))
		}
	}

	type located struct {
		module string
		issue  schema.KnownIssue
	}
	var issues []located
	for _, mod := range m.Modules {
		for _, is := range mod.KnownIssues {
			issues = append(issues, located{mod.ID, is})
		}
	}
	if len(issues) == 0 {
		return
	}
	slices.SortStableFunc(issues, func(a, b located) int {
		switch {
		case a.issue.Severity.Less(b.issue.Severity):
			return -1
		case b.issue.Severity.Less(a.issue.Severity):
			return 1
		}
		return 0
	})
	fmt.Fprintf(p.out, "\n%s\n", p.style(fmt.Sprintf("known issues (%d)", len(issues)), ansi.Bold))
	for _, li := range issues {
		fmt.Fprintf(p.out, "  %s %s %s\n", p.style(fmt.Sprintf("%-8s", li.issue.Severity), severityColor(li.issue.Severity)), li.module, li.issue.Description)
		for _, ev := range li.issue.Evidence {
			fmt.Fprintf(p.out, "           %s\n", p.style(ev.Reference(), ansi.Dim))
		}
	}
}

// Manifest prints a manifest summary followed by its module map.
func (p *Printer) Manifest(m *schema.ProjectManifest) {
	fmt.Fprintf(p.out, "%s %s %s\n", p.style("manifest", ansi.Bold), m.Version, p.style("by "+m.Generator, ansi.Dim))
	fmt.Fprintf(p.out, "  rules: %d  skills: %d  agents: %d  tracked files: %d\n\n", len(m.Rules), len(m.Skills), len(m.Agents), len(m.Tracked))
	p.ModuleMap(&m.Project)
}

// Plugin prints the artifacts of a plugin bundle.
func (p *Printer) Plugin(b *schema.PluginBundle) {
	fmt.Fprintf(p.out, "%s %s\n", p.style("plugin bundle", ansi.Bold), b.SchemaVersion)
	for _, a := range b.Agents {
		fmt.Fprintf(p.out, "  %s %-20s %s\n", p.style("agent", ansi.Blue), a.Name, a.Description)
	}
	for _, r := range b.Rules {
		fmt.Fprintf(p.out, "  %s  %-20s %s (priority %d)\n", p.style("rule", ansi.Magenta), r.Name, r.OutputPath(), r.Priority)
	}
	for _, s := range b.Skills {
		fmt.Fprintf(p.out, "  %s %-20s %s\n", p.style("skill", ansi.Cyan), s.Name, s.Description)
	}
}

// Diff prints hunks with -/+ markers. Identical documents print a single note.
func (p *Printer) Diff(a, b string, hunks []docdiff.Hunk) {
	if len(hunks) == 0 {
		fmt.Fprintln(p.out, p.style("documents are identical", ansi.Dim))
		return
	}
	fmt.Fprintln(p.out, p.style("--- "+a, ansi.Red, ansi.Bold))
	fmt.Fprintln(p.out, p.style("+++ "+b, ansi.Green, ansi.Bold))
	for _, h := range hunks {
		fmt.Fprintln(p.out, p.style("@@", ansi.Cyan))
		for _, l := range h {
			switch l.Op {
			case docdiff.Delete:
				fmt.Fprintln(p.out, p.style("-"+l.Text, ansi.Red))
			case docdiff.Insert:
				fmt.Fprintln(p.out, p.style("+"+l.Text, ansi.Green))
			default:
				fmt.Fprintln(p.out, " "+l.Text)
			}
		}
	}
}

// WatchChange prints a status line for a file change seen by `watch`.
func (p *Printer) WatchChange(c watcher.Change) {
	fmt.Fprintf(p.errOut, "%s %s %s\n", p.errStyle("↻", ansi.Cyan), c.File, p.errStyle(c.Kind.String(), ansi.Dim))
}

// Rendered lists the files written by `render`, or the files it would
// write when dryRun is set.
func (p *Printer) Rendered(dir string, files []render.File, dryRun bool) {
	for _, f := range files {
		fmt.Fprintf(p.out, "  %s %s\n", p.style("+", ansi.Green), f.Path)
	}
	if dryRun {
		fmt.Fprintln(p.out, p.style(fmt.Sprintf("would write %d file(s) to %s", len(files), dir), ansi.Dim))
		return
	}
	fmt.Fprintln(p.out, p.style(fmt.Sprintf("✓ wrote %d file(s) to %s", len(files), dir), ansi.Green, ansi.Bold))
}

// Version prints the tool and supported schema versions.
func (p *Printer) Version(tool string, supported schema.Version) {
	fmt.Fprintf(p.out, "modmap %s\n", tool)
	fmt.Fprintf(p.out, "schema %s (accepts %d.x.x)\n", supported, supported.Major)
}

func severityColor(s schema.IssueSeverity) string {
	switch s {
	case schema.SeverityCritical, schema.SeverityHigh:
		return ansi.Red
	case schema.SeverityMedium:
		return ansi.Yellow
	}
	return ansi.Dim
}
