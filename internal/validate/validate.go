// Package validate runs documents through the schema registry on behalf of
// the CLI and the HTTP service. It owns everything around a load that the
// schema package deliberately leaves out: reading files, transcoding YAML
// and TOML, guessing the document kind, logging, telemetry and metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/junyeong-ai/modmap/internal/docfmt"
	"github.com/junyeong-ai/modmap/internal/metrics"
	"github.com/junyeong-ai/modmap/internal/telemetry"
	"github.com/junyeong-ai/modmap/schema"
)

// Stdin is the source name that makes File read standard input.
const Stdin = "-"

// outcomeIOError labels failures that happened before the registry ran.
const outcomeIOError = "io_error"

// Result is the verdict for one document.
type Result struct {
	Source        string
	Kind          schema.DocumentKind
	SchemaVersion string
	Doc           any // *schema.ModuleMap, *schema.ProjectManifest or *schema.PluginBundle; nil when rejected
	Err           error
}

// OK reports whether the document was accepted.
func (r Result) OK() bool { return r.Err == nil }

// ErrorKind returns the failure category, or "" for accepted documents and
// failures that happened before the registry ran.
func (r Result) ErrorKind() schema.ErrorKind { return schema.KindOf(r.Err) }

// Validator loads documents through a Registry. It is safe for concurrent use.
type Validator struct {
	reg     *schema.Registry
	events  *telemetry.Emitter
	metrics *metrics.Collector
	log     zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithEvents records a telemetry event per validated document.
func WithEvents(e *telemetry.Emitter) Option {
	return func(v *Validator) { v.events = e }
}

// WithMetrics counts validations by kind and outcome.
func WithMetrics(m *metrics.Collector) Option {
	return func(v *Validator) { v.metrics = m }
}

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Validator) { v.log = l }
}

// New returns a Validator backed by reg.
func New(reg *schema.Registry, opts ...Option) *Validator {
	v := &Validator{reg: reg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Registry returns the registry documents are loaded through.
func (v *Validator) Registry() *schema.Registry { return v.reg }

// File validates the document at path, choosing the text format from the
// extension and falling back to content sniffing. Path Stdin reads stdin.
func (v *Validator) File(path string, kind schema.DocumentKind) Result {
	if path == Stdin {
		return v.Reader(path, os.Stdin, kind)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return v.finish(Result{Source: path, Kind: kind, Err: fmt.Errorf("read %s: %w", path, err)})
	}
	f, ok := docfmt.FromPath(path)
	if !ok {
		f = docfmt.Detect(raw)
	}
	return v.Bytes(path, kind, raw, f)
}

// Reader validates a document read from r, sniffing its text format.
func (v *Validator) Reader(source string, r io.Reader, kind schema.DocumentKind) Result {
	raw, err := io.ReadAll(r)
	if err != nil {
		return v.finish(Result{Source: source, Kind: kind, Err: fmt.Errorf("read %s: %w", source, err)})
	}
	return v.Bytes(source, kind, raw, docfmt.Detect(raw))
}

// Bytes validates raw text in format f. An empty kind is detected from the
// document's top-level fields.
func (v *Validator) Bytes(source string, kind schema.DocumentKind, raw []byte, f docfmt.Format) Result {
	res := Result{Source: source, Kind: kind}

	text, err := docfmt.ToJSON(raw, f)
	if err != nil {
		if res.Kind == "" {
			res.Kind = schema.KindModuleMap
		}
		res.Err = &schema.ParseError{Doc: res.Kind, Err: err}
		return v.finish(res)
	}
	if res.Kind == "" {
		res.Kind = DetectKind(text)
	}

	doc, err := v.reg.LoadKind(res.Kind, string(text))
	if err != nil {
		res.Err = err
		return v.finish(res)
	}
	res.Doc = doc
	res.SchemaVersion = VersionOf(doc)
	return v.finish(res)
}

func (v *Validator) finish(res Result) Result {
	errKind := string(res.ErrorKind())
	if res.Err != nil {
		v.log.Debug().Str("source", res.Source).Str("kind", string(res.Kind)).Str("error_kind", errKind).Err(res.Err).Msg("document rejected")
	} else {
		v.log.Debug().Str("source", res.Source).Str("kind", string(res.Kind)).Str("schema_version", res.SchemaVersion).Msg("document accepted")
	}
	outcome := errKind
	if res.Err != nil && outcome == "" {
		outcome = outcomeIOError
	}
	v.metrics.RecordValidation(string(res.Kind), outcome)
	if err := v.events.Emit(telemetry.LoadEvent(res.Source, res.Kind, res.SchemaVersion, res.Err)); err != nil {
		v.log.Warn().Err(err).Msg("telemetry write failed")
	}
	return res
}

// DetectKind guesses the kind of a JSON document from its top-level keys:
// a project next to a version is a manifest, modules or a project alone is
// a module map, and agents, rules or skills make a plugin bundle. Anything
// else is treated as a module map so the registry reports what is missing.
func DetectKind(raw []byte) schema.DocumentKind {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return schema.KindModuleMap
	}
	has := func(k string) bool {
		_, ok := top[k]
		return ok
	}
	switch {
	case has("project") && has("version"):
		return schema.KindManifest
	case has("modules"), has("project"):
		return schema.KindModuleMap
	case has("agents"), has("rules"), has("skills"):
		return schema.KindPlugin
	}
	return schema.KindModuleMap
}

// VersionOf returns the schema version a loaded document was admitted with.
func VersionOf(doc any) string {
	switch d := doc.(type) {
	case *schema.ModuleMap:
		return d.SchemaVersion
	case *schema.ProjectManifest:
		return d.SchemaVersion()
	case *schema.PluginBundle:
		return d.SchemaVersion
	}
	return ""
}
