package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// Registry loads documents and admits only those whose schema version is
// compatible with the version it was built for. A Registry holds no
// mutable state and may be shared between goroutines.
type Registry struct {
	version Version
}

// NewRegistry returns a registry for SchemaVersion.
func NewRegistry() *Registry {
	return &Registry{version: MustParseVersion(SchemaVersion)}
}

// Version returns the schema version the registry supports.
func (r *Registry) Version() Version { return r.version }

// Load parses raw as a module map and checks its schema_version.
//
// The stages run in order and stop at the first failure: structural
// parsing (*ParseError), version extraction (*MalformedVersionError) and
// the compatibility check (*IncompatibleVersionError).
func (r *Registry) Load(raw string) (*ModuleMap, error) {
	return load(r, KindModuleMap, raw, func(m *ModuleMap) string { return m.SchemaVersion })
}

// LoadManifest parses raw as a project manifest. The version checked is the
// embedded project.schema_version, not the manifest's own version field.
func (r *Registry) LoadManifest(raw string) (*ProjectManifest, error) {
	return load(r, KindManifest, raw, func(m *ProjectManifest) string { return m.Project.SchemaVersion })
}

// LoadPlugin parses raw as a plugin bundle and checks its schema_version.
func (r *Registry) LoadPlugin(raw string) (*PluginBundle, error) {
	return load(r, KindPlugin, raw, func(b *PluginBundle) string { return b.SchemaVersion })
}

// LoadKind loads raw as the given kind and returns the typed document as any.
func (r *Registry) LoadKind(kind DocumentKind, raw string) (any, error) {
	switch kind {
	case KindModuleMap:
		return asAny(r.Load(raw))
	case KindManifest:
		return asAny(r.LoadManifest(raw))
	case KindPlugin:
		return asAny(r.LoadPlugin(raw))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentKind, kind)
	}
}

// asAny keeps a failed load from surfacing as a non-nil interface holding a nil pointer.
func asAny[T any](doc *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func load[T any](r *Registry, kind DocumentKind, raw string, versionOf func(*T) string) (*T, error) {
	doc, err := decode[T](kind, raw)
	if err != nil {
		return nil, err
	}
	found := versionOf(doc)
	v, err := ParseVersion(found)
	if err != nil {
		return nil, err
	}
	if !Compatible(v, r.version) {
		return nil, &IncompatibleVersionError{Found: found, RequiredMajor: r.version.Major}
	}
	return doc, nil
}

// decode validates raw against the kind's JSON Schema before decoding it,
// so missing required fields and unknown enum values are reported with the
// path of the offending field.
func decode[T any](kind DocumentKind, raw string) (*T, error) {
	inst, err := jsv.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Doc: kind, Err: err}
	}
	if err := compiledSchemas()[kind].Validate(inst); err != nil {
		return nil, &ParseError{Doc: kind, Err: err}
	}
	doc := new(T)
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, &ParseError{Doc: kind, Err: err}
	}
	fillDefaults(doc)
	return doc, nil
}
