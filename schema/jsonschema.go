package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaIDBase = "https://github.com/junyeong-ai/modmap/schema/"

// JSONSchema returns the indented JSON Schema (draft 2020-12) of a root
// document kind. Required properties are exactly the fields a document
// must carry; unknown properties are permitted.
func JSONSchema(kind DocumentKind) ([]byte, error) {
	s, err := reflectSchema(kind)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}

func reflectSchema(kind DocumentKind) (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}
	var s *jsonschema.Schema
	switch kind {
	case KindModuleMap:
		s = r.Reflect(&ModuleMap{})
	case KindManifest:
		s = r.Reflect(&ProjectManifest{})
	case KindPlugin:
		s = r.Reflect(&PluginBundle{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentKind, kind)
	}
	s.ID = jsonschema.ID(schemaIDBase + string(kind) + ".json")
	return s, nil
}

// compiledSchemas holds the validators the Registry checks documents
// against. The schemas are derived from this package's own types, so a
// failure here is a programming error.
var compiledSchemas = sync.OnceValue(func() map[DocumentKind]*jsv.Schema {
	c := jsv.NewCompiler()
	c.DefaultDraft(jsv.Draft2020)
	out := make(map[DocumentKind]*jsv.Schema, len(DocumentKinds()))
	for _, kind := range DocumentKinds() {
		raw, err := JSONSchema(kind)
		if err != nil {
			panic(fmt.Sprintf("schema: reflect %s: %v", kind, err))
		}
		doc, err := jsv.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			panic(fmt.Sprintf("schema: decode %s schema: %v", kind, err))
		}
		url := schemaIDBase + string(kind) + ".json"
		if err := c.AddResource(url, doc); err != nil {
			panic(fmt.Sprintf("schema: add %s schema: %v", kind, err))
		}
		sch, err := c.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("schema: compile %s schema: %v", kind, err))
		}
		out[kind] = sch
	}
	return out
})
