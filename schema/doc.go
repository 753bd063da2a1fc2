// Package schema defines the versioned document model modmap reads and
// writes: module maps describing a codebase, project manifests wrapping a
// module map with generated plugin resources, and plugin bundles of agents,
// rules and skills.
//
// Documents are loaded through a Registry, which decodes the JSON text,
// reads the document's schema_version and refuses documents whose major
// version differs from SchemaVersion:
//
//	reg := schema.NewRegistry()
//	m, err := reg.Load(raw)
//	switch schema.KindOf(err) {
//	case schema.KindIncompatibleVersion:
//		// regenerate the document with a current generator
//	}
//
// The package performs no I/O and never logs.
package schema
