package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors for document loading. Every error returned by the
// Registry matches exactly one of ErrParse, ErrMalformedVersion and
// ErrIncompatibleVersion under errors.Is.
var (
	// ErrParse indicates the text is not a well-formed document of the expected shape.
	ErrParse = errors.New("document parse failed")
	// ErrMalformedVersion indicates schema_version is not a MAJOR.MINOR.PATCH string.
	ErrMalformedVersion = errors.New("malformed schema version")
	// ErrIncompatibleVersion indicates the document's major version differs from the registry's.
	ErrIncompatibleVersion = errors.New("incompatible schema version")
	// ErrInvalidRange indicates an evidence range whose start line is after its end line.
	ErrInvalidRange = errors.New("evidence range start is after end")
	// ErrUnknownDocumentKind indicates a document kind name that is not recognized.
	ErrUnknownDocumentKind = errors.New("unknown document kind")
)

// ErrorKind classifies a load failure for programmatic handling.
type ErrorKind string

// Load failure kinds.
const (
	KindParse               ErrorKind = "parse"
	KindMalformedVersion    ErrorKind = "malformed_version"
	KindIncompatibleVersion ErrorKind = "incompatible_version"
)

// ParseError reports that raw text could not be decoded into a document.
type ParseError struct {
	Doc DocumentKind // document shape that was expected
	Err error        // underlying syntax, schema or decode error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Doc, e.Err)
}

// Unwrap exposes both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// MalformedVersionError reports a schema_version that is not MAJOR.MINOR.PATCH.
type MalformedVersionError struct {
	Raw string // the offending version text, verbatim
	Err error  // parser detail, may be nil
}

func (e *MalformedVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed schema version %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("malformed schema version %q", e.Raw)
}

// Unwrap returns ErrMalformedVersion.
func (e *MalformedVersionError) Unwrap() error { return ErrMalformedVersion }

// IncompatibleVersionError reports a document whose major version differs
// from the one the registry supports.
type IncompatibleVersionError struct {
	Found         string // the document's schema_version, verbatim
	RequiredMajor uint64 // the registry's major version
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("incompatible schema version: found %s, required major version %d", e.Found, e.RequiredMajor)
}

// Unwrap returns ErrIncompatibleVersion.
func (e *IncompatibleVersionError) Unwrap() error { return ErrIncompatibleVersion }

// KindOf returns the failure kind of a load error, or "" when err is nil or
// did not come from the Registry.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIncompatibleVersion):
		return KindIncompatibleVersion
	case errors.Is(err, ErrMalformedVersion):
		return KindMalformedVersion
	case errors.Is(err, ErrParse):
		return KindParse
	default:
		return ""
	}
}
