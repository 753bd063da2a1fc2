package schema

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the version of the document model this build reads and writes.
const SchemaVersion = "1.0.0"

// Version is a parsed MAJOR.MINOR.PATCH schema version.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseVersion parses raw as exactly three dot-separated non-negative
// integers. A "v" prefix, missing components, leading zeros and pre-release
// or build suffixes are all rejected with a *MalformedVersionError.
func ParseVersion(raw string) (Version, error) {
	sv, err := semver.StrictNewVersion(raw)
	if err != nil {
		return Version{}, &MalformedVersionError{Raw: raw, Err: err}
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, &MalformedVersionError{Raw: raw, Err: fmt.Errorf("pre-release and build suffixes are not allowed")}
	}
	return Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch()}, nil
}

// MustParseVersion is like ParseVersion but panics on error. Use only for constants.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compatible reports whether a document at version doc can be read by a
// build that supports version supported. Only the major components are
// compared; minor and patch differences are always accepted.
func Compatible(doc, supported Version) bool {
	return doc.Major == supported.Major
}
