package schema

import (
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Version
	}{
		{"1.0.0", Version{1, 0, 0}},
		{"1.5.2", Version{1, 5, 2}},
		{"0.9.0", Version{0, 9, 0}},
		{"12.34.56", Version{12, 34, 56}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseVersion(tt.raw)
			if err != nil {
				t.Fatalf("ParseVersion(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if got.String() != tt.raw {
				t.Errorf("String() = %q, want %q", got.String(), tt.raw)
			}
		})
	}
}

func TestParseVersion_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "latest", "v1.0.0", "1.0", "1", "1.0.0.0", "1.x.0", "1.0.0-beta", "1.0.0+build.5", "-1.0.0"} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			t.Parallel()
			_, err := ParseVersion(raw)
			if err == nil {
				t.Fatalf("ParseVersion(%q) succeeded, want error", raw)
			}
			var mv *MalformedVersionError
			if !errors.As(err, &mv) {
				t.Fatalf("error %T is not *MalformedVersionError", err)
			}
			if mv.Raw != raw {
				t.Errorf("Raw = %q, want %q", mv.Raw, raw)
			}
			if !errors.Is(err, ErrMalformedVersion) {
				t.Error("error does not match ErrMalformedVersion")
			}
		})
	}
}

func TestMustParseVersion_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustParseVersion did not panic on malformed input")
		}
	}()
	MustParseVersion("one.two.three")
}

func TestCompatible(t *testing.T) {
	t.Parallel()

	supported := MustParseVersion("1.0.0")
	tests := []struct {
		doc  string
		want bool
	}{
		{"1.0.0", true},
		{"1.0.1", true},
		{"1.99.0", true},
		{"1.5.2", true},
		{"2.0.0", false},
		{"0.9.0", false},
		{"0.0.0", false},
	}
	for _, tt := range tests {
		if got := Compatible(MustParseVersion(tt.doc), supported); got != tt.want {
			t.Errorf("Compatible(%s, %s) = %v, want %v", tt.doc, supported, got, tt.want)
		}
	}
}

func TestCompatible_MajorEqualityProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		doc := drawVersion(rt, "doc")
		supported := drawVersion(rt, "supported")
		if got, want := Compatible(doc, supported), doc.Major == supported.Major; got != want {
			rt.Fatalf("Compatible(%s, %s) = %v, want %v", doc, supported, got, want)
		}
	})
}

func TestVersionString_RoundTripProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		v := drawVersion(rt, "v")
		got, err := ParseVersion(v.String())
		if err != nil {
			rt.Fatalf("ParseVersion(%q): %v", v.String(), err)
		}
		if got != v {
			rt.Fatalf("round trip %s gave %s", v, got)
		}
	})
}

func drawVersion(rt *rapid.T, label string) Version {
	return Version{
		Major: rapid.Uint64Range(0, 20).Draw(rt, label+".major"),
		Minor: rapid.Uint64Range(0, 1000).Draw(rt, label+".minor"),
		Patch: rapid.Uint64Range(0, 1000).Draw(rt, label+".patch"),
	}
}
