package navigator

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// TopicRecord is one documentable entity as produced by the upstream
// documentation context. The builder copies what it needs and never retains
// the record.
type TopicRecord struct {
	// Reference is the stable identifier shared by all language variants.
	Reference string `json:"reference" yaml:"reference"`
	// Language is the source language of the primary title and path.
	Language string `json:"language" yaml:"language"`
	Title    string `json:"title" yaml:"title"`
	Path     string `json:"path" yaml:"path"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	// Variants lists the same topic as presented in other languages.
	Variants  []Variant  `json:"variants,omitempty" yaml:"variants,omitempty"`
	Platforms []Platform `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	// CurationParent is an optional explicit parent reference.
	CurationParent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Variant is a per-language presentation of a topic.
// An empty Title or Path falls back to the record's primary value.
type Variant struct {
	Language string `json:"language" yaml:"language"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

// CurationEdges maps a parent reference to the references it curates.
type CurationEdges map[string][]string

// Platform is one availability entry.
type Platform struct {
	Name       string  `json:"name" yaml:"name"`
	Introduced Version `json:"introduced" yaml:"introduced"`
	Beta       bool    `json:"beta,omitempty" yaml:"beta,omitempty"`
}

// String renders the platform as "iOS 13.1" or "iOS 13.1 beta".
func (p Platform) String() string {
	s := p.Name + " " + p.Introduced.String()
	if p.Beta {
		s += " beta"
	}
	return s
}

func comparePlatforms(a, b Platform) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := a.Introduced.Compare(b.Introduced); c != 0 {
		return c
	}
	switch {
	case a.Beta == b.Beta:
		return 0
	case !a.Beta:
		return -1
	default:
		return 1
	}
}

// Version is a semantic version triple.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// ParseVersion parses "13", "13.1" or "13.1.2". Missing components are zero.
func ParseVersion(s string) (Version, error) {
	var v Version
	s = strings.TrimSpace(s)
	if s == "" {
		return v, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return v, naverrors.Newf(naverrors.ErrCodeInvalidInput, "invalid version %q", s)
	}
	fields := []*uint16{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return Version{}, naverrors.New(naverrors.ErrCodeInvalidInput, fmt.Sprintf("invalid version %q", s), err)
		}
		*fields[i] = uint16(n)
	}
	return v, nil
}

// String renders "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders versions component-wise.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, o.Patch)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
