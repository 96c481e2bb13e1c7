package navigator

import (
	"fmt"
	"strings"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Kind is the topic kind tag stored on every item.
// Declaration order is the kind-rank used to break ties between siblings
// with equal titles, so new kinds must be appended before KindUnknown only
// together with a format version bump.
type Kind uint8

const (
	// KindRoot marks the synthesized per-language root. Upstream records may not use it.
	KindRoot Kind = iota
	KindModule
	KindType
	KindMember
	KindArticle
	KindTutorial
	KindCollection
	KindSampleCode
	KindUnknown

	kindCount
)

var kindNames = [...]string{
	KindRoot:       "root",
	KindModule:     "module",
	KindType:       "type",
	KindMember:     "member",
	KindArticle:    "article",
	KindTutorial:   "tutorial",
	KindCollection: "collection",
	KindSampleCode: "sampleCode",
	KindUnknown:    "unknown",
}

// String returns the stable lower-camel name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Rank is the sibling tie-break rank; lower sorts first.
func (k Kind) Rank() int {
	return int(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

// ParseKind maps a kind name to its Kind. Matching is case-insensitive.
// An empty name parses as KindUnknown.
func ParseKind(name string) (Kind, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return KindUnknown, nil
	}
	for k, s := range kindNames {
		if strings.EqualFold(s, n) {
			return Kind(k), nil
		}
	}
	return KindUnknown, naverrors.Newf(naverrors.ErrCodeInvalidKind, "unknown topic kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
