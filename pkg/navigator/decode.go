package navigator

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"lukechampine.com/blake3"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Decode parses and validates a serialized artifact. Magic and version are
// checked before anything else is read; any failure returns a nil artifact.
func Decode(data []byte) (*Artifact, error) {
	if len(data) < HeaderMagicSize || !bytes.Equal(data[:HeaderMagicSize], []byte(Magic)) {
		return nil, corruptf("not a navigator index: bad magic")
	}
	if len(data) < HeaderSize {
		return nil, corruptf("truncated header: %d bytes", len(data))
	}

	be := binary.BigEndian
	version := be.Uint16(data[HeaderVersionFirstByte:])
	if version < MinSupportedVersion || version > MaxSupportedVersion {
		supported := fmt.Sprintf("%d-%d", MinSupportedVersion, MaxSupportedVersion)
		return nil, naverrors.Newf(naverrors.ErrCodeUnsupportedVersion,
			"navigator index version %d is not supported (supported %s)", version, supported).
			WithDetail("file_version", fmt.Sprint(version)).
			WithDetail("supported", supported).
			WithSuggestion("Rebuild the index with this version of navindex")
	}

	if len(data) < HeaderSize+TrailerSize {
		return nil, corruptf("truncated artifact: %d bytes", len(data))
	}
	body, trailer := data[:len(data)-TrailerSize], data[len(data)-TrailerSize:]
	sum := blake3.Sum256(body)
	if subtle.ConstantTimeCompare(sum[:], trailer) != 1 {
		return nil, corruptf("checksum mismatch")
	}

	a, err := parseBody(body)
	if err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	a.buildIndexes()
	return a, nil
}

// cursor reads fixed-width big-endian fields and remembers the first
// out-of-bounds read.
type cursor struct {
	buf []byte
	off int
	err error
}

func (c *cursor) take(n int, what string) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || len(c.buf)-c.off < n {
		c.err = corruptf("truncated %s at offset %d", what, c.off)
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8(what string) uint8 {
	if b := c.take(1, what); b != nil {
		return b[0]
	}
	return 0
}

func (c *cursor) u16(what string) uint16 {
	if b := c.take(2, what); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (c *cursor) u32(what string) uint32 {
	if b := c.take(4, what); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (c *cursor) u64(what string) uint64 {
	if b := c.take(8, what); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

// fits reports whether count records of size bytes remain, so that
// allocations are bounded by the input length.
func (c *cursor) fits(count uint32, size int, what string) bool {
	if c.err != nil {
		return false
	}
	if uint64(count)*uint64(size) > uint64(len(c.buf)-c.off) {
		c.err = corruptf("%s count %d exceeds remaining %d bytes", what, count, len(c.buf)-c.off)
		return false
	}
	return true
}

func parseBody(body []byte) (*Artifact, error) {
	c := &cursor{buf: body}
	c.take(HeaderMagicSize, "magic")

	a := &Artifact{
		version: c.u16("version"),
		flags:   c.u16("flags"),
	}
	nLang := c.u32("language count")
	nStr := c.u32("string count")
	nPlat := c.u32("platform count")
	nItem := c.u32("item count")
	nChild := c.u32("child count")
	nAvail := c.u32("availability count")
	bundleLen := c.u32("bundle length")

	if a.flags&^knownFlags != 0 {
		return nil, corruptf("unknown header flags %#04x", a.flags)
	}

	a.bundle = string(c.take(int(bundleLen), "bundle identifier"))

	if c.fits(nStr, 4, "string") {
		a.strings = make([]string, nStr)
		for i := range a.strings {
			n := c.u32("string length")
			a.strings[i] = string(c.take(int(n), "string"))
		}
	}

	if c.fits(nPlat, platformRecordSize, "platform") {
		a.platforms = make([]platformRecord, nPlat)
		for i := range a.platforms {
			p := &a.platforms[i]
			p.Name = c.u32("platform name")
			p.Major = c.u16("platform major")
			p.Minor = c.u16("platform minor")
			p.Patch = c.u16("platform patch")
			p.Beta = c.u8("platform beta") != 0
			c.u8("platform pad")
		}
	}

	if c.fits(nLang, languageRecordSize, "language") {
		a.languages = make([]languageRecord, nLang)
		for i := range a.languages {
			l := &a.languages[i]
			l.Name = c.u32("language name")
			l.First = c.u32("language first item")
			l.Count = c.u32("language item count")
		}
	}

	if c.fits(nItem, itemRecordSize, "item") {
		a.items = make([]itemRecord, nItem)
		for i := range a.items {
			it := &a.items[i]
			it.Title = c.u32("item title")
			it.Path = c.u32("item path")
			it.Reference = c.u32("item reference")
			it.Kind = Kind(c.u8("item kind"))
			c.u8("item pad")
			it.Language = c.u16("item language")
			it.Availability = c.u64("item availability")
			it.Parent = c.u32("item parent")
			it.ChildOffset = c.u32("item child offset")
			it.ChildCount = c.u32("item child count")
		}
	}

	a.children = c.u32s(nChild, "child id")
	a.availability = c.u32s(nAvail, "availability entry")

	if c.err != nil {
		return nil, c.err
	}
	if c.off != len(body) {
		return nil, corruptf("%d trailing bytes before checksum", len(body)-c.off)
	}
	return a, nil
}

func (c *cursor) u32s(n uint32, what string) []uint32 {
	if !c.fits(n, 4, what) {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = c.u32(what)
	}
	return out
}

// validate checks every index and the tree shape so that query methods can
// index slices without bounds failures.
func (a *Artifact) validate() error {
	nStr := uint32(len(a.strings))
	nPlat := uint32(len(a.platforms))
	nItem := uint32(len(a.items))
	nChild := uint64(len(a.children))

	for i, p := range a.platforms {
		if p.Name >= nStr {
			return corruptf("platform %d name index %d out of range", i, p.Name)
		}
	}
	if a.MaskMode() && nPlat > 64 {
		return corruptf("mask mode with %d platforms", nPlat)
	}

	seen := make(map[string]struct{}, len(a.languages))
	var next uint32
	for li, l := range a.languages {
		if l.Name >= nStr {
			return corruptf("language %d name index %d out of range", li, l.Name)
		}
		name := a.strings[l.Name]
		if _, dup := seen[name]; dup {
			return corruptf("language %q listed twice", name)
		}
		seen[name] = struct{}{}
		if l.First != next || l.Count == 0 || uint64(l.First)+uint64(l.Count) > uint64(nItem) {
			return corruptf("language %q item range [%d,+%d) invalid", name, l.First, l.Count)
		}
		next += l.Count
	}
	if next != nItem {
		return corruptf("languages cover %d of %d items", next, nItem)
	}

	for li, l := range a.languages {
		paths := make(map[string]uint32, l.Count)
		refs := make(map[string]uint32, l.Count)
		for id := l.First; id < l.First+l.Count; id++ {
			if err := a.validateItem(id, uint16(li), id == l.First, nStr, nPlat, nChild); err != nil {
				return err
			}
			it := a.items[id]
			path, ref := a.strings[it.Path], a.strings[it.Reference]
			if other, dup := paths[path]; dup {
				return corruptf("items %d and %d share path %q", other, id, path)
			}
			paths[path] = id
			if id == l.First {
				continue
			}
			if other, dup := refs[ref]; dup {
				return corruptf("items %d and %d share reference %q", other, id, ref)
			}
			refs[ref] = id
		}
	}

	listed := make([]bool, nItem)
	for id, it := range a.items {
		for _, c := range a.children[it.ChildOffset : it.ChildOffset+it.ChildCount] {
			if c >= nItem {
				return corruptf("item %d child %d out of range", id, c)
			}
			if a.items[c].Parent != uint32(id) {
				return corruptf("item %d lists child %d whose parent is %d", id, c, a.items[c].Parent)
			}
			if listed[c] {
				return corruptf("item %d listed as a child twice", c)
			}
			listed[c] = true
		}
	}
	for _, l := range a.languages {
		for id := l.First + 1; id < l.First+l.Count; id++ {
			if !listed[id] {
				return corruptf("item %d is not listed by its parent", id)
			}
		}
	}
	return nil
}

func (a *Artifact) validateItem(id uint32, lang uint16, isRoot bool, nStr, nPlat uint32, nChild uint64) error {
	it := a.items[id]
	if it.Title >= nStr || it.Path >= nStr || it.Reference >= nStr {
		return corruptf("item %d string index out of range", id)
	}
	if !it.Kind.Valid() {
		return corruptf("item %d has unknown kind %d", id, it.Kind)
	}
	if it.Language != lang {
		return corruptf("item %d language %d outside its range", id, it.Language)
	}
	if isRoot {
		if it.Parent != noParent || it.Kind != KindRoot {
			return corruptf("item %d is the first of its language but not a root", id)
		}
	} else {
		if it.Parent == noParent || it.Kind == KindRoot {
			return corruptf("item %d is a root outside the first position", id)
		}
		// Pre-order puts parents first within the same language range.
		l := a.languages[lang]
		if it.Parent >= id || it.Parent < l.First {
			return corruptf("item %d parent %d violates pre-order", id, it.Parent)
		}
	}
	if uint64(it.ChildOffset)+uint64(it.ChildCount) > nChild {
		return corruptf("item %d child range out of bounds", id)
	}
	if a.MaskMode() {
		if nPlat < 64 && it.Availability>>nPlat != 0 {
			return corruptf("item %d availability references unknown platforms", id)
		}
		return nil
	}
	off, n := unpackList(it.Availability)
	if uint64(off)+uint64(n) > uint64(len(a.availability)) {
		return corruptf("item %d availability range out of bounds", id)
	}
	for _, p := range a.availability[off : off+n] {
		if p >= nPlat {
			return corruptf("item %d availability platform %d out of range", id, p)
		}
	}
	return nil
}
