package navigator

// StringPool interns strings into dense indices in first-seen order.
// Not safe for concurrent use; the builder owns it until the artifact is frozen.
type StringPool struct {
	index   map[string]uint32
	entries []string
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{index: make(map[string]uint32)}
}

// Intern returns the index of s, appending it if not yet present.
func (p *StringPool) Intern(s string) uint32 {
	if i, ok := p.index[s]; ok {
		return i
	}
	i := uint32(len(p.entries))
	p.entries = append(p.entries, s)
	p.index[s] = i
	return i
}

// Lookup returns the string at index i.
func (p *StringPool) Lookup(i uint32) (string, bool) {
	if int(i) >= len(p.entries) {
		return "", false
	}
	return p.entries[i], true
}

// Len returns the number of distinct strings.
func (p *StringPool) Len() int {
	return len(p.entries)
}

// Entries returns the pool contents in index order. The slice is shared.
func (p *StringPool) Entries() []string {
	return p.entries
}

// platformRecord is the pooled form of a Platform: its name lives in the
// string pool.
type platformRecord struct {
	Name  uint32
	Major uint16
	Minor uint16
	Patch uint16
	Beta  bool
}

// PlatformPool interns platform tuples. Names go into the shared string pool.
type PlatformPool struct {
	strings *StringPool
	index   map[platformRecord]uint32
	entries []platformRecord
}

// NewPlatformPool returns an empty pool sharing strings.
func NewPlatformPool(strings *StringPool) *PlatformPool {
	return &PlatformPool{
		strings: strings,
		index:   make(map[platformRecord]uint32),
	}
}

// Intern returns the index of p, appending it if not yet present.
func (pp *PlatformPool) Intern(p Platform) uint32 {
	rec := platformRecord{
		Name:  pp.strings.Intern(p.Name),
		Major: p.Introduced.Major,
		Minor: p.Introduced.Minor,
		Patch: p.Introduced.Patch,
		Beta:  p.Beta,
	}
	if i, ok := pp.index[rec]; ok {
		return i
	}
	i := uint32(len(pp.entries))
	pp.entries = append(pp.entries, rec)
	pp.index[rec] = i
	return i
}

// Lookup resolves index i back into a Platform.
func (pp *PlatformPool) Lookup(i uint32) (Platform, bool) {
	if int(i) >= len(pp.entries) {
		return Platform{}, false
	}
	return resolvePlatform(pp.entries[i], pp.strings.entries), true
}

// Len returns the number of distinct platform tuples.
func (pp *PlatformPool) Len() int {
	return len(pp.entries)
}

func resolvePlatform(rec platformRecord, strs []string) Platform {
	return Platform{
		Name:       strs[rec.Name],
		Introduced: Version{Major: rec.Major, Minor: rec.Minor, Patch: rec.Patch},
		Beta:       rec.Beta,
	}
}
