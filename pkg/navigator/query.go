package navigator

// Item is a resolved view of one tree node. Items are values; changing one
// does not affect the artifact.
type Item struct {
	ID         uint32     `json:"id"`
	Title      string     `json:"title"`
	Path       string     `json:"path"`
	Reference  string     `json:"reference,omitempty"`
	Kind       Kind       `json:"kind"`
	Language   string     `json:"language"`
	Platforms  []Platform `json:"platforms,omitempty"`
	ParentID   uint32     `json:"parent_id"`
	HasParent  bool       `json:"has_parent"`
	ChildCount int        `json:"child_count"`
}

// IsRoot reports whether the item is a language root.
func (it Item) IsRoot() bool {
	return !it.HasParent
}

// Languages returns the language names in artifact order (sorted by name).
func (a *Artifact) Languages() []string {
	out := make([]string, len(a.languages))
	for i, l := range a.languages {
		out[i] = a.strings[l.Name]
	}
	return out
}

// Root returns the root item of a language tree.
func (a *Artifact) Root(language string) (Item, error) {
	li, ok := a.langIndex[language]
	if !ok {
		return Item{}, languageNotFound(language)
	}
	return a.resolve(a.languages[li].First), nil
}

// Item returns the item with the given ID.
func (a *Artifact) Item(id uint32) (Item, bool) {
	if int(id) >= len(a.items) {
		return Item{}, false
	}
	return a.resolve(id), true
}

// Children returns the ordered children of id. Leaves and unknown IDs give nil.
func (a *Artifact) Children(id uint32) []Item {
	if int(id) >= len(a.items) {
		return nil
	}
	rec := a.items[id]
	if rec.ChildCount == 0 {
		return nil
	}
	out := make([]Item, 0, rec.ChildCount)
	for _, c := range a.children[rec.ChildOffset : rec.ChildOffset+rec.ChildCount] {
		out = append(out, a.resolve(c))
	}
	return out
}

// Parent returns the parent of id. Roots have none.
func (a *Artifact) Parent(id uint32) (Item, bool) {
	if int(id) >= len(a.items) || a.items[id].Parent == noParent {
		return Item{}, false
	}
	return a.resolve(a.items[id].Parent), true
}

// Lookup finds the item at path in a language tree. "/" is the root.
func (a *Artifact) Lookup(language, path string) (Item, bool) {
	li, ok := a.langIndex[language]
	if !ok {
		return Item{}, false
	}
	if path != "/" {
		path = normalizePath(path)
	}
	id, ok := a.pathIndex[li][path]
	if !ok {
		return Item{}, false
	}
	return a.resolve(id), true
}

// Variant returns the item for the same topic in another language view.
// Roots map to roots.
func (a *Artifact) Variant(id uint32, language string) (Item, bool) {
	if int(id) >= len(a.items) {
		return Item{}, false
	}
	li, ok := a.langIndex[language]
	if !ok {
		return Item{}, false
	}
	rec := a.items[id]
	if rec.Kind == KindRoot {
		return a.resolve(a.languages[li].First), true
	}
	other, ok := a.refIndex[li][rec.Reference]
	if !ok {
		return Item{}, false
	}
	return a.resolve(other), true
}

// Walk visits the subtree at id in pre-order, passing each item and its
// depth relative to id. Returning false from fn stops the walk.
func (a *Artifact) Walk(id uint32, fn func(it Item, depth int) bool) {
	a.walk(id, func(cur uint32, depth int) bool {
		return fn(a.resolve(cur), depth)
	})
}

type frame struct {
	id    uint32
	depth int
}

func (a *Artifact) walk(id uint32, fn func(id uint32, depth int) bool) {
	if int(id) >= len(a.items) {
		return
	}
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.id, f.depth) {
			return
		}
		rec := a.items[f.id]
		kids := a.children[rec.ChildOffset : rec.ChildOffset+rec.ChildCount]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: f.depth + 1})
		}
	}
}

func (a *Artifact) resolve(id uint32) Item {
	rec := a.items[id]
	it := Item{
		ID:         id,
		Title:      a.strings[rec.Title],
		Path:       a.strings[rec.Path],
		Reference:  a.strings[rec.Reference],
		Kind:       rec.Kind,
		Language:   a.strings[a.languages[rec.Language].Name],
		Platforms:  a.platformsOf(rec),
		ChildCount: int(rec.ChildCount),
	}
	if rec.Parent != noParent {
		it.ParentID = rec.Parent
		it.HasParent = true
	}
	return it
}
