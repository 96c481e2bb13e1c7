package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Aman-CERP/navindex/pkg/navigator"
)

type browserKeys struct {
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Language key.Binding
	Top      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultBrowserKeys() browserKeys {
	return browserKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Expand:   key.NewBinding(key.WithKeys("right", "l", "enter"), key.WithHelp("→/l", "expand")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Language: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "language")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.Collapse, k.Language, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k browserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Top}, {k.Expand, k.Collapse}, {k.Language, k.Help, k.Quit}}
}

type row struct {
	item  navigator.Item
	depth int
}

// Browser is a bubbletea model that browses one language tree of an
// artifact at a time. Switching language keeps the selected topic when it
// has a variant in the target language.
type Browser struct {
	artifact  *navigator.Artifact
	languages []string
	langIdx   int
	expanded  map[uint32]bool
	rows      []row
	cursor    int
	offset    int
	width     int
	height    int
	keys      browserKeys
	help      help.Model
	styles    Styles
	status    string
}

// NewBrowser opens the browser on language, or on the first language when
// language is empty.
func NewBrowser(a *navigator.Artifact, language string, styles Styles) (*Browser, error) {
	langs := a.Languages()
	if len(langs) == 0 {
		return nil, navigator.ErrLanguageNotFound
	}
	idx := 0
	if language != "" {
		idx = -1
		for i, l := range langs {
			if l == language {
				idx = i
			}
		}
		if idx < 0 {
			_, err := a.Root(language)
			return nil, err
		}
	}

	b := &Browser{
		artifact:  a,
		languages: langs,
		langIdx:   idx,
		expanded:  make(map[uint32]bool),
		keys:      defaultBrowserKeys(),
		help:      help.New(),
		styles:    styles,
		width:     80,
		height:    24,
	}
	root, _ := a.Root(b.Language())
	b.expanded[root.ID] = true
	b.refresh()
	return b, nil
}

// Language returns the language currently shown.
func (b *Browser) Language() string {
	return b.languages[b.langIdx]
}

// Selected returns the item under the cursor.
func (b *Browser) Selected() navigator.Item {
	return b.rows[b.cursor].item
}

// refresh rebuilds the visible rows from the expansion state.
func (b *Browser) refresh() {
	root, _ := b.artifact.Root(b.Language())
	b.rows = b.rows[:0]
	var visit func(it navigator.Item, depth int)
	visit = func(it navigator.Item, depth int) {
		b.rows = append(b.rows, row{item: it, depth: depth})
		if !b.expanded[it.ID] {
			return
		}
		for _, c := range b.artifact.Children(it.ID) {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
	if b.cursor >= len(b.rows) {
		b.cursor = len(b.rows) - 1
	}
}

func (b *Browser) selectID(id uint32) {
	for i, r := range b.rows {
		if r.item.ID == id {
			b.cursor = i
			return
		}
	}
}

func (b *Browser) expand() {
	it := b.Selected()
	if it.ChildCount == 0 {
		return
	}
	if b.expanded[it.ID] {
		// Already open: step into the first child.
		b.cursor++
		return
	}
	b.expanded[it.ID] = true
	b.refresh()
}

func (b *Browser) collapse() {
	it := b.Selected()
	if b.expanded[it.ID] && !it.IsRoot() {
		delete(b.expanded, it.ID)
		b.refresh()
		return
	}
	if parent, ok := b.artifact.Parent(it.ID); ok {
		b.selectID(parent.ID)
	}
}

// switchLanguage moves to the next language and reselects the same topic.
func (b *Browser) switchLanguage() {
	if len(b.languages) < 2 {
		b.status = "only one language"
		return
	}
	current := b.Selected()
	b.langIdx = (b.langIdx + 1) % len(b.languages)
	lang := b.Language()

	target, ok := b.artifact.Variant(current.ID, lang)
	if !ok {
		target, _ = b.artifact.Root(lang)
		if !current.IsRoot() {
			b.status = fmt.Sprintf("%q has no %s variant", current.Title, lang)
		}
	} else {
		b.status = ""
	}
	for p, ok := b.artifact.Parent(target.ID); ok; p, ok = b.artifact.Parent(p.ID) {
		b.expanded[p.ID] = true
	}
	root, _ := b.artifact.Root(lang)
	b.expanded[root.ID] = true
	b.cursor = 0
	b.refresh()
	b.selectID(target.ID)
}

func (b *Browser) listHeight() int {
	h := b.height - 4
	if h < 3 {
		h = 3
	}
	return h
}

func (b *Browser) clampOffset() {
	h := b.listHeight()
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+h {
		b.offset = b.cursor - h + 1
	}
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Up):
			if b.cursor > 0 {
				b.cursor--
			}
		case key.Matches(msg, b.keys.Down):
			if b.cursor < len(b.rows)-1 {
				b.cursor++
			}
		case key.Matches(msg, b.keys.Top):
			b.cursor = 0
		case key.Matches(msg, b.keys.Expand):
			b.expand()
		case key.Matches(msg, b.keys.Collapse):
			b.collapse()
		case key.Matches(msg, b.keys.Language):
			b.switchLanguage()
		case key.Matches(msg, b.keys.Help):
			b.help.ShowAll = !b.help.ShowAll
		}
	}
	b.clampOffset()
	return b, nil
}

// View implements tea.Model.
func (b *Browser) View() string {
	var sb strings.Builder
	sb.WriteString(b.styles.Header.Render(b.artifact.BundleIdentifier()))
	sb.WriteString(b.styles.Dim.Render("  •  "))
	sb.WriteString(b.styles.Active.Render(b.Language()))
	sb.WriteByte('\n')

	end := min(b.offset+b.listHeight(), len(b.rows))
	for i := b.offset; i < end; i++ {
		r := b.rows[i]
		var marker string
		switch {
		case r.item.ChildCount == 0:
			marker = "· "
		case b.expanded[r.item.ID]:
			marker = "▾ "
		default:
			marker = "▸ "
		}
		line := strings.Repeat("  ", r.depth) + marker + r.item.Title
		if i == b.cursor {
			line = b.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString(" ")
		sb.WriteString(b.styles.Kind.Render("[" + r.item.Kind.String() + "]"))
		sb.WriteByte('\n')
	}

	sel := b.Selected()
	footer := b.styles.Label.Render(sel.Path)
	if b.status != "" {
		footer += b.styles.Warning.Render("  " + b.status)
	}
	sb.WriteString(footer)
	sb.WriteByte('\n')
	sb.WriteString(b.help.View(b.keys))
	return sb.String()
}

// BrowseConfig configures RunBrowser.
type BrowseConfig struct {
	Language string
	Input    io.Reader
	Output   io.Writer
	NoColor  bool
}

// RunBrowser runs the browser until the user quits or ctx is cancelled.
func RunBrowser(ctx context.Context, a *navigator.Artifact, cfg BrowseConfig) error {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	b, err := NewBrowser(a, cfg.Language, StylesFor(out, cfg.NoColor))
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out), tea.WithAltScreen()}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	_, err = tea.NewProgram(b, opts...).Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
