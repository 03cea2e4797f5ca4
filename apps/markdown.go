package apps

import (
	"math"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"macsim/model"
)

const (
	untitledMarkdown = "# Untitled\n\nStart typing..."
	autosaveDelay    = 500 * time.Millisecond
)

type EditorMode string

const (
	ModeEdit    EditorMode = "edit"
	ModePreview EditorMode = "preview"
)

type Theme string

const (
	ThemeGitHub    Theme = "github"
	ThemeNight     Theme = "night"
	ThemeNewsprint Theme = "newsprint"
)

// Stats are shown in the editor's status strip.
type Stats struct {
	Words    int
	Chars    int
	ReadTime int // minutes
}

// Heading is one outline entry.
type Heading struct {
	Level int
	Text  string
	Line  int
}

var headingRe = regexp.MustCompile(`^(#+)\s+(.*)`)

// MarkdownOption configures a MarkdownEditor.
type MarkdownOption func(*MarkdownEditor)

// WithAfterFunc replaces time.AfterFunc for the autosave timer. The returned
// function cancels the pending call.
func WithAfterFunc(after func(time.Duration, func()) func() bool) MarkdownOption {
	return func(m *MarkdownEditor) { m.after = after }
}

// MarkdownEditor is the Typora look-alike. Edits to a bound file are saved
// after a quiet period.
type MarkdownEditor struct {
	fs FileSystem

	mu      sync.Mutex
	fileID  string
	content string
	mode    EditorMode
	theme   Theme
	sidebar bool
	pending func() bool
	after   func(time.Duration, func()) func() bool
}

func NewMarkdownEditor(fs FileSystem, fileID string, opts ...MarkdownOption) *MarkdownEditor {
	m := &MarkdownEditor{
		fs:      fs,
		mode:    ModeEdit,
		theme:   ThemeGitHub,
		sidebar: true,
		after: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if fileID == "" {
		m.content = untitledMarkdown
		return m
	}
	if n, ok := fs.GetItem(fileID); ok {
		m.fileID = fileID
		m.content = n.Content
	}
	return m
}

func (m *MarkdownEditor) FileID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fileID
}

func (m *MarkdownEditor) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// Title is the bound file name, or "Untitled".
func (m *MarkdownEditor) Title() string {
	if n, ok := m.fs.GetItem(m.FileID()); ok {
		return n.Name
	}
	return "Untitled"
}

// SetContent replaces the buffer and, when a file is bound, schedules a save.
func (m *MarkdownEditor) SetContent(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	if m.pending != nil {
		m.pending()
		m.pending = nil
	}
	if m.fileID == "" {
		return
	}
	id := m.fileID
	m.pending = m.after(autosaveDelay, func() {
		m.mu.Lock()
		m.pending = nil
		m.mu.Unlock()
		m.fs.UpdateFileContent(id, content)
	})
}

// Insert puts text at rune offset pos, clamped to the buffer.
func (m *MarkdownEditor) Insert(pos int, text string) {
	runes := []rune(m.Content())
	pos = max(0, min(pos, len(runes)))
	m.SetContent(string(runes[:pos]) + text + string(runes[pos:]))
}

// Flush saves a pending edit immediately.
func (m *MarkdownEditor) Flush() {
	m.mu.Lock()
	if m.pending == nil || !m.pending() {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	id, content := m.fileID, m.content
	m.mu.Unlock()
	m.fs.UpdateFileContent(id, content)
}

// CreateFile binds an unbound editor to a new Untitled.md on the desktop.
func (m *MarkdownEditor) CreateFile() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fileID != "" {
		return m.fileID
	}
	m.fileID = m.fs.CreateItem("Untitled.md", model.KindFile, model.DesktopID, m.content)
	return m.fileID
}

// Export returns a download name and the buffer.
func (m *MarkdownEditor) Export() (string, string) {
	name := "untitled.md"
	if id := m.FileID(); id != "" {
		name = "document.md"
		if n, ok := m.fs.GetItem(id); ok && n.Name != "" {
			name = n.Name
		}
	}
	return name, m.Content()
}

func (m *MarkdownEditor) Stats() Stats {
	content := m.Content()
	return Stats{
		Words:    len(strings.Fields(content)),
		Chars:    utf8.RuneCountInString(content),
		ReadTime: int(math.Ceil(float64(len(strings.Split(content, " "))) / 200)),
	}
}

// Outline lists the markdown headings in document order.
func (m *MarkdownEditor) Outline() []Heading {
	var out []Heading
	for i, line := range strings.Split(m.Content(), "\n") {
		if match := headingRe.FindStringSubmatch(line); match != nil {
			out = append(out, Heading{Level: len(match[1]), Text: match[2], Line: i})
		}
	}
	return out
}

func (m *MarkdownEditor) Mode() EditorMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

func (m *MarkdownEditor) ToggleMode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeEdit {
		m.mode = ModePreview
	} else {
		m.mode = ModeEdit
	}
}

func (m *MarkdownEditor) Theme() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

func (m *MarkdownEditor) SetTheme(t Theme) {
	switch t {
	case ThemeGitHub, ThemeNight, ThemeNewsprint:
		m.mu.Lock()
		m.theme = t
		m.mu.Unlock()
	}
}

func (m *MarkdownEditor) SidebarOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sidebar
}

func (m *MarkdownEditor) ToggleSidebar() {
	m.mu.Lock()
	m.sidebar = !m.sidebar
	m.mu.Unlock()
}
