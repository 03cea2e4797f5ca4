package apps

import (
	"fmt"
	"strings"
	"time"

	"macsim/events"
	"macsim/model"
	"macsim/registry"
)

var helpLines = []string{
	"Available commands:",
	"  ls        List directory contents",
	"  cd [dir]  Change directory",
	"  pwd       Print working directory",
	"  mkdir [name] Create directory",
	"  touch [name] Create file",
	"  rm [name]    Remove item",
	"  cat [file]   Read file",
	"  open [app]   Open application",
	"  code [file]  Open VS Code",
	"  neofetch  Show system info",
	"  clear     Clear screen",
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithClock replaces time.Now for the login banner and uptime.
func WithClock(now func() time.Time) TerminalOption {
	return func(t *Terminal) { t.now = now }
}

// WithResolution reports the screen size shown by neofetch.
func WithResolution(fn func() (int, int)) TerminalOption {
	return func(t *Terminal) { t.resolution = fn }
}

// Terminal is a small zsh look-alike working on the virtual file system.
// open and code commands are sent as OpenAppRequest signals.
type Terminal struct {
	fs         FileSystem
	signals    *events.Emitter[events.OpenAppRequest]
	cwd        string
	lines      []string
	history    []string
	recall     int
	started    time.Time
	now        func() time.Time
	resolution func() (int, int)
}

func NewTerminal(fs FileSystem, signals *events.Emitter[events.OpenAppRequest], opts ...TerminalOption) *Terminal {
	t := &Terminal{
		fs:         fs,
		signals:    signals,
		cwd:        model.RootID,
		now:        time.Now,
		resolution: func() (int, int) { return 1280, 800 },
	}
	for _, opt := range opts {
		opt(t)
	}
	t.started = t.now()
	t.lines = []string{"Last login: " + t.started.Format("1/2/2006, 3:04:05 PM") + " on ttys000"}
	return t
}

// Cwd is the id of the working directory.
func (t *Terminal) Cwd() string { return t.cwd }

// Prompt renders "guest@macbook /Macintosh HD %".
func (t *Terminal) Prompt() string {
	return "guest@macbook " + pathString(t.fs, t.cwd) + " %"
}

// Lines is the scrollback.
func (t *Terminal) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Submit runs one input line and appends the prompt and output to the
// scrollback. "clear" wipes the scrollback instead.
func (t *Terminal) Submit(input string) {
	if strings.TrimSpace(input) != "" {
		t.history = append(t.history, input)
	}
	t.recall = len(t.history)

	prompt := t.Prompt() + " " + input
	out, cleared := t.execute(input)
	if cleared {
		t.lines = nil
		return
	}
	t.lines = append(t.lines, prompt)
	t.lines = append(t.lines, out...)
}

// Run executes input and returns only its output.
func (t *Terminal) Run(input string) []string {
	out, _ := t.execute(input)
	return out
}

// PrevCommand steps back through submitted commands.
func (t *Terminal) PrevCommand() string {
	if len(t.history) == 0 {
		return ""
	}
	if t.recall > 0 {
		t.recall--
	}
	return t.history[t.recall]
}

// NextCommand steps forward; past the newest command it yields "".
func (t *Terminal) NextCommand() string {
	if t.recall < len(t.history) {
		t.recall++
	}
	if t.recall >= len(t.history) {
		return ""
	}
	return t.history[t.recall]
}

func (t *Terminal) execute(input string) ([]string, bool) {
	args := strings.Fields(input)
	if len(args) == 0 {
		return nil, false
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	command := strings.ToLower(args[0])

	switch command {
	case "help":
		return append([]string(nil), helpLines...), false
	case "clear":
		return nil, true
	case "echo":
		return []string{strings.Join(args[1:], " ")}, false
	case "pwd":
		return []string{pathString(t.fs, t.cwd)}, false
	case "ls":
		return t.ls(), false
	case "cd":
		return t.cd(arg(1)), false
	case "mkdir":
		if arg(1) == "" {
			return []string{"usage: mkdir [directory_name]"}, false
		}
		t.fs.CreateItem(arg(1), model.KindFolder, t.cwd, "")
		return nil, false
	case "touch":
		if arg(1) == "" {
			return []string{"usage: touch [file_name]"}, false
		}
		t.fs.CreateItem(arg(1), model.KindFile, t.cwd, "")
		return nil, false
	case "rm":
		name := arg(1)
		if name == "" {
			return []string{"usage: rm [name]"}, false
		}
		if n, ok := childNamed(t.fs, t.cwd, name, ""); ok {
			t.fs.DeleteItem(n.ID)
			return nil, false
		}
		return []string{fmt.Sprintf("rm: %s: No such file or directory", name)}, false
	case "cat":
		name := arg(1)
		if name == "" {
			return []string{"usage: cat [file]"}, false
		}
		if n, ok := childNamed(t.fs, t.cwd, name, model.KindFile); ok {
			if n.Content == "" {
				return nil, false
			}
			return strings.Split(n.Content, "\n"), false
		}
		return []string{fmt.Sprintf("cat: %s: No such file or directory", name)}, false
	case "open":
		name := strings.ToLower(arg(1))
		if name == "" {
			return []string{"usage: open [application]"}, false
		}
		if id, ok := registry.ParseOpenTarget(name); ok {
			t.emit(events.OpenAppRequest{AppID: id})
			return []string{fmt.Sprintf("Opening %s...", name)}, false
		}
		return []string{"Application not found: " + name}, false
	case "code":
		name := arg(1)
		if name == "" || name == "." {
			t.emit(events.OpenAppRequest{AppID: model.AppVSCode})
			return nil, false
		}
		if n, ok := childNamed(t.fs, t.cwd, name, model.KindFile); ok {
			t.emit(events.OpenAppRequest{AppID: model.AppVSCode, FileID: n.ID})
			return []string{fmt.Sprintf("Opening %s in VS Code...", name)}, false
		}
		return []string{"File not found: " + name}, false
	case "neofetch":
		return t.neofetch(), false
	default:
		return []string{"zsh: command not found: " + command}, false
	}
}

func (t *Terminal) ls() []string {
	children := t.fs.GetChildren(t.cwd)
	if len(children) == 0 {
		return nil
	}
	names := make([]string, len(children))
	width := 0
	for i, c := range children {
		names[i] = c.Name
		if c.IsFolder() {
			names[i] += "/"
		}
		width = max(width, len([]rune(names[i])))
	}
	const columns = 3
	var out []string
	for i := 0; i < len(names); i += columns {
		row := names[i:min(i+columns, len(names))]
		var sb strings.Builder
		for j, name := range row {
			sb.WriteString(name)
			if j < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", width-len([]rune(name))+2))
			}
		}
		out = append(out, sb.String())
	}
	return out
}

func (t *Terminal) cd(target string) []string {
	switch target {
	case "", "/":
		t.cwd = model.RootID
		return nil
	case "..":
		if n, ok := t.fs.GetItem(t.cwd); ok && !n.IsRoot() {
			t.cwd = n.ParentID
		}
		return nil
	}
	if n, ok := childNamed(t.fs, t.cwd, target, model.KindFolder); ok {
		t.cwd = n.ID
		return nil
	}
	return []string{"cd: no such file or directory: " + target}
}

func (t *Terminal) neofetch() []string {
	w, h := t.resolution()
	uptime := t.now().Sub(t.started).Minutes()
	return []string{
		"guest@macbook-pro",
		"-----------------",
		"OS:         macOS Sequoia Web",
		"Host:       Browser Environment",
		fmt.Sprintf("Uptime:     %.0f mins", uptime),
		"Shell:      zsh 5.9",
		fmt.Sprintf("Resolution: %dx%d", w, h),
		"DE:         Aqua (Simulated)",
		"Terminal:   WebTerm Pro",
	}
}

func (t *Terminal) emit(req events.OpenAppRequest) {
	if t.signals != nil {
		t.signals.Emit(req)
	}
}
