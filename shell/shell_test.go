package shell

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macsim/apps"
	"macsim/events"
	"macsim/model"
	"macsim/store"
	"macsim/vfs"
	"macsim/wm"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	shell *Shell
	fs    *vfs.Store
	wm    *wm.Manager
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	fs := vfs.New(vfs.WithClock(clock))
	n := 0
	m := wm.New(
		wm.WithRand(func() float64 { return 0 }),
		wm.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("win-%d", n)
		}),
	)
	opts = append([]Option{WithWindowManager(m), WithClock(clock), WithInitialState(model.StateDesktop)}, opts...)
	s := New(fs, opts...)
	t.Cleanup(s.Close)
	return fixture{shell: s, fs: fs, wm: m}
}

func TestStateMachine(t *testing.T) {
	f := newFixture(t, WithInitialState(model.StateBooting))
	s := f.shell

	assert.ErrorIs(t, s.Transition(Login), ErrInvalidTransition)
	require.NoError(t, s.Transition(BootComplete))
	assert.Equal(t, model.StateLogin, s.State())
	assert.ErrorIs(t, s.Transition(Sleep), ErrInvalidTransition)
	require.NoError(t, s.Transition(Login))
	assert.Equal(t, model.StateDesktop, s.State())

	s.OpenApp(model.AppFinder, "")
	require.NoError(t, s.Transition(Sleep))
	assert.Equal(t, model.StateLogin, s.State())
	assert.Len(t, f.wm.Windows(), 1, "sleep keeps windows")

	require.NoError(t, s.Transition(Login))
	require.NoError(t, s.Transition(LogOut))
	require.NoError(t, s.Transition(Restart))
	assert.Equal(t, model.StateBooting, s.State())
	assert.Empty(t, f.wm.Windows(), "restart closes every window")

	require.NoError(t, s.Transition(ShutDown))
	assert.Equal(t, model.StateBooting, s.State())
}

func TestOpenAppOnlyOnDesktop(t *testing.T) {
	f := newFixture(t, WithInitialState(model.StateLogin))
	assert.Empty(t, f.shell.OpenApp(model.AppFinder, ""))
	assert.Empty(t, f.wm.Windows())
}

func TestOpenAppClosesLaunchers(t *testing.T) {
	f := newFixture(t)
	s := f.shell
	s.ToggleOverlay(Launchpad)
	s.ToggleOverlay(Spotlight)
	s.ToggleOverlay(ControlCenter)
	s.SetQuery("calc")

	id := s.OpenApp(model.AppCalculator, "")
	require.NotEmpty(t, id)
	assert.False(t, s.OverlayOpen(Launchpad))
	assert.False(t, s.OverlayOpen(Spotlight))
	assert.True(t, s.OverlayOpen(ControlCenter))
	assert.Empty(t, s.Query())

	assert.Equal(t, id, s.OpenApp(model.AppCalculator, ""))
	assert.Empty(t, s.OpenApp("minesweeper", ""))
}

func TestSignalsOpenApps(t *testing.T) {
	f := newFixture(t)
	f.shell.Signals().Emit(events.OpenAppRequest{AppID: model.AppVSCode, FileID: "welcome_txt"})

	ws := f.wm.Windows()
	require.Len(t, ws, 1)
	assert.Equal(t, model.AppVSCode, ws[0].AppID)
	assert.Equal(t, "welcome_txt", ws[0].FileID)
	assert.Equal(t, "Welcome.txt - macOS Web", ws[0].Title)
}

func TestTerminalOpenGoesThroughShell(t *testing.T) {
	f := newFixture(t)
	id := f.shell.OpenApp(model.AppTerminal, "")
	term, ok := f.shell.App(id).(*apps.Terminal)
	require.True(t, ok)

	term.Submit("open calculator")
	assert.Len(t, f.wm.WindowsFor(model.AppCalculator), 1)
	assert.Equal(t, model.AppCalculator, f.wm.ActiveApp())
}

func TestOpenItemPolicy(t *testing.T) {
	f := newFixture(t)
	s := f.shell

	w, _ := f.wm.Get(s.OpenItem("portfolio_folder"))
	assert.Equal(t, model.AppFinder, w.AppID)
	finder := s.App(w.ID).(*apps.Finder)
	assert.Equal(t, "portfolio_folder", finder.Current())
	assert.Equal(t, "Portfolio", w.Title)

	w, _ = f.wm.Get(s.OpenItem("project_specs"))
	assert.Equal(t, model.AppTypora, w.AppID)
	assert.Equal(t, "Project_Specs.md", w.Title)
	_, ok := s.App(w.ID).(*apps.MarkdownEditor)
	assert.True(t, ok)

	w, _ = f.wm.Get(s.OpenItem("welcome_txt"))
	assert.Equal(t, model.AppVSCode, w.AppID)
	assert.Equal(t, "welcome_txt", w.FileID)

	assert.Empty(t, s.OpenItem("missing"))
}

func TestFinderOpensThroughShell(t *testing.T) {
	f := newFixture(t)
	id := f.shell.OpenApp(model.AppFinder, "")
	finder := f.shell.App(id).(*apps.Finder)

	finder.Open("welcome_txt")
	assert.Len(t, f.wm.WindowsFor(model.AppVSCode), 1)
}

func TestClosingWindowReleasesAdapter(t *testing.T) {
	f := newFixture(t)
	id := f.shell.OpenApp(model.AppGemini, "")
	chat, ok := f.shell.App(id).(*apps.ChatSession)
	require.True(t, ok)

	require.NoError(t, f.wm.CloseWindow(id))
	assert.Nil(t, f.shell.App(id))
	_, err := chat.Send(context.Background(), "hello")
	assert.Error(t, err, "closed sessions refuse new messages")
}

func TestIconDrag(t *testing.T) {
	f := newFixture(t)
	s := f.shell

	require.True(t, s.BeginIconDrag("welcome_txt", 30, 130))
	s.DragTo(50, 140)
	s.DragTo(70, 160)
	s.EndDrag()
	s.DragTo(500, 500)

	n, _ := f.fs.GetItem("welcome_txt")
	assert.Equal(t, &model.Position{X: 60, Y: 150}, n.Position)
	assert.Equal(t, "welcome_txt", s.SelectedIcon())

	assert.False(t, s.BeginIconDrag("missing", 0, 0))
}

func TestIconDragDefaultsPosition(t *testing.T) {
	f := newFixture(t)
	id, err := f.fs.CreateItem("loose", model.KindFile, model.DocumentsID, "")
	require.NoError(t, err)

	require.True(t, f.shell.BeginIconDrag(id, 25, 25))
	f.shell.DragTo(35, 45)
	n, _ := f.fs.GetItem(id)
	assert.Equal(t, &model.Position{X: 30, Y: 40}, n.Position)
}

func TestWindowDrag(t *testing.T) {
	f := newFixture(t)
	s := f.shell
	a := s.OpenApp(model.AppFinder, "")
	b := s.OpenApp(model.AppFinder, "")
	require.Equal(t, b, f.wm.Active())

	require.True(t, s.BeginWindowDrag(a, 110, 60))
	assert.Equal(t, a, f.wm.Active(), "pressing the title bar focuses")
	s.DragTo(210, 160)
	s.EndDrag()

	w, _ := f.wm.Get(a)
	assert.Equal(t, 200.0, w.X)
	assert.Equal(t, 150.0, w.Y)
}

func TestWindowDragMaximized(t *testing.T) {
	f := newFixture(t)
	s := f.shell
	a := s.OpenApp(model.AppFinder, "")
	s.OpenApp(model.AppTerminal, "")
	require.NoError(t, f.wm.MaximizeWindow(a))
	s.OpenApp(model.AppNotes, "")

	assert.False(t, s.BeginWindowDrag(a, 10, 40))
	assert.Equal(t, a, f.wm.Active())
	_, dragging := s.Dragging()
	assert.False(t, dragging)
}

func TestWindowResize(t *testing.T) {
	f := newFixture(t)
	s := f.shell
	id := s.OpenApp(model.AppFinder, "")

	require.True(t, s.BeginWindowResize(id, 900, 550))
	s.DragTo(950, 600)
	w, _ := f.wm.Get(id)
	assert.Equal(t, 850.0, w.Width)
	assert.Equal(t, 550.0, w.Height)

	s.DragTo(100, 100)
	w, _ = f.wm.Get(id)
	assert.Equal(t, float64(wm.MinWidth), w.Width)
	assert.Equal(t, float64(wm.MinHeight), w.Height)

	s.DragTo(150, 110)
	w, _ = f.wm.Get(id)
	assert.Equal(t, float64(wm.MinWidth), w.Width)
	assert.Equal(t, float64(wm.MinHeight), w.Height)

	// Back past the starting point the corner is under the pointer again.
	s.DragTo(1000, 700)
	w, _ = f.wm.Get(id)
	assert.Equal(t, 900.0, w.Width)
	assert.Equal(t, 650.0, w.Height)
	s.DragTo(900, 550)
	w, _ = f.wm.Get(id)
	assert.Equal(t, 800.0, w.Width)
	assert.Equal(t, 500.0, w.Height)
}

func TestIconAndWindowSessionsAreIndependent(t *testing.T) {
	f := newFixture(t)
	s := f.shell
	id := s.OpenApp(model.AppFinder, "")

	require.True(t, s.BeginIconDrag("welcome_txt", 20, 120))
	require.True(t, s.BeginWindowDrag(id, 100, 50))
	icon, win := s.Dragging()
	assert.True(t, icon)
	assert.True(t, win)
	s.EndDrag()
	icon, win = s.Dragging()
	assert.False(t, icon)
	assert.False(t, win)
}

func TestClickDesktop(t *testing.T) {
	f := newFixture(t)
	s := f.shell
	s.OpenApp(model.AppFinder, "")
	s.OpenContextMenu(400, 300, "")

	s.ClickDesktop()
	assert.Empty(t, f.wm.Active())
	assert.False(t, s.ContextMenu().Open)
}

func TestContextMenu(t *testing.T) {
	f := newFixture(t)
	s := f.shell

	s.OpenContextMenu(400, 300, "")
	menu := s.ContextMenu()
	require.True(t, menu.Open)
	assert.Equal(t, []MenuItem{
		{Label: MenuNewFolder},
		{Label: MenuNewTextDocument},
		{Label: MenuGetInfo},
		{Separator: true},
		{Label: MenuChangeWallpaper},
	}, menu.Items)

	s.ChooseMenuItem(MenuNewFolder)
	assert.False(t, s.ContextMenu().Open)
	s.OpenContextMenu(400, 300, "")
	s.ChooseMenuItem(MenuNewTextDocument)

	var names []string
	for _, n := range f.fs.GetChildren(model.DesktopID) {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Project_Specs.md", "Welcome.txt", "Portfolio", "New Folder", "Untitled.txt"}, names)

	s.ChooseMenuItem(MenuNewFolder)
	assert.Len(t, f.fs.GetChildren(model.DesktopID), 5, "a closed menu runs nothing")

	s.OpenContextMenu(400, 300, "")
	s.ChooseMenuItem(MenuChangeWallpaper)
	assert.Equal(t, model.AppSettings, f.wm.ActiveApp())
}

func TestGetInfo(t *testing.T) {
	f := newFixture(t)
	s := f.shell

	s.OpenContextMenu(0, 0, "")
	s.ChooseMenuItem(MenuGetInfo)
	assert.Empty(t, s.Notifications())

	s.OpenContextMenu(20, 20, "portfolio_folder")
	s.ChooseMenuItem(MenuGetInfo)
	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Portfolio", notes[0].Title)
	assert.Equal(t, "Folder, 0 items, modified Mar 1, 2025 at 9:30 AM", notes[0].Body)
	assert.Equal(t, LevelInfo, notes[0].Level)
}

func TestNotificationsBounded(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.shell.Notify(LevelInfo, fmt.Sprint(i), "")
	}
	notes := f.shell.Notifications()
	require.Len(t, notes, MaxNotifications)
	assert.Equal(t, "24", notes[0].Title)
	assert.Equal(t, "5", notes[MaxNotifications-1].Title)

	f.shell.ClearNotifications()
	assert.Empty(t, f.shell.Notifications())
}

func TestPersistErrorsBecomeNotifications(t *testing.T) {
	mem := store.NewMemory()
	fs := vfs.New(vfs.WithStorage(mem))
	s := New(fs, WithInitialState(model.StateDesktop))
	t.Cleanup(s.Close)

	mem.SetFailure(errors.New("quota exceeded"))
	_, err := fs.CreateItem("a", model.KindFile, model.DesktopID, "")
	require.NoError(t, err)

	notes := s.Notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, LevelError, notes[0].Level)
	assert.Contains(t, notes[0].Body, "quota exceeded")
}

func TestOverlays(t *testing.T) {
	f := newFixture(t)
	s := f.shell

	s.ToggleOverlay(Spotlight)
	assert.True(t, s.OverlayOpen(Spotlight))
	s.SetQuery("te")
	var titles []string
	for _, a := range s.SearchResults() {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Terminal")
	assert.Contains(t, titles, "Notes")

	s.ToggleOverlay(Spotlight)
	assert.False(t, s.OverlayOpen(Spotlight))

	s.ToggleOverlay(NotificationCenter)
	s.CloseOverlays()
	assert.False(t, s.OverlayOpen(NotificationCenter))

	require.NoError(t, s.Transition(Sleep))
	s.ToggleOverlay(Launchpad)
	assert.False(t, s.OverlayOpen(Launchpad))
}

func TestDesktopIcons(t *testing.T) {
	f := newFixture(t)
	_, err := f.fs.CreateItem("New Folder", model.KindFolder, model.DesktopID, "")
	require.NoError(t, err)

	icons := f.shell.DesktopIcons()
	require.Len(t, icons, 4)
	assert.Equal(t, model.Position{X: 20, Y: 20}, icons[0].Position)
	assert.Equal(t, model.Position{X: 20, Y: 220}, icons[2].Position)
	assert.Equal(t, vfs.DefaultDesktopPosition, icons[3].Position)
}

func TestDock(t *testing.T) {
	f := newFixture(t)
	s := f.shell
	a := s.OpenApp(model.AppFinder, "")
	s.OpenApp(model.AppTerminal, "")
	require.NoError(t, f.wm.MinimizeWindow(a))

	byApp := make(map[model.AppID]DockItem)
	for _, d := range s.Dock() {
		byApp[d.App.ID] = d
	}
	assert.Equal(t, DockItem{App: byApp[model.AppFinder].App, Running: true, Minimized: true}, byApp[model.AppFinder])
	assert.Equal(t, DockItem{App: byApp[model.AppTerminal].App, Running: true, Active: true}, byApp[model.AppTerminal])
	assert.False(t, byApp[model.AppNotes].Running)
	_, listed := byApp[model.AppAboutMac]
	assert.False(t, listed)

	assert.Equal(t, a, s.DockClick(model.AppFinder), "restores the hidden window")
	w, _ := f.wm.Get(a)
	assert.False(t, w.Minimized)
	assert.Equal(t, a, f.wm.Active())

	second := s.DockClick(model.AppFinder)
	assert.NotEqual(t, a, second)
	assert.Len(t, f.wm.WindowsFor(model.AppFinder), 2)
}
