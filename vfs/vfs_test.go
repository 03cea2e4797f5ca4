package vfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macsim/model"
	"macsim/store"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("node-%d", n)
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	}
	s, err := Open(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func childIDs(nodes []model.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestSeedTree(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, []string{"project_specs", "welcome_txt", "portfolio_folder"}, childIDs(s.GetChildren(model.DesktopID)))
	assert.Equal(t, []string{model.DesktopID, model.DocumentsID, model.DownloadsID}, childIDs(s.GetChildren(model.RootID)))

	welcome, ok := s.GetItem("welcome_txt")
	require.True(t, ok)
	assert.Equal(t, model.KindFile, welcome.Kind)
	assert.Equal(t, &model.Position{X: 20, Y: 120}, welcome.Position)
	assert.Empty(t, s.Orphans())
}

func TestCreateAndDeleteScenario(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateItem("Notes.txt", model.KindFile, model.DesktopID, "hi")
	require.NoError(t, err)

	children := s.GetChildren(model.DesktopID)
	require.Len(t, children, 4)
	assert.Equal(t, id, children[3].ID)
	assert.Equal(t, "hi", children[3].Content)
	assert.Equal(t, &DefaultDesktopPosition, children[3].Position)

	require.NoError(t, s.DeleteItem("project_specs"))
	children = s.GetChildren(model.DesktopID)
	require.Len(t, children, 3)
	assert.NotContains(t, childIDs(children), "project_specs")
	_, ok := s.GetItem("project_specs")
	assert.False(t, ok)
}

func TestCreateItemDefaults(t *testing.T) {
	s := newTestStore(t)

	folderID, err := s.CreateItem("Projects", model.KindFolder, model.DocumentsID, "ignored")
	require.NoError(t, err)
	folder, _ := s.GetItem(folderID)
	assert.Equal(t, []string{}, folder.Children)
	assert.Empty(t, folder.Content)
	assert.Nil(t, folder.Position, "only desktop children get an icon position")
	assert.Equal(t, model.TimestampOf(fixedNow), folder.CreatedAt)

	fileID, err := s.CreateItem("empty.txt", model.KindFile, folderID, "")
	require.NoError(t, err)
	file, _ := s.GetItem(fileID)
	assert.Nil(t, file.Children)
	assert.Equal(t, folderID, file.ParentID)
}

func TestCreateItemRejectsBadParent(t *testing.T) {
	s := newTestStore(t)
	before := s.Len()

	_, err := s.CreateItem("x", model.KindFile, "missing", "")
	assert.ErrorIs(t, err, ErrInvalidParent)
	_, err = s.CreateItem("x", model.KindFile, "welcome_txt", "")
	assert.ErrorIs(t, err, ErrInvalidParent)
	_, err = s.CreateItem("  ", model.KindFile, model.DesktopID, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.Equal(t, before, s.Len())
}

func TestDeleteRules(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.DeleteItem(model.RootID), ErrCannotDeleteRoot)
	assert.ErrorIs(t, s.DeleteItem("nope"), ErrNodeNotFound)
}

func TestDeleteDetachLeavesOrphans(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.DeleteItem(model.DocumentsID))
	_, ok := s.GetItem("notes_folder")
	assert.True(t, ok, "descendants stay in the table")
	assert.Equal(t, []string{"notes_folder"}, s.Orphans())

	n, err := s.PurgeOrphans()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, s.Orphans())
}

func TestDeleteCascade(t *testing.T) {
	s := newTestStore(t, WithDeletePolicy(DeleteCascade))
	deep, err := s.CreateItem("deep.txt", model.KindFile, "notes_folder", "x")
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(model.DocumentsID))
	for _, id := range []string{model.DocumentsID, "notes_folder", deep} {
		_, ok := s.GetItem(id)
		assert.False(t, ok, id)
	}
	assert.Empty(t, s.Orphans())
}

func TestUpdateFileContent(t *testing.T) {
	now := fixedNow
	s := newTestStore(t, WithClock(func() time.Time { return now }))

	now = now.Add(time.Minute)
	require.NoError(t, s.UpdateFileContent("welcome_txt", "changed"))
	n, _ := s.GetItem("welcome_txt")
	assert.Equal(t, "changed", n.Content)
	assert.Equal(t, model.TimestampOf(now), n.UpdatedAt)
	assert.Less(t, int64(n.CreatedAt), int64(n.UpdatedAt))

	assert.ErrorIs(t, s.UpdateFileContent(model.DesktopID, "x"), ErrWrongKind)
	assert.ErrorIs(t, s.UpdateFileContent("nope", "x"), ErrNodeNotFound)
}

func TestUpdateItemPosition(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpdateItemPosition("portfolio_folder", 300, 40))
	n, _ := s.GetItem("portfolio_folder")
	assert.Equal(t, &model.Position{X: 300, Y: 40}, n.Position)

	// Any node may carry a position.
	require.NoError(t, s.UpdateItemPosition("notes_folder", 1, 2))
	assert.ErrorIs(t, s.UpdateItemPosition("nope", 1, 2), ErrNodeNotFound)
}

func TestRenameAndMove(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Rename("welcome_txt", "Hello.txt"))
	n, _ := s.GetItem("welcome_txt")
	assert.Equal(t, "Hello.txt", n.Name)
	assert.ErrorIs(t, s.Rename("welcome_txt", ""), ErrInvalidName)

	require.NoError(t, s.MoveItem("welcome_txt", model.DocumentsID))
	assert.NotContains(t, childIDs(s.GetChildren(model.DesktopID)), "welcome_txt")
	assert.Contains(t, childIDs(s.GetChildren(model.DocumentsID)), "welcome_txt")

	assert.ErrorIs(t, s.MoveItem(model.DocumentsID, "notes_folder"), ErrInvalidParent, "cannot move into own sub-tree")
	assert.ErrorIs(t, s.MoveItem(model.DocumentsID, model.DocumentsID), ErrInvalidParent)
	assert.ErrorIs(t, s.MoveItem("welcome_txt", "project_specs"), ErrInvalidParent)
	assert.ErrorIs(t, s.MoveItem(model.RootID, model.DesktopID), ErrCannotMoveRoot)
}

func TestGetChildrenFiltersDanglingIDs(t *testing.T) {
	table := Seed(model.TimestampOf(fixedNow))
	desktop := table[model.DesktopID]
	desktop.Children = append(desktop.Children, "ghost")
	table[model.DesktopID] = desktop

	mem := store.NewMemory()
	data, err := Encode(table)
	require.NoError(t, err)
	require.NoError(t, mem.Set(context.Background(), store.FileSystemKey, data))

	s := newTestStore(t, WithStorage(mem))
	assert.Len(t, s.GetChildren(model.DesktopID), 3)
	assert.Empty(t, s.GetChildren("welcome_txt"))
	assert.Empty(t, s.GetChildren("nope"))
}

func TestGetPath(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, []string{model.RootID, model.DocumentsID, "notes_folder"}, childIDs(s.GetPath("notes_folder")))
	assert.Empty(t, s.GetPath("nope"))
	assert.Equal(t, "/Macintosh HD/Documents/My Notes", s.PathString("notes_folder"))

	// A detached node yields the part of the chain that still resolves.
	require.NoError(t, s.DeleteItem(model.DocumentsID))
	assert.Equal(t, []string{"notes_folder"}, childIDs(s.GetPath("notes_folder")))
}

func TestResolve(t *testing.T) {
	s := newTestStore(t)

	for _, path := range []string{"/Desktop/Welcome.txt", "/Macintosh HD/Desktop/Welcome.txt", "Welcome.txt", "./Welcome.txt", "../Desktop/Welcome.txt"} {
		n, err := s.Resolve(model.DesktopID, path)
		require.NoError(t, err, path)
		assert.Equal(t, "welcome_txt", n.ID, path)
	}

	n, err := s.Resolve("", "/")
	require.NoError(t, err)
	assert.Equal(t, model.RootID, n.ID)

	_, err = s.Resolve(model.DesktopID, "Missing.txt")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestReadsReturnCopies(t *testing.T) {
	s := newTestStore(t)

	n, _ := s.GetItem(model.DesktopID)
	n.Children[0] = "mutated"
	n.Position = &model.Position{X: 9, Y: 9}

	again, _ := s.GetItem(model.DesktopID)
	assert.Equal(t, "project_specs", again.Children[0])
	assert.Nil(t, again.Position)
}

func TestUndo(t *testing.T) {
	s := newTestStore(t, WithUndoLimit(2))

	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)

	require.NoError(t, s.DeleteItem("welcome_txt"))
	require.NoError(t, s.Undo())
	assert.Contains(t, childIDs(s.GetChildren(model.DesktopID)), "welcome_txt")

	// Content edits are not undoable.
	require.NoError(t, s.UpdateFileContent("welcome_txt", "x"))
	assert.False(t, s.CanUndo())

	for i := 0; i < 3; i++ {
		_, err := s.CreateItem(fmt.Sprintf("f%d", i), model.KindFile, model.DesktopID, "")
		require.NoError(t, err)
	}
	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
	assert.Len(t, s.GetChildren(model.DesktopID), 4)
}

func TestUndoDeleteKeepsLaterEdits(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.DeleteItem("portfolio_folder"))
	require.NoError(t, s.UpdateFileContent("welcome_txt", "edited after delete"))
	require.NoError(t, s.UpdateItemPosition("project_specs", 500, 500))
	require.NoError(t, s.Undo())

	assert.Equal(t, []string{"project_specs", "welcome_txt", "portfolio_folder"}, childIDs(s.GetChildren(model.DesktopID)))
	welcome, _ := s.GetItem("welcome_txt")
	assert.Equal(t, "edited after delete", welcome.Content)
	specs, _ := s.GetItem("project_specs")
	require.NotNil(t, specs.Position)
	assert.Equal(t, model.Position{X: 500, Y: 500}, *specs.Position)
}

func TestUndoRevertsOnlyItsOwnChange(t *testing.T) {
	s := newTestStore(t, WithDeletePolicy(DeleteCascade))

	id, err := s.CreateItem("Drafts", model.KindFolder, model.DocumentsID, "")
	require.NoError(t, err)
	require.NoError(t, s.MoveItem("welcome_txt", id))
	require.NoError(t, s.UpdateFileContent("welcome_txt", "moved and edited"))
	require.NoError(t, s.Rename("project_specs", "Specs.md"))
	require.NoError(t, s.DeleteItem(model.DocumentsID))
	_, ok := s.GetItem("welcome_txt")
	require.False(t, ok)

	// delete
	require.NoError(t, s.Undo())
	welcome, ok := s.GetItem("welcome_txt")
	require.True(t, ok)
	assert.Equal(t, id, welcome.ParentID)
	assert.Equal(t, []string{model.DesktopID, model.DocumentsID, model.DownloadsID}, childIDs(s.GetChildren(model.RootID)))

	// rename
	require.NoError(t, s.Undo())
	specs, _ := s.GetItem("project_specs")
	assert.Equal(t, "Project_Specs.md", specs.Name)

	// move
	require.NoError(t, s.Undo())
	welcome, _ = s.GetItem("welcome_txt")
	assert.Equal(t, model.DesktopID, welcome.ParentID)
	assert.Equal(t, "moved and edited", welcome.Content)
	assert.Equal(t, []string{"project_specs", "welcome_txt", "portfolio_folder"}, childIDs(s.GetChildren(model.DesktopID)))
	assert.Empty(t, s.GetChildren(id))

	// create
	require.NoError(t, s.Undo())
	_, ok = s.GetItem(id)
	assert.False(t, ok)
	assert.Equal(t, []string{"notes_folder"}, childIDs(s.GetChildren(model.DocumentsID)))
	assert.False(t, s.CanUndo())
}

func TestUndoPurgeRestoresOrphans(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.DeleteItem(model.DocumentsID))
	n, err := s.PurgeOrphans()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Undo())
	_, ok := s.GetItem("notes_folder")
	assert.True(t, ok)
	require.NoError(t, s.Undo())
	assert.Equal(t, []string{"notes_folder"}, childIDs(s.GetChildren(model.DocumentsID)))
}

func TestRejectsInvalidUTF8(t *testing.T) {
	s := newTestStore(t)
	bad := "caf\xe9"

	_, err := s.CreateItem("notes.txt", model.KindFile, model.DesktopID, bad)
	assert.ErrorIs(t, err, ErrInvalidContent)
	_, err = s.CreateItem(bad, model.KindFile, model.DesktopID, "")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, s.UpdateFileContent("welcome_txt", bad), ErrInvalidContent)
	assert.ErrorIs(t, s.Rename("welcome_txt", bad), ErrInvalidName)

	welcome, _ := s.GetItem("welcome_txt")
	assert.Equal(t, "Welcome.txt", welcome.Name)
	assert.Len(t, s.GetChildren(model.DesktopID), 3)

	require.NoError(t, s.UpdateFileContent("welcome_txt", "café ☕"))
	data, err := Encode(s.Snapshot())
	require.NoError(t, err)
	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "café ☕", back["welcome_txt"].Content)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s := newTestStore(t)
	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	id, err := s.CreateItem("a", model.KindFolder, model.DesktopID, "")
	require.NoError(t, err)
	require.NoError(t, s.Rename(id, "b"))
	unsubscribe()
	require.NoError(t, s.DeleteItem(id))

	assert.Equal(t, []Change{
		{Op: OpCreate, NodeID: id, ParentID: model.DesktopID},
		{Op: OpRename, NodeID: id, ParentID: model.DesktopID},
	}, got)
}

func TestPersistsEveryMutation(t *testing.T) {
	mem := store.NewMemory()
	s := newTestStore(t, WithStorage(mem))
	seedWrites := mem.Writes()
	assert.Equal(t, 1, seedWrites, "seed is stored on first start")

	id, err := s.CreateItem("Notes.txt", model.KindFile, model.DesktopID, "hi")
	require.NoError(t, err)
	require.NoError(t, s.UpdateFileContent(id, "hello"))
	assert.Equal(t, seedWrites+2, mem.Writes())

	reopened := newTestStore(t, WithStorage(mem))
	n, ok := reopened.GetItem(id)
	require.True(t, ok)
	assert.Equal(t, "hello", n.Content)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}

func TestFailedMutationDoesNotPersist(t *testing.T) {
	mem := store.NewMemory()
	s := newTestStore(t, WithStorage(mem))
	before := mem.Writes()

	_, _ = s.CreateItem("x", model.KindFile, "missing", "")
	_ = s.DeleteItem(model.RootID)
	assert.Equal(t, before, mem.Writes())
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	mem := store.NewMemory()
	s := newTestStore(t, WithStorage(mem))
	var reported []error
	s.OnPersistError(func(err error) { reported = append(reported, err) })

	quota := errors.New("quota exceeded")
	mem.SetFailure(quota)
	id, err := s.CreateItem("big.txt", model.KindFile, model.DesktopID, "data")
	require.NoError(t, err, "storage failures never fail the mutation")

	_, ok := s.GetItem(id)
	assert.True(t, ok)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], quota)

	mem.SetFailure(nil)
	require.NoError(t, s.Flush())
	reopened := newTestStore(t, WithStorage(mem))
	_, ok = reopened.GetItem(id)
	assert.True(t, ok, "pending write is retried on the next flush")
}

func TestDebouncedPersistence(t *testing.T) {
	mem := store.NewMemory()
	s := newTestStore(t, WithStorage(mem), WithDebounce(time.Hour))
	before := mem.Writes()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.UpdateFileContent("welcome_txt", fmt.Sprint(i)))
	}
	assert.Equal(t, before, mem.Writes())

	require.NoError(t, s.Flush())
	assert.Equal(t, before+1, mem.Writes())
	require.NoError(t, s.Flush())
	assert.Equal(t, before+1, mem.Writes(), "nothing pending")
}

func TestDebounceTimerFires(t *testing.T) {
	mem := store.NewMemory()
	s := newTestStore(t, WithStorage(mem), WithDebounce(10*time.Millisecond))
	before := mem.Writes()

	require.NoError(t, s.UpdateFileContent("welcome_txt", "later"))
	assert.Eventually(t, func() bool { return mem.Writes() == before+1 }, time.Second, 5*time.Millisecond)
}

func TestLoadFallsBackToSeed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "{broken"},
		{name: "no root", payload: `{"a":{"id":"a","name":"a","type":"folder","children":[],"parentId":"b","createdAt":1,"updatedAt":1}}`},
		{name: "two roots", payload: `{"a":{"id":"a","name":"a","type":"folder","children":[],"parentId":null,"createdAt":1,"updatedAt":1},"b":{"id":"b","name":"b","type":"folder","children":[],"parentId":null,"createdAt":1,"updatedAt":1}}`},
		{name: "empty", payload: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			require.NoError(t, mem.Set(context.Background(), store.FileSystemKey, []byte(tt.payload)))

			s := newTestStore(t, WithStorage(mem))
			assert.Equal(t, Seed(model.TimestampOf(fixedNow)), s.Snapshot())
			assert.NotEmpty(t, s.LoadStatus())
		})
	}
}

func TestLoadRecoversFromFileBackup(t *testing.T) {
	dir := t.TempDir()
	files, err := store.NewFile(dir)
	require.NoError(t, err)

	s := newTestStore(t, WithStorage(files))
	id, err := s.CreateItem("keep.txt", model.KindFile, model.DesktopID, "important")
	require.NoError(t, err)
	require.NoError(t, s.UpdateFileContent(id, "important v2"))
	require.NoError(t, s.Close())

	require.NoError(t, os.WriteFile(files.Path(store.FileSystemKey), []byte("{corrupt"), 0o644))

	reopened := newTestStore(t, WithStorage(files))
	n, ok := reopened.GetItem(id)
	require.True(t, ok, "backup restored")
	assert.Equal(t, "important", n.Content)
	assert.Contains(t, reopened.LoadStatus(), "Recovered")

	matches, _ := filepath.Glob(filepath.Join(dir, "*.corrupt-*"))
	assert.Len(t, matches, 1)
}

func TestLenientSwallowsErrors(t *testing.T) {
	mem := store.NewMemory()
	s := newTestStore(t, WithStorage(mem))
	l := s.Lenient()
	before := mem.Writes()

	assert.Empty(t, l.CreateItem("x", model.KindFile, "missing", ""))
	l.DeleteItem(model.RootID)
	l.DeleteItem("missing")
	l.UpdateFileContent(model.DesktopID, "x")
	l.UpdateItemPosition("missing", 1, 1)
	l.Rename("missing", "y")
	l.MoveItem(model.RootID, model.DesktopID)
	assert.Equal(t, before, mem.Writes())

	id := l.CreateItem("ok.txt", model.KindFile, model.DesktopID, "")
	assert.NotEmpty(t, id)
	assert.Same(t, s, l.Strict())
}

func TestResetRestoresSeed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.DeleteItem(model.DesktopID))
	s.Reset()
	assert.Equal(t, Seed(model.TimestampOf(fixedNow)), s.Snapshot())
	assert.False(t, s.CanUndo())
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := ParseDeletePolicy("Cascade")
	require.NoError(t, err)
	assert.Equal(t, DeleteCascade, p)
	p, err = ParseDeletePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DeleteDetach, p)
	_, err = ParseDeletePolicy("shred")
	assert.Error(t, err)
}
