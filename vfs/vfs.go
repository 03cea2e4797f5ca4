// Package vfs is the in-memory hierarchical document store behind the desktop,
// Finder, the editors and the terminal. Every mutation is persisted as one JSON
// document under store.FileSystemKey.
package vfs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"macsim/events"
	"macsim/metrics"
	"macsim/model"
	"macsim/store"
)

const (
	defaultUndoLimit    = 20
	defaultWriteTimeout = 5 * time.Second
)

var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrWrongKind        = errors.New("wrong node kind")
	ErrInvalidParent    = errors.New("parent not found or not a folder")
	ErrCannotDeleteRoot = errors.New("cannot delete root")
	ErrCannotMoveRoot   = errors.New("cannot move root")
	ErrInvalidName      = errors.New("name must not be empty")
	ErrInvalidContent   = errors.New("content is not valid UTF-8")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrInvalidTable     = errors.New("invalid node table")
)

// DeletePolicy decides what happens to the descendants of a deleted folder.
type DeletePolicy int

const (
	// DeleteDetach removes only the node; its sub-tree stays in the table,
	// unreachable from the root, until PurgeOrphans.
	DeleteDetach DeletePolicy = iota
	// DeleteCascade removes the node and its whole sub-tree.
	DeleteCascade
)

// ParseDeletePolicy accepts "detach" (or empty) and "cascade".
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "detach":
		return DeleteDetach, nil
	case "cascade":
		return DeleteCascade, nil
	default:
		return DeleteDetach, fmt.Errorf("unknown delete policy %q", s)
	}
}

func (p DeletePolicy) String() string {
	if p == DeleteCascade {
		return "cascade"
	}
	return "detach"
}

// ChangeOp names the kind of mutation reported to subscribers.
type ChangeOp string

const (
	OpCreate   ChangeOp = "create"
	OpDelete   ChangeOp = "delete"
	OpContent  ChangeOp = "content"
	OpPosition ChangeOp = "position"
	OpRename   ChangeOp = "rename"
	OpMove     ChangeOp = "move"
	OpRestore  ChangeOp = "restore"
	OpPurge    ChangeOp = "purge"
)

// Change describes one applied mutation.
type Change struct {
	Op       ChangeOp
	NodeID   string
	ParentID string
}

// Option configures a Store.
type Option func(*Store)

// WithStorage makes the store load from and persist to s.
func WithStorage(s store.Storage) Option {
	return func(st *Store) { st.storage = s }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(st *Store) { st.key = key }
}

func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.log = l
		}
	}
}

func WithDeletePolicy(p DeletePolicy) Option {
	return func(st *Store) { st.policy = p }
}

// WithDebounce coalesces writes that happen within d of each other.
// Zero keeps the write-on-every-mutation behavior.
func WithDebounce(d time.Duration) Option {
	return func(st *Store) { st.debounce = d }
}

func WithUndoLimit(n int) Option {
	return func(st *Store) {
		if n >= 0 {
			st.undoLimit = n
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(st *Store) { st.newID = gen }
}

// Store owns the node table. All reads return copies.
type Store struct {
	mu     sync.RWMutex
	nodes  model.Table
	rootID string
	undo   []undoEntry

	storage   store.Storage
	key       string
	log       *zap.Logger
	policy    DeletePolicy
	debounce  time.Duration
	undoLimit int
	now       func() time.Time
	newID     func() string

	saveMu sync.Mutex
	dirty  bool
	timer  *time.Timer
	status string

	changes     *events.Emitter[Change]
	persistErrs *events.Emitter[error]
}

// New returns a store holding the seed tree. Nothing is read from storage;
// use Open for that.
func New(opts ...Option) *Store {
	s := &Store{
		key:         store.FileSystemKey,
		log:         zap.NewNop(),
		undoLimit:   defaultUndoLimit,
		now:         time.Now,
		newID:       uuid.NewString,
		changes:     events.NewEmitter[Change](),
		persistErrs: events.NewEmitter[error](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.nodes = Seed(s.timestamp())
	s.rootID = model.RootID
	return s
}

// Open builds a store and loads the table from its storage. A missing or
// unusable stored table falls back to the seed tree; read failures are logged
// and reported through LoadStatus but never returned.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	s := New(opts...)
	if s.storage == nil {
		return s, nil
	}

	table, status := s.load(ctx)
	s.status = status
	if table == nil {
		s.log.Info("using seed file system", zap.String("key", s.key))
		s.markDirty()
		if err := s.Flush(); err != nil {
			s.log.Warn("could not store seed file system", zap.Error(err))
		}
		return s, nil
	}

	s.mu.Lock()
	s.nodes = table
	s.rootID = table.Roots()[0]
	s.mu.Unlock()
	s.log.Info("file system loaded", zap.String("key", s.key), zap.Int("nodes", len(table)))
	return s, nil
}

func (s *Store) load(ctx context.Context) (model.Table, string) {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, ""
	}
	if err != nil {
		s.log.Error("read file system failed", zap.String("key", s.key), zap.Error(err))
		return nil, "Could not read saved files; starting from defaults"
	}

	table, err := Decode(data)
	if err == nil {
		return table, ""
	}
	s.log.Warn("stored file system is unusable", zap.String("key", s.key), zap.Error(err))

	rec, ok := s.storage.(store.Recoverer)
	if !ok {
		return nil, "Saved files were corrupt; starting from defaults"
	}
	recovered, msg, rerr := rec.Recover(ctx, s.key, validateBytes)
	if rerr != nil {
		s.log.Error("file system recovery failed", zap.String("key", s.key), zap.Error(rerr))
		return nil, "Saved files were corrupt; starting from defaults"
	}
	if recovered == nil {
		return nil, msg
	}
	table, err = Decode(recovered)
	if err != nil {
		return nil, msg
	}
	return table, msg
}

// LoadStatus is a user-facing message describing how the table was loaded,
// empty when nothing unusual happened.
func (s *Store) LoadStatus() string {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.status
}

// RootID returns the id of the root folder.
func (s *Store) RootID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootID
}

// Policy returns the configured delete policy.
func (s *Store) Policy() DeletePolicy { return s.policy }

// Subscribe registers fn for every applied mutation.
func (s *Store) Subscribe(fn func(Change)) func() {
	return s.changes.Subscribe(fn)
}

// OnPersistError registers fn for failed writes.
func (s *Store) OnPersistError(fn func(error)) func() {
	return s.persistErrs.Subscribe(fn)
}

// CreateItem adds a node under parentID and returns its id.
// New files start with content (possibly empty); new folders start empty.
// Items created on the desktop get the default icon position.
func (s *Store) CreateItem(name string, kind model.NodeKind, parentID, content string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if kind != model.KindFile && kind != model.KindFolder {
		return "", ErrWrongKind
	}
	if !utf8.ValidString(name) {
		return "", ErrInvalidName
	}
	if !utf8.ValidString(content) {
		return "", ErrInvalidContent
	}

	s.mu.Lock()
	parent, ok := s.nodes[parentID]
	if !ok || !parent.IsFolder() {
		s.mu.Unlock()
		return "", ErrInvalidParent
	}

	now := s.timestamp()
	node := model.Node{
		ID:        s.newID(),
		Name:      name,
		Kind:      kind,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if kind == model.KindFile {
		node.Content = content
	} else {
		node.Children = []string{}
	}
	if parentID == model.DesktopID {
		pos := DefaultDesktopPosition
		node.Position = &pos
	}

	parent.Children = append(cloneIDs(parent.Children), node.ID)
	s.nodes[parentID] = parent
	s.nodes[node.ID] = node
	id := node.ID
	s.pushUndo(OpCreate, func(t model.Table) {
		unlink(t, parentID, id)
		delete(t, id)
	})
	s.mu.Unlock()

	s.log.Debug("item created", zap.String("node_id", node.ID), zap.String("parent_id", parentID), zap.String("kind", string(kind)))
	s.commit(Change{Op: OpCreate, NodeID: node.ID, ParentID: parentID})
	return node.ID, nil
}

// DeleteItem removes a node and detaches it from its parent. Descendants are
// kept or removed according to the delete policy.
func (s *Store) DeleteItem(id string) error {
	s.mu.Lock()
	node, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return ErrNodeNotFound
	}
	if node.IsRoot() {
		s.mu.Unlock()
		return ErrCannotDeleteRoot
	}

	at := -1
	if parent, ok := s.nodes[node.ParentID]; ok {
		at = indexOf(parent.Children, id)
		parent.Children = removeID(parent.Children, id)
		s.nodes[node.ParentID] = parent
	}
	gone := []model.Node{node.Clone()}
	if s.policy == DeleteCascade {
		for _, d := range s.descendantsLocked(id) {
			gone = append(gone, s.nodes[d].Clone())
			delete(s.nodes, d)
		}
	}
	delete(s.nodes, id)
	removed := len(gone)
	parentID := node.ParentID
	s.pushUndo(OpDelete, func(t model.Table) {
		restoreNodes(t, gone)
		link(t, parentID, id, at)
	})
	s.mu.Unlock()

	s.log.Debug("item deleted", zap.String("node_id", id), zap.Int("removed", removed), zap.Stringer("policy", s.policy))
	s.commit(Change{Op: OpDelete, NodeID: id, ParentID: node.ParentID})
	return nil
}

// UpdateFileContent replaces the text of a file.
func (s *Store) UpdateFileContent(id, content string) error {
	if !utf8.ValidString(content) {
		return ErrInvalidContent
	}
	s.mu.Lock()
	node, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return ErrNodeNotFound
	}
	if !node.IsFile() {
		s.mu.Unlock()
		return ErrWrongKind
	}
	node.Content = content
	node.UpdatedAt = s.timestamp()
	s.nodes[id] = node
	s.mu.Unlock()

	s.commit(Change{Op: OpContent, NodeID: id, ParentID: node.ParentID})
	return nil
}

// UpdateItemPosition sets the desktop icon position. Any node may carry one;
// it only matters while the node lives on the desktop.
func (s *Store) UpdateItemPosition(id string, x, y float64) error {
	s.mu.Lock()
	node, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return ErrNodeNotFound
	}
	node.Position = &model.Position{X: x, Y: y}
	node.UpdatedAt = s.timestamp()
	s.nodes[id] = node
	s.mu.Unlock()

	s.commit(Change{Op: OpPosition, NodeID: id, ParentID: node.ParentID})
	return nil
}

// Rename changes the display name of a node.
func (s *Store) Rename(id, name string) error {
	if strings.TrimSpace(name) == "" || !utf8.ValidString(name) {
		return ErrInvalidName
	}
	s.mu.Lock()
	node, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return ErrNodeNotFound
	}
	old := node.Name
	node.Name = name
	node.UpdatedAt = s.timestamp()
	s.nodes[id] = node
	s.pushUndo(OpRename, func(t model.Table) {
		if n, ok := t[id]; ok {
			n.Name = old
			t[id] = n
		}
	})
	s.mu.Unlock()

	s.commit(Change{Op: OpRename, NodeID: id, ParentID: node.ParentID})
	return nil
}

// MoveItem re-parents a node. The target must be a folder outside the node's
// own sub-tree.
func (s *Store) MoveItem(id, newParentID string) error {
	s.mu.Lock()
	node, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return ErrNodeNotFound
	}
	if node.IsRoot() {
		s.mu.Unlock()
		return ErrCannotMoveRoot
	}
	target, ok := s.nodes[newParentID]
	if !ok || !target.IsFolder() || newParentID == id || s.isAncestorLocked(id, newParentID) {
		s.mu.Unlock()
		return ErrInvalidParent
	}
	if node.ParentID == newParentID {
		s.mu.Unlock()
		return nil
	}

	oldParentID, at := node.ParentID, -1
	hadPosition := node.Position != nil
	if old, ok := s.nodes[oldParentID]; ok {
		at = indexOf(old.Children, id)
		old.Children = removeID(old.Children, id)
		s.nodes[oldParentID] = old
	}
	target = s.nodes[newParentID]
	target.Children = append(cloneIDs(target.Children), id)
	s.nodes[newParentID] = target

	node.ParentID = newParentID
	node.UpdatedAt = s.timestamp()
	if newParentID == model.DesktopID && node.Position == nil {
		pos := DefaultDesktopPosition
		node.Position = &pos
	}
	s.nodes[id] = node
	s.pushUndo(OpMove, func(t model.Table) {
		n, ok := t[id]
		if !ok {
			return
		}
		unlink(t, n.ParentID, id)
		link(t, oldParentID, id, at)
		n.ParentID = oldParentID
		if !hadPosition {
			n.Position = nil
		}
		t[id] = n
	})
	s.mu.Unlock()

	s.commit(Change{Op: OpMove, NodeID: id, ParentID: newParentID})
	return nil
}

// GetItem returns a copy of the node.
func (s *Store) GetItem(id string) (model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return model.Node{}, false
	}
	return n.Clone(), true
}

// GetChildren returns the children of a folder in display order, skipping ids
// that no longer resolve. Unknown ids and files yield an empty slice.
func (s *Store) GetChildren(parentID string) []model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parent, ok := s.nodes[parentID]
	if !ok || !parent.IsFolder() {
		return []model.Node{}
	}
	out := make([]model.Node, 0, len(parent.Children))
	for _, cid := range parent.Children {
		if c, ok := s.nodes[cid]; ok {
			out = append(out, c.Clone())
		}
	}
	return out
}

// ChildByName returns the first child of parentID called name. An empty kind
// matches both files and folders.
func (s *Store) ChildByName(parentID, name string, kind model.NodeKind) (model.Node, bool) {
	for _, c := range s.GetChildren(parentID) {
		if c.Name == name && (kind == "" || c.Kind == kind) {
			return c, true
		}
	}
	return model.Node{}, false
}

// GetPath returns the nodes from the root down to id. Unknown ids yield an
// empty slice; a broken parent chain yields the part that resolves.
func (s *Store) GetPath(id string) []model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rev []model.Node
	seen := make(map[string]bool)
	cur, ok := s.nodes[id]
	for ok && !seen[cur.ID] {
		seen[cur.ID] = true
		rev = append(rev, cur.Clone())
		if cur.IsRoot() {
			break
		}
		cur, ok = s.nodes[cur.ParentID]
	}
	out := make([]model.Node, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

// PathString renders the path of id as "/Macintosh HD/Desktop".
func (s *Store) PathString(id string) string {
	path := s.GetPath(id)
	if len(path) == 0 {
		return "/"
	}
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}
	return "/" + strings.Join(names, "/")
}

// Resolve finds a node by a slash separated name path. Absolute paths start at
// the root and may optionally name it ("/Macintosh HD/Desktop"); relative
// paths start at fromID. "." and ".." are understood.
func (s *Store) Resolve(fromID, path string) (model.Node, error) {
	root := s.RootID()
	cur := fromID
	if strings.HasPrefix(path, "/") || cur == "" {
		cur = root
	}
	segments := strings.Split(path, "/")
	first := true
	for _, seg := range segments {
		if seg == "" || seg == "." {
			continue
		}
		if seg == ".." {
			if n, ok := s.GetItem(cur); ok && !n.IsRoot() {
				cur = n.ParentID
			}
			first = false
			continue
		}
		child, ok := s.ChildByName(cur, seg, "")
		if !ok && first && cur == root && strings.HasPrefix(path, "/") {
			if r, ok := s.GetItem(root); ok && r.Name == seg {
				first = false
				continue
			}
		}
		if !ok {
			return model.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
		}
		first = false
		cur = child.ID
	}
	n, ok := s.GetItem(cur)
	if !ok {
		return model.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	return n, nil
}

// Snapshot returns a deep copy of the whole table.
func (s *Store) Snapshot() model.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes.Clone()
}

// Len returns the number of nodes, reachable or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Orphans lists nodes that cannot be reached from the root, sorted by id.
func (s *Store) Orphans() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orphansLocked()
}

// PurgeOrphans deletes every unreachable node and returns how many went away.
func (s *Store) PurgeOrphans() (int, error) {
	s.mu.Lock()
	orphans := s.orphansLocked()
	if len(orphans) == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	gone := make([]model.Node, 0, len(orphans))
	for _, id := range orphans {
		gone = append(gone, s.nodes[id].Clone())
		delete(s.nodes, id)
	}
	s.pushUndo(OpPurge, func(t model.Table) { restoreNodes(t, gone) })
	s.mu.Unlock()

	s.log.Info("orphans purged", zap.Int("count", len(orphans)))
	s.commit(Change{Op: OpPurge})
	return len(orphans), nil
}

// Undo reverts the last structural change (create, delete, rename, move or
// purge). Only the nodes that change touched are reverted; content edits and
// icon moves made since then are kept.
func (s *Store) Undo() error {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	last := len(s.undo) - 1
	entry := s.undo[last]
	s.undo = s.undo[:last]
	entry.revert(s.nodes)
	s.mu.Unlock()

	s.log.Debug("undo", zap.String("op", string(entry.op)))

	s.commit(Change{Op: OpRestore})
	return nil
}

// CanUndo reports whether Undo has anything to restore.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo) > 0
}

// Reset replaces the table with the seed tree and forgets undo history.
func (s *Store) Reset() {
	s.mu.Lock()
	s.nodes = Seed(s.timestamp())
	s.rootID = model.RootID
	s.undo = nil
	s.mu.Unlock()

	s.commit(Change{Op: OpRestore})
}

// Flush writes the table now if a write is pending. A failed write is also
// reported to OnPersistError observers.
func (s *Store) Flush() error {
	err := s.flush()
	if err != nil {
		s.persistErrs.Emit(err)
	}
	return err
}

func (s *Store) flush() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty || s.storage == nil {
		return nil
	}
	s.dirty = false

	s.mu.RLock()
	data, err := Encode(s.nodes)
	count := len(s.nodes)
	s.mu.RUnlock()

	start := time.Now()
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
		err = s.storage.Set(ctx, s.key, data)
		cancel()
	}
	metrics.RecordPersist(err, time.Since(start), count)
	if err != nil {
		s.dirty = true
		s.log.Error("persist file system failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	return nil
}

// Close flushes any pending write.
func (s *Store) Close() error {
	return s.Flush()
}

func (s *Store) commit(ch Change) {
	metrics.RecordFSMutation(string(ch.Op))
	s.changes.Emit(ch)
	if s.storage == nil {
		return
	}
	if s.debounce <= 0 {
		s.markDirty()
		_ = s.Flush()
		return
	}
	s.saveMu.Lock()
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, func() { _ = s.Flush() })
	} else {
		s.timer.Reset(s.debounce)
	}
	s.saveMu.Unlock()
}

func (s *Store) markDirty() {
	s.saveMu.Lock()
	s.dirty = true
	s.saveMu.Unlock()
}

func (s *Store) timestamp() model.Timestamp {
	return model.TimestampOf(s.now())
}

// undoEntry reverts one structural change in place.
type undoEntry struct {
	op     ChangeOp
	revert func(model.Table)
}

// pushUndo must be called with mu held, after the change is applied.
func (s *Store) pushUndo(op ChangeOp, revert func(model.Table)) {
	if s.undoLimit == 0 {
		return
	}
	s.undo = append(s.undo, undoEntry{op: op, revert: revert})
	if len(s.undo) > s.undoLimit {
		s.undo = s.undo[len(s.undo)-s.undoLimit:]
	}
}

func (s *Store) descendantsLocked(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, cid := range s.nodes[cur].Children {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			if _, ok := s.nodes[cid]; ok {
				out = append(out, cid)
				stack = append(stack, cid)
			}
		}
	}
	return out
}

// isAncestorLocked reports whether ancestor lies on the parent chain of id.
func (s *Store) isAncestorLocked(ancestor, id string) bool {
	seen := make(map[string]bool)
	cur, ok := s.nodes[id]
	for ok && !seen[cur.ID] {
		if cur.ParentID == ancestor {
			return true
		}
		seen[cur.ID] = true
		cur, ok = s.nodes[cur.ParentID]
	}
	return false
}

func (s *Store) orphansLocked() []string {
	reachable := map[string]bool{s.rootID: true}
	for _, id := range s.descendantsLocked(s.rootID) {
		reachable[id] = true
	}
	var out []string
	for id := range s.nodes {
		if !reachable[id] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids), len(ids)+1)
	copy(out, ids)
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// link puts id back into parentID's children at index at. A negative index
// means it was not listed there and nothing is done.
func link(t model.Table, parentID, id string, at int) {
	p, ok := t[parentID]
	if !ok || at < 0 || indexOf(p.Children, id) >= 0 {
		return
	}
	at = min(at, len(p.Children))
	children := make([]string, 0, len(p.Children)+1)
	children = append(children, p.Children[:at]...)
	children = append(children, id)
	p.Children = append(children, p.Children[at:]...)
	t[parentID] = p
}

func unlink(t model.Table, parentID, id string) {
	if p, ok := t[parentID]; ok {
		p.Children = removeID(p.Children, id)
		t[parentID] = p
	}
}

// restoreNodes re-adds removed nodes that are still absent.
func restoreNodes(t model.Table, nodes []model.Node) {
	for _, n := range nodes {
		if _, ok := t[n.ID]; !ok {
			t[n.ID] = n.Clone()
		}
	}
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
