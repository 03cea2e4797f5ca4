package vfs

import (
	"go.uber.org/zap"

	"macsim/model"
)

// Lenient is the UI-facing view of a Store: structural errors become no-ops
// and are only logged at debug level, so a stale id can never break the shell.
type Lenient struct {
	s *Store
}

// Lenient returns the forgiving view of s.
func (s *Store) Lenient() Lenient {
	return Lenient{s: s}
}

// Strict returns the underlying store.
func (l Lenient) Strict() *Store { return l.s }

// CreateItem returns the new id, or "" when the parent is unusable.
func (l Lenient) CreateItem(name string, kind model.NodeKind, parentID, content string) string {
	id, err := l.s.CreateItem(name, kind, parentID, content)
	l.ignored("create", parentID, err)
	return id
}

func (l Lenient) DeleteItem(id string) {
	l.ignored("delete", id, l.s.DeleteItem(id))
}

func (l Lenient) UpdateFileContent(id, content string) {
	l.ignored("content", id, l.s.UpdateFileContent(id, content))
}

func (l Lenient) UpdateItemPosition(id string, x, y float64) {
	l.ignored("position", id, l.s.UpdateItemPosition(id, x, y))
}

func (l Lenient) Rename(id, name string) {
	l.ignored("rename", id, l.s.Rename(id, name))
}

func (l Lenient) MoveItem(id, parentID string) {
	l.ignored("move", id, l.s.MoveItem(id, parentID))
}

func (l Lenient) GetItem(id string) (model.Node, bool) { return l.s.GetItem(id) }

func (l Lenient) GetChildren(parentID string) []model.Node { return l.s.GetChildren(parentID) }

func (l Lenient) GetPath(id string) []model.Node { return l.s.GetPath(id) }

func (l Lenient) ignored(op, id string, err error) {
	if err == nil {
		return
	}
	l.s.log.Debug("ignored file system error", zap.String("op", op), zap.String("node_id", id), zap.Error(err))
}

// Undo reports whether anything was restored.
func (l Lenient) Undo() bool {
	err := l.s.Undo()
	l.ignored("undo", "", err)
	return err == nil
}
