package vfs

import (
	"encoding/json"
	"fmt"

	"macsim/model"
)

// Encode serializes the node table in the persisted shape.
func Encode(t model.Table) ([]byte, error) {
	return json.Marshal(t)
}

// Decode parses a persisted node table and checks it has a single root.
func Decode(data []byte) (model.Table, error) {
	var t model.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	for id, n := range t {
		if n.ID == "" {
			n.ID = id
			t[id] = n
		}
	}
	return t, nil
}

// Validate checks the table-level requirements a loaded table must meet.
// Dangling child ids and unreachable nodes are tolerated: readers filter them.
func Validate(t model.Table) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty table", ErrInvalidTable)
	}
	roots := t.Roots()
	if len(roots) != 1 {
		return fmt.Errorf("%w: expected one root, found %d", ErrInvalidTable, len(roots))
	}
	if !t[roots[0]].IsFolder() {
		return fmt.Errorf("%w: root is not a folder", ErrInvalidTable)
	}
	for id, n := range t {
		if n.ID != "" && n.ID != id {
			return fmt.Errorf("%w: node %q stored under key %q", ErrInvalidTable, n.ID, id)
		}
		if n.Kind != model.KindFile && n.Kind != model.KindFolder {
			return fmt.Errorf("%w: node %q has kind %q", ErrInvalidTable, id, n.Kind)
		}
	}
	return nil
}

func validateBytes(data []byte) error {
	_, err := Decode(data)
	return err
}
