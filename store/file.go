package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	maxRotatingBackups  = 10
	rotatingStampLayout = "20060102-150405.000000000"

	// rotatingBackupInterval is the minimum age of the newest rotating backup
	// before another one is taken. The .bak copy is refreshed on every write.
	rotatingBackupInterval = time.Minute
)

var errNoValidBackup = errors.New("no valid backup found")

// File stores each key as a JSON document inside a directory.
// Writes are atomic (temp file + rename) and keep a latest backup (.bak)
// plus a rotating set of timestamped backups, at most one per
// rotatingBackupInterval.
type File struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFile creates the directory if needed.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file storage needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: dir, now: time.Now}, nil
}

// Path returns the file backing key.
func (f *File) Path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return autosave(f.Path(key), value, f.now().UTC())
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *File) Close() error { return nil }

// Recover moves a corrupt document aside and restores the newest valid backup.
func (f *File) Recover(_ context.Context, key string, valid func([]byte) error) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.Path(key)
	corruptPath, err := moveCorruptFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("move corrupt file: %w", err)
	}

	data, backupPath, err := loadLatestValidBackup(path, valid)
	if err == nil {
		if err := writeFile(path, data); err != nil {
			return nil, "", fmt.Errorf("restore backup: %w", err)
		}
		msg := fmt.Sprintf("Recovered corrupt state from %s", filepath.Base(backupPath))
		if corruptPath != "" {
			msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
		}
		return data, msg, nil
	}
	if !errors.Is(err, errNoValidBackup) {
		return nil, "", fmt.Errorf("inspect backups: %w", err)
	}

	msg := "Corrupt state without a valid backup; starting from defaults"
	if corruptPath != "" {
		msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
	}
	return nil, msg, nil
}

// autosave writes safely using a temporary file and an atomic rename.
func autosave(path string, value []byte, now time.Time) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	if err := backup(path, now); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(pretty(value)); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// pretty indents JSON values so the files stay readable; other payloads are
// written unchanged.
func pretty(value []byte) []byte {
	if !json.Valid(value) {
		return value
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, value, "", "  "); err != nil {
		return value
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func backup(path string, now time.Time) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return err
	}

	if last, ok := newestRotatingBackup(path); ok && now.Sub(last) < rotatingBackupInterval {
		return nil
	}
	rotatingPath := fmt.Sprintf("%s.bak.%s", path, now.Format(rotatingStampLayout))
	if err := os.WriteFile(rotatingPath, data, 0o644); err != nil {
		return err
	}

	return pruneRotatingBackups(path)
}

// newestRotatingBackup returns the time encoded in the newest rotating backup
// name. Names sort in time order.
func newestRotatingBackup(path string) (time.Time, bool) {
	files, err := filepath.Glob(path + ".bak.*")
	if err != nil || len(files) == 0 {
		return time.Time{}, false
	}
	sort.Strings(files)
	stamp := strings.TrimPrefix(files[len(files)-1], path+".bak.")
	t, err := time.Parse(rotatingStampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func pruneRotatingBackups(path string) error {
	files, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return err
	}
	if len(files) <= maxRotatingBackups {
		return nil
	}

	sort.Strings(files)
	toDelete := files[:len(files)-maxRotatingBackups]
	for _, old := range toDelete {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func loadLatestValidBackup(path string, valid func([]byte) error) ([]byte, string, error) {
	candidates := make([]string, 0, maxRotatingBackups+1)
	latest := path + ".bak"
	if _, err := os.Stat(latest); err == nil {
		candidates = append(candidates, latest)
	}
	rotating, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return nil, "", err
	}
	candidates = append(candidates, rotating...)
	if len(candidates) == 0 {
		return nil, "", errNoValidBackup
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		iInfo, iErr := os.Stat(candidates[i])
		jInfo, jErr := os.Stat(candidates[j])
		if iErr != nil || jErr != nil {
			return candidates[i] > candidates[j]
		}
		return iInfo.ModTime().After(jInfo.ModTime())
	})

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if valid != nil {
			if err := valid(data); err != nil {
				continue
			}
		} else if !json.Valid(data) {
			continue
		}
		return data, candidate, nil
	}

	return nil, "", errNoValidBackup
}

func moveCorruptFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	timestamp := time.Now().UTC().Format("20060102-150405")
	corruptName := fmt.Sprintf("%s.corrupt-%s%s", name, timestamp, ext)
	corruptPath := filepath.Join(filepath.Dir(path), corruptName)
	if err := os.Rename(path, corruptPath); err != nil {
		return "", err
	}
	return corruptPath, nil
}
