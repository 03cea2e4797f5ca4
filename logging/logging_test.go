package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "macsim.log")
	if err := Init(Config{Level: "debug", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(InitDefault)

	Info("file system loaded", zap.String("key", "macos_fs_data_v1"))
	Named("vfs").Debug("item created", zap.String("node_id", "n1"))
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"file system loaded"`, `"key":"macos_fs_data_v1"`, `"logger":"vfs"`, `"node_id":"n1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output:\n%s", want, out)
		}
	}
}

func TestSetLevel(t *testing.T) {
	if err := Init(Config{Level: "info"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(InitDefault)

	SetLevel("warn")
	if Level() != zapcore.WarnLevel {
		t.Fatalf("expected warn, got %v", Level())
	}
	SetLevel("nonsense")
	if Level() != zapcore.WarnLevel {
		t.Fatalf("invalid levels must be ignored, got %v", Level())
	}
}

func TestInitWithoutOutputDiscards(t *testing.T) {
	if err := Init(Config{Level: "bogus"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if L().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("expected a no-op logger")
	}
	if Level() != zapcore.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %v", Level())
	}
}
