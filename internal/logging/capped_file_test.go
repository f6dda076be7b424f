package logging

import (
	"os"
	"path/filepath"
	"testing"

	"casino-bot/internal/config"
)

func TestCappedFileStartsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	w, err := openCappedFile(path, 1)
	if err != nil {
		t.Fatalf("open capped file: %v", err)
	}
	defer w.Close()

	chunk := make([]byte, 400*1024)
	for i := 0; i < 4; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1<<20 {
		t.Fatalf("expected log <= 1MB, got %d", info.Size())
	}
}

func TestInitWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	Init(config.LogConfig{Level: "info", File: path, FileMaxMB: 1})
	defer Close()

	if _, err := Writer().Write([]byte("hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(b) != "hello\n" {
		t.Fatalf("unexpected log content %q", b)
	}
}
