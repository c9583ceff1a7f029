package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendAndTail(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "logs", "editor.log"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	book.Info("opened workflow %s", "orders.yaml")
	book.Warn("unknown step kind %q", "custom_thing")
	book.Error("save failed: %v", os.ErrPermission)
	book.Info("compiled %d steps", 4)
	book.Info("saved workflow")

	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "ERROR") {
		t.Fatalf("first tailed line %q should be the error entry", lines[0])
	}
	if !strings.Contains(lines[2], "saved workflow") {
		t.Fatalf("last tailed line %q should be the final info entry", lines[2])
	}
}

func TestTailMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "never.log"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lines, total := book.Tail(10)
	if lines != nil || total != 0 {
		t.Fatalf("Tail on missing file = (%v, %d), want (nil, 0)", lines, total)
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Warn("ignored")
	book.Error("ignored")
	if book.Path() != "" {
		t.Fatalf("nil Path() = %q, want empty", book.Path())
	}
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil Tail = (%v, %d), want (nil, 0)", lines, total)
	}
}
