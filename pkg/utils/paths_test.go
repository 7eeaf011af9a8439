package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveAndEnsureDBPath_CreatesParent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "moods.db")

	got, err := ResolveAndEnsureDBPath(target)
	if err != nil {
		t.Fatalf("ResolveAndEnsureDBPath failed: %v", err)
	}
	if got != target {
		t.Errorf("Expected %s, got %s", target, got)
	}
	if info, err := os.Stat(filepath.Dir(target)); err != nil || !info.IsDir() {
		t.Errorf("Expected parent directory to exist, stat error: %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandHome("~/x/moodtrend.db")
	if err != nil {
		t.Fatalf("ExpandHome failed: %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Errorf("Expected %s under %s", got, home)
	}
	if same, _ := ExpandHome("/abs/path.db"); same != "/abs/path.db" {
		t.Errorf("Expected absolute paths to pass through, got %s", same)
	}
}

func TestGetDefaultDBPathOnly(t *testing.T) {
	if filepath.Base(GetDefaultDBPathOnly()) != "moodtrend.db" {
		t.Errorf("Unexpected default path %s", GetDefaultDBPathOnly())
	}
}
