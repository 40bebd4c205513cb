package seeds

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/seedctl/internal/project"
	"github.com/danmuck/seedctl/internal/testutil/testlog"
)

func TestStateSaveAndLoad(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()

	if _, ok, err := LoadState(root); ok || err != nil {
		t.Fatalf("expected no marker, ok=%v err=%v", ok, err)
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	want := State{ProjectType: project.Django, Env: "staging", Command: DjangoCommand, SeededAt: at}
	if err := SaveState(root, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := LoadState(root)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.ProjectType != want.ProjectType || got.Env != want.Env || got.Command != want.Command || !got.SeededAt.Equal(at) {
		t.Fatalf("state mismatch: got %+v want %+v", got, want)
	}
	if !got.Matches(project.Django, "staging") || got.Matches(project.Django, "production") {
		t.Fatalf("unexpected Matches result for %+v", got)
	}
}

func TestStateLoadRejectsGarbage(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, StateDir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, StateDir, StateFile), []byte("= nope ="), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadState(root); err == nil {
		t.Fatalf("expected parse error")
	}
}
