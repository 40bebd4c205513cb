package seeds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/seedctl/internal/testutil/testlog"
)

func TestLeaseRejectsConcurrentHolder(t *testing.T) {
	testlog.Start(t)
	l := NewLeases()
	dir := t.TempDir()

	release, err := l.Acquire(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := l.Acquire(context.Background(), dir, false); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := l.Acquire(context.Background(), t.TempDir(), false); err != nil {
		t.Fatalf("other paths should not be blocked: %v", err)
	}
	release()
	release()
	if l.Held(dir) {
		t.Fatalf("lease should be released")
	}
	again, err := l.Acquire(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	again()
}

func TestLeaseKeySharesSpellings(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	proj := filepath.Join(root, "proj")
	if err := os.Mkdir(proj, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	l := NewLeases()
	release, err := l.Acquire(context.Background(), proj, false)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()
	t.Chdir(root)
	if !l.Held("proj") || !l.Held("./proj/") {
		t.Fatalf("relative spellings should share the lease")
	}
}

func TestLeaseWaitQueuesUntilRelease(t *testing.T) {
	testlog.Start(t)
	l := NewLeases()
	dir := t.TempDir()
	release, err := l.Acquire(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	acquired := make(chan func(), 1)
	go func() {
		next, err := l.Acquire(context.Background(), dir, true)
		if err != nil {
			close(acquired)
			return
		}
		acquired <- next
	}()

	select {
	case <-acquired:
		t.Fatalf("second caller should wait")
	case <-time.After(50 * time.Millisecond):
	}
	release()

	select {
	case next, ok := <-acquired:
		if !ok {
			t.Fatalf("waiter failed to acquire")
		}
		next()
	case <-time.After(2 * time.Second):
		t.Fatalf("waiter never acquired the lease")
	}
}

func TestLeaseWaitHonorsContext(t *testing.T) {
	testlog.Start(t)
	l := NewLeases()
	dir := t.TempDir()
	release, _ := l.Acquire(context.Background(), dir, true)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(ctx, dir, true); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
