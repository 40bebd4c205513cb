package seeds

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
)

var ErrBusy = errors.New("seeding in progress")

// Leases serializes seed runs per project directory within one process.
type Leases struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewLeases() *Leases {
	return &Leases{held: make(map[string]chan struct{})}
}

// Acquire takes the lease for path. With wait unset a held lease fails fast
// with ErrBusy; otherwise the caller queues until the lease frees or ctx ends.
// The returned release func is safe to call more than once.
func (l *Leases) Acquire(ctx context.Context, path string, wait bool) (func(), error) {
	key := LeaseKey(path)
	for {
		l.mu.Lock()
		done, busy := l.held[key]
		if !busy {
			done = make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(done)
				})
			}, nil
		}
		l.mu.Unlock()

		if !wait {
			return nil, ErrBusy
		}
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Held reports whether a lease is currently taken for path.
func (l *Leases) Held(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[LeaseKey(path)]
	return ok
}

// LeaseKey normalizes path so that relative, absolute, and symlinked
// spellings of one directory share a lease.
func LeaseKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
