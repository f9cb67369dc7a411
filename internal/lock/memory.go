package lock

import (
	"context"
	"sync"
)

// MemoryLocker is a process-local CaseLocker.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker creates a locker with no held keys.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// TryLock implements CaseLocker.
func (l *MemoryLocker) TryLock(_ context.Context, caseID string) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[caseID]; busy {
		return nil, ErrNotAcquired
	}
	l.held[caseID] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, caseID)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
