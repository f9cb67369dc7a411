package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned by TryLock when another holder owns the key.
var ErrNotAcquired = errors.New("lock held by another request")

// Unlock releases a previously acquired lock.
type Unlock func(ctx context.Context) error

// CaseLocker grants exclusive, non-blocking ownership of a single case id.
type CaseLocker interface {
	// TryLock returns ErrNotAcquired immediately when the case is locked.
	TryLock(ctx context.Context, caseID string) (Unlock, error)
}
