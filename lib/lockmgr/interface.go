package lockmgr

import "context"

// ILockManager defines the interface for a lock provider.
type ILockManager interface {
	// AcquireLock acquires a lock for the given key with an optional timeout in seconds (0 = no timeout).
	// Return a boolean indicating whether the lock was acquired, an owner ID, and an error if any.
	AcquireLock(ctx context.Context, key string, timeout uint64) (ok bool, ownerID string, err error)

	// ReleaseLock releases the lock for the given key.
	// Return a boolean indicating whether the lock was released, and an error if any.
	// The method will also return true if the lock did not exist.
	ReleaseLock(ctx context.Context, key string, ownerID string) (ok bool, err error)
}
