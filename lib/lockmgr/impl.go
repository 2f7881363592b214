package lockmgr

import (
	"context"

	"github.com/ValentinKolb/restkv/lib/store"
)

type lockMgrImpl struct {
	store store.IStore
}

func NewLockManager(store store.IStore) ILockManager {
	return &lockMgrImpl{
		store: store,
	}
}

func (lm *lockMgrImpl) AcquireLock(ctx context.Context, key string, timeout uint64) (bool, string, error) {
	// Generate the owner ID (256 bit random value)
	ownerID, err := generateOwnerID()
	if err != nil {
		return false, "", err
	}

	// Try to acquire the lock (by setting the value only if it doesn't exist - atomic CAS operation)
	set, err := lm.store.SetEIfUnset(ctx, key, []byte(ownerID), timeout)
	if err != nil || !set {
		// the lock is held by someone else
		return false, "", err
	}
	return true, ownerID, nil
}

func (lm *lockMgrImpl) ReleaseLock(ctx context.Context, key string, ownerID string) (bool, error) {
	// Release the lock if it is owned by us (atomic compare-and-delete)
	deleted, err := lm.store.DeleteIfEquals(ctx, key, []byte(ownerID))
	if err != nil || deleted {
		return deleted, err
	}

	// Not deleted: either the lock does not exist (anymore) or someone else owns it
	found, err := lm.store.Has(ctx, key)
	if err != nil {
		return false, err
	}
	return !found, nil
}
