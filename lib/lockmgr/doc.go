// Package lockmgr implements a locking mechanism using
// key-value stores that implement the store.IStore interface. It provides
// a simple way to coordinate access to shared resources across
// multiple processes.
//
// The lockmgr only ever stores in the provided IStore and has no other internal
// state. Therefore it is safe to be created multiple times on the same store.
// As long as the same store is used every time, all locks will work as expected.
//
// Implementation Approach:
//
//	- Lock Acquisition: Attempts to create a key using SetEIfUnset (SET NX),
//	  which guarantees that only one requester can successfully create the key.
//	  The value is a randomly generated owner ID that identifies the lock holder.
//
//	- Timeouts: Locks can be configured with an optional timeout that
//	  automatically releases the lock after the specified period,
//	  preventing deadlocks if a client crashes.
//
//	- Safe Release: ReleaseLock uses DeleteIfEquals, so the key is only
//	  deleted if the stored value is the owner ID of the caller. The compare
//	  and the delete happen atomically in the store.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager(client.NewRPCStore(c))
//
//	acquired, ownerID, err := locks.AcquireLock(ctx, "resource:123", 30)
//	if err != nil {
//	    // Handle error
//	}
//
//	if acquired {
//	    // Use the resource
//	    // ...
//
//	    released, err := locks.ReleaseLock(ctx, "resource:123", ownerID)
//	}
//
// Performance Impact:
//
//	- AcquireLock: One SetEIfUnset
//	- ReleaseLock: One DeleteIfEquals, followed by one Has if nothing was deleted
package lockmgr
