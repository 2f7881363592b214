package client

import (
	"github.com/ValentinKolb/restkv/lib/lockmgr"
)

// NewRPCLockMgr creates a lockmgr.ILockManager whose locks live in the store the
// client is connected to. See NewRPCStore.
func NewRPCLockMgr(c *Client) lockmgr.ILockManager {
	return lockmgr.NewLockManager(NewRPCStore(c))
}
