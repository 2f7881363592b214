// Package store provides a high-level interface for key-value storage operations
// with expiration, conditional writes and unified error handling.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations
//   - A structured error type with return codes
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     a key-value store. Applications (like the lock manager in lib/lockmgr) program
//     against this interface and do not need to know how the store is reached.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. The underlying error is kept and can be inspected
//     with errors.As, e.g. to tell a transport failure from an error reported by the store.
//
// Implementations:
//
//	The HTTP client in "github.com/ValentinKolb/restkv/rpc/client" implements
//	IStore (see client.NewRPCStore) purely through store commands:
//
//	- Set, SetE and SetEIfUnset are SET with EX and NX options
//	- SetMany is a transaction of SET commands
//	- Expire is EXPIRE, Delete is DEL, Get is GET, Has is EXISTS
//	- DeleteIfEquals is an EVAL script that compares and deletes atomically
package store
