package store

import (
	"context"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a key–value store.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
//
// Expiration times are given in seconds, a zero value means the key never expires.
type IStore interface {
	// Set inserts or updates a key–value pair. An existing expiration is removed.
	Set(ctx context.Context, key string, value []byte) (err error)
	// SetE inserts or updates a key–value pair that expires after expireIn seconds.
	SetE(ctx context.Context, key string, value []byte, expireIn uint64) (err error)
	// SetEIfUnset inserts a key–value pair if the key does not exist.
	// If the key already exists, the old value is not updated, no matter the value of expireIn.
	// The boolean return value indicates whether the value was set.
	SetEIfUnset(ctx context.Context, key string, value []byte, expireIn uint64) (set bool, err error)
	// SetMany inserts or updates all entries atomically.
	SetMany(ctx context.Context, entries []Entry) (err error)
	// Expire lets the key expire after expireIn seconds. A zero value expires the key immediately.
	// The boolean return value indicates whether the key existed.
	Expire(ctx context.Context, key string, expireIn uint64) (found bool, err error)
	// Delete deletes a key–value pair. No error is returned if the key does not exist.
	Delete(ctx context.Context, key string) (err error)
	// DeleteIfEquals atomically deletes the key if its current value equals value.
	// The boolean return value indicates whether the key was deleted.
	DeleteIfEquals(ctx context.Context, key string, value []byte) (deleted bool, err error)
	// Get return the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(ctx context.Context, key string) (value []byte, loaded bool, err error)
	// Has returns whether a key exists in the store.
	Has(ctx context.Context, key string) (loaded bool, err error)
}

// Entry is a key–value pair written by IStore.SetMany
type Entry struct {
	Key      string
	Value    []byte
	ExpireIn uint64
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying error (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	case RetCUnexpectedResult:
		errorCode = "UnexpectedResult"
	default:
		errorCode = "Unknown"
	}

	if e.Err != nil {
		return fmt.Sprintf("KVStoreError (code %s): %s: %v", errorCode, e.Msg, e.Err)
	}
	return fmt.Sprintf("KVStoreError (code %s): %s", errorCode, e.Msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCInvalidOperation                // 2: Invalid operation (e.g. an invalid argument).
	RetCUnexpectedResult                // 3: The store answered with an unexpected result.
)
