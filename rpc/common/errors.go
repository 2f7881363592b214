package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error taxonomy
// --------------------------------------------------------------------------

var (
	// ErrBatchSent is returned when a pipeline or transaction is used after Send
	ErrBatchSent = errors.New("batch has already been sent")
	// ErrEmptyBatch is returned when sending a pipeline or transaction without commands
	ErrEmptyBatch = errors.New("batch contains no commands")
)

// EncodingError reports a caller supplied value that has no wire representation.
// It is always raised locally, before any request is issued.
type EncodingError struct {
	Value  any
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error: cannot encode %T: %s", e.Value, e.Reason)
}

// TransportError reports a failure below the protocol: the request could not be
// sent, the server answered with an unexpected status or the body was not a valid response.
type TransportError struct {
	Op         string // e.g. "POST /pipeline"
	StatusCode int    // 0 if no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is returned when the store answered with an error envelope
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %s", e.Message)
}

// DecodeError reports a result whose shape does not match the declared output type
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: cannot decode into %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
