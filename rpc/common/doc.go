// Package common provides core data structures and utilities shared across
// the client packages. It defines the wire types, the error taxonomy,
// the client configuration and the logging setup.
//
// The package focuses on:
//   - Wire values and command descriptors
//   - Response envelopes ({"result": ...} or {"error": "..."})
//   - Typed errors for every failure stage of a request
//   - Configuration from environment variables
//   - Custom logging implementation integrated with Dragonboat's logger facade
//
// Key Components:
//
//   - Value: A JSON-compatible wire value (null, string, number, bool or array).
//     Encode converts Go values into wire values, Decode converts them back into
//     any Go type that can hold them.
//
//   - Command: The command descriptor, an ordered list of wire values whose
//     first element is the command name. Appending an argument keeps all
//     previous elements unchanged.
//
//   - Response and TransactionResponse: Parsed envelopes. Parsing is done with
//     gjson and rejects envelopes that contain neither or both of result and error.
//
//   - Errors: EncodingError (argument can not be encoded), TransportError
//     (network failure or unparsable body), RemoteError (the store reported an
//     error), DecodeError (result does not fit the requested type), and the
//     sentinels ErrBatchSent and ErrEmptyBatch.
//
//   - ClientConfig: Base URL and bearer token of the store. The token is never
//     logged; String masks it.
//
//   - Logger: Custom logging implementation that integrates with Dragonboat's
//     logging system while providing consistent formatting across the application.
package common
