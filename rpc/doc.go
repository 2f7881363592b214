// Package rpc provides the client side of a Redis-compatible store that is
// reached over HTTP. It acts as the communication layer between applications
// and the store.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the packages,
//     including wire values, commands, response envelopes, errors, configuration and logging.
//
//   - transport: Network communication abstraction with an HTTP implementation
//     that POSTs request bodies with a bearer token.
//
//   - serializer: Conversion between commands/envelopes and request/response bodies (JSON).
//
//   - client: The client itself, with typed commands, pipelines, transactions and
//     adapters for the store and lock manager interfaces.
package rpc
