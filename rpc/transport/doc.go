// Package transport defines the contract between the client and the network layer.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations. A
//     transport knows the base URL and the credentials of the store and posts request
//     bodies to one of the REST endpoints (PathCommand, PathPipeline, PathTransaction).
//
//   - StatusError: Returned together with the body when the store answers with a
//     non 2xx status, so the caller can still look for an error envelope.
//
// The only implementation lives in the http subpackage.
package transport
