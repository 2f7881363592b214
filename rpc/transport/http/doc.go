// Package http implements the transport.IRPCClientTransport interface on top of net/http.
//
// The transport is configured once with common.ClientConfig: the endpoint becomes the
// base URL and the token becomes an "Authorization: Bearer <token>" header that is
// attached to every request. Both are validated in Connect, so a malformed URL or a
// token that can not be sent as a header value fails before any request is made.
//
// Every Send is a single POST to the base URL with the path replaced by the
// requested endpoint ("/", "/pipeline" or "/multi-exec"). There are no retries
// and no timeouts besides the ones of the context and the net/http defaults.
//
// Thread Safety:
//
//	After Connect the transport is read-only and can be shared by any number of
//	goroutines.
package http
