package transport

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/restkv/rpc/common"
)

// Paths of the REST endpoints, relative to the configured base URL
const (
	PathCommand     = "/"
	PathPipeline    = "/pipeline"
	PathTransaction = "/multi-exec"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration.
	// It fails if the endpoint or the token are unusable, leaving the transport unconnected.
	Connect(config common.ClientConfig) error
	// Send posts a request body to the given path and returns the response body.
	// For responses with a non 2xx status the body is returned together with a *StatusError.
	Send(ctx context.Context, path string, req []byte) (resp []byte, err error)
	// URL returns the absolute URL for the given path
	URL(path string) string
	// Close closes the transport connection
	Close() error
}

// StatusError is returned by Send if the server answered with a non 2xx status
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error: %s", e.Status)
}
