package client

import (
	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/serializer"
	"github.com/ValentinKolb/restkv/rpc/transport"
	httptransport "github.com/ValentinKolb/restkv/rpc/transport/http"
)

// Client is the root handle for a store. It owns the connected transport and the
// serializer and is shared (read-only) by every command, pipeline and transaction
// created from it.
type Client struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// NewClient creates a new client
// The function takes a config, a transport and a serializer as parameters.
// The transport is connected immediately; if that fails no client is returned.
func NewClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*Client, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &Client{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// Connect creates a client for the given base URL and token using the HTTP
// transport and the JSON serializer.
func Connect(endpoint, token string) (*Client, error) {
	return NewClient(
		common.ClientConfig{Endpoint: endpoint, Token: token},
		httptransport.NewHttpClientTransport(),
		serializer.NewJSONSerializer(),
	)
}

// Do creates a command with an arbitrary name. The result is returned as a raw wire value.
func (c *Client) Do(name string, args ...any) *Cmd[common.Value] {
	return newCmd[common.Value](c, name, args...)
}

// Pipeline creates a new, empty pipeline
func (c *Client) Pipeline() *Pipeline {
	return newPipeline(c)
}

// Transaction creates a new, empty transaction
func (c *Client) Transaction() *Transaction {
	return newTransaction(c)
}

// Config returns the configuration the client was created with
func (c *Client) Config() common.ClientConfig {
	return c.config
}

// Close releases idle connections of the transport
func (c *Client) Close() error {
	return c.transport.Close()
}
