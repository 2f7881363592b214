package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/transport"
)

// Pipeline sends several commands in one request to the pipeline endpoint.
// The commands are executed in order but not atomically; every command gets its
// own envelope, so a failed command does not affect the others.
//
// A pipeline can be sent once. Create it with Client.Pipeline.
type Pipeline struct {
	*batch
}

func newPipeline(c *Client) *Pipeline {
	return &Pipeline{batch: newBatch(c, transport.PathPipeline)}
}

// Add queues commands, returning the pipeline for chaining
func (p *Pipeline) Add(cmds ...Commander) *Pipeline {
	p.add(cmds)
	return p
}

// AddCommands queues a slice of commands
func (p *Pipeline) AddCommands(cmds []Commander) *Pipeline {
	p.add(cmds)
	return p
}

// Len returns the number of queued commands
func (p *Pipeline) Len() int {
	return p.len()
}

// Err returns the first error that occurred while adding commands
func (p *Pipeline) Err() error {
	return p.firstErr()
}

// URL returns the absolute URL the pipeline is sent to
func (p *Pipeline) URL() string {
	return p.client.transport.URL(p.path)
}

// Send executes all queued commands and returns one envelope per command in the
// order they were added. Entries can be decoded with Cmd.Decode of the command
// at the same position.
func (p *Pipeline) Send(ctx context.Context) (resps []common.Response, err error) {
	cmds, err := p.drain()
	if err != nil {
		observeErrors(endpointName(p.path), errorKind(err), 1)
		return nil, err
	}

	ctx, req := startRequest(ctx, "pipeline", p.path, len(cmds))
	defer func() {
		req.finish(err, countFailed(resps))
	}()

	body, err := p.client.serializer.SerializeBatch(cmds)
	if err != nil {
		return nil, &common.EncodingError{Value: "pipeline", Reason: err.Error()}
	}

	err = p.client.roundTrip(ctx, p.path, body, func(b []byte) error {
		return p.client.serializer.DeserializeResponses(b, &resps)
	})
	if err != nil {
		return nil, err
	}

	if len(resps) != len(cmds) {
		return nil, &common.DecodeError{
			Target: "[]common.Response",
			Err:    fmt.Errorf("got %d envelope(s) for %d command(s)", len(resps), len(cmds)),
		}
	}
	return resps, nil
}
