package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/transport"
)

// Transaction sends several commands in one request to the multi-exec endpoint.
// The store executes them atomically: either all run or none.
// If the transaction as a whole is rejected Send returns a *common.RemoteError,
// errors of single commands are reported in their envelopes.
//
// A transaction can be sent once. Create it with Client.Transaction.
type Transaction struct {
	*batch
}

func newTransaction(c *Client) *Transaction {
	return &Transaction{batch: newBatch(c, transport.PathTransaction)}
}

// Add queues commands, returning the transaction for chaining
func (t *Transaction) Add(cmds ...Commander) *Transaction {
	t.add(cmds)
	return t
}

// AddCommands queues a slice of commands
func (t *Transaction) AddCommands(cmds []Commander) *Transaction {
	t.add(cmds)
	return t
}

// Len returns the number of queued commands
func (t *Transaction) Len() int {
	return t.len()
}

// Err returns the first error that occurred while adding commands
func (t *Transaction) Err() error {
	return t.firstErr()
}

// URL returns the absolute URL the transaction is sent to
func (t *Transaction) URL() string {
	return t.client.transport.URL(t.path)
}

// Send executes all queued commands atomically and returns one envelope per command
func (t *Transaction) Send(ctx context.Context) (resps []common.Response, err error) {
	cmds, err := t.drain()
	if err != nil {
		observeErrors(endpointName(t.path), errorKind(err), 1)
		return nil, err
	}

	ctx, req := startRequest(ctx, "multi-exec", t.path, len(cmds))
	defer func() {
		req.finish(err, countFailed(resps))
	}()

	body, err := t.client.serializer.SerializeBatch(cmds)
	if err != nil {
		return nil, &common.EncodingError{Value: "multi-exec", Reason: err.Error()}
	}

	var tx common.TransactionResponse
	err = t.client.roundTrip(ctx, t.path, body, func(b []byte) error {
		return t.client.serializer.DeserializeTransaction(b, &tx)
	})
	if err != nil {
		return nil, err
	}

	if tx.Failed {
		return nil, tx.Err()
	}
	if len(tx.Results) != len(cmds) {
		return nil, &common.DecodeError{
			Target: "common.TransactionResponse",
			Err:    fmt.Errorf("got %d envelope(s) for %d command(s)", len(tx.Results), len(cmds)),
		}
	}
	return tx.Results, nil
}
