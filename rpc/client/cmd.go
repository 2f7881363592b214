package client

import (
	"context"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/transport"
)

// Commander is implemented by everything that can be queued in a pipeline or a
// transaction. It only exposes the wire form; the typed output of a command is
// not known to a batch, which is why batches return raw envelopes.
type Commander interface {
	Command() (common.Command, error)
}

// Cmd is a single command with the declared output type T.
// It is built by a CommandSpec (or Client.Do), optionally extended with
// Arg/Args/Pair and then consumed by Exec, Send or by adding it to a batch.
//
// An argument that can not be encoded is remembered; it is returned by
// Command, Send and Exec before any request is made.
type Cmd[T any] struct {
	client  *Client
	command common.Command
	err     error
}

func newCmd[T any](c *Client, name string, args ...any) *Cmd[T] {
	cmd := &Cmd[T]{
		client:  c,
		command: common.NewCommand(name),
	}
	return cmd.Args(args...)
}

// Arg appends one optional argument
func (cmd *Cmd[T]) Arg(v any) *Cmd[T] {
	if cmd.err == nil {
		cmd.err = cmd.command.Append(v)
	}
	return cmd
}

// Args appends several arguments in order, e.g. the elements of a collection
func (cmd *Cmd[T]) Args(vs ...any) *Cmd[T] {
	if cmd.err == nil && len(vs) > 0 {
		cmd.err = cmd.command.AppendAll(vs...)
	}
	return cmd
}

// Pair appends a key/value pair
func (cmd *Cmd[T]) Pair(k, v any) *Cmd[T] {
	if cmd.err == nil {
		cmd.err = cmd.command.AppendPair(k, v)
	}
	return cmd
}

// Command returns a copy of the wire form of the command
func (cmd *Cmd[T]) Command() (common.Command, error) {
	if cmd.err != nil {
		return common.Command{}, cmd.err
	}
	return cmd.command.Clone(), nil
}

// Path returns the path single commands are sent to
func (cmd *Cmd[T]) Path() string {
	return transport.PathCommand
}

// URL returns the absolute URL the command is sent to
func (cmd *Cmd[T]) URL() string {
	return cmd.client.transport.URL(transport.PathCommand)
}

// Send executes the command and returns the raw envelope.
// A failed envelope is not an error here; use Exec or Response.Err for that.
func (cmd *Cmd[T]) Send(ctx context.Context) (common.Response, error) {
	if cmd.err != nil {
		return common.Response{}, cmd.err
	}
	return cmd.client.execute(ctx, cmd.command)
}

// Exec executes the command and decodes the result into T.
// It fails with a *common.RemoteError if the store reports an error and with a
// *common.DecodeError if the result does not fit into T.
func (cmd *Cmd[T]) Exec(ctx context.Context) (T, error) {
	resp, err := cmd.Send(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return cmd.Decode(resp)
}

// Decode decodes an envelope produced by this command, e.g. an entry of a pipeline response
func (cmd *Cmd[T]) Decode(resp common.Response) (T, error) {
	var out T
	if err := resp.Decode(&out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
