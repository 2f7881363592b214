// Package client implements the client for a Redis-compatible store that speaks
// HTTP (a REST API in the style of Upstash). Every operation is a command, an
// ordered list of values headed by the command name, that is POSTed as a JSON
// array to the store. The store answers with an envelope that carries either a
// result or an error message.
//
// The package focuses on:
//   - Typed single commands (Cmd) built from a declarative catalogue (CommandSpec)
//   - Pipelines and transactions that send many commands in one request
//   - Implementations of the store.IStore and lockmgr.ILockManager interfaces
//   - Metrics and tracing for every request
//
// Key Components:
//
//   - Client: The root handle. It owns the connected transport and the serializer
//     and is safe to share between goroutines.
//
//   - Cmd[T]: A single command with the output type T. Exec sends exactly one
//     request to "/" and decodes the result into T. Errors are typed (see the
//     common package): *common.EncodingError, *common.TransportError,
//     *common.RemoteError and *common.DecodeError.
//
//   - CommandSpec[T]: The declaration of a command (name, arity, output type).
//     The package exports one spec per supported command (Get, Set, HDel, ...)
//     and keeps a registry of all of them (Lookup, Commands).
//
//   - Pipeline and Transaction: Single-use builders that queue commands and send
//     them to "/pipeline" (independent execution) or "/multi-exec" (atomic
//     execution). Both return one envelope per queued command.
//
//   - NewRPCStore / NewRPCLockMgr: Adapters for the lib packages.
//
// Usage Example:
//
//	c, err := client.Connect("https://example.upstash.io", token)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	// single command
//	n, err := client.Incr.New(c, "counter").Exec(ctx)
//
//	// pipeline
//	incr := client.Incr.New(c, "x")
//	resps, err := c.Pipeline().Add(incr, client.StrLen.New(c, "name")).Send(ctx)
//	x, err := incr.Decode(resps[0])
//
// Thread Safety:
//
//	Client and commands can be used concurrently. A pipeline or transaction
//	guards its queue with a mutex, but is meant to be built and sent once.
package client
