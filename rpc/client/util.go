package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/transport"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	Logger = logger.GetLogger("rpc")

	tracer = otel.Tracer("github.com/ValentinKolb/restkv/rpc/client")
)

// endpointName returns the label used for a path in logs, spans and metrics
func endpointName(path string) string {
	switch path {
	case transport.PathPipeline:
		return "pipeline"
	case transport.PathTransaction:
		return "multi-exec"
	default:
		return "command"
	}
}

// request tracks one round trip for tracing, metrics and logging
type request struct {
	id       string
	endpoint string
	commands int
	start    time.Time
	span     trace.Span
}

// startRequest opens a client span for a round trip to path.
// name is the command name for single commands and the endpoint name for batches.
func startRequest(ctx context.Context, name, path string, commands int) (context.Context, *request) {
	r := &request{
		id:       uuid.NewString(),
		endpoint: endpointName(path),
		commands: commands,
		start:    time.Now(),
	}
	ctx, r.span = tracer.Start(ctx, "restkv "+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", name),
			attribute.String("restkv.endpoint", r.endpoint),
			attribute.String("restkv.request_id", r.id),
			attribute.Int("restkv.commands", commands),
		),
	)
	Logger.Debugf("[%s] %s: sending %d command(s) (%s)", r.id, r.endpoint, commands, name)
	return ctx, r
}

// finish closes the span and records the metrics of the round trip.
// remoteErrors is the number of failed envelopes in an otherwise successful response.
func (r *request) finish(err error, remoteErrors int) {
	observeRequest(r.endpoint, r.commands, r.start, err)
	observeErrors(r.endpoint, errKindRemote, remoteErrors)

	if remoteErrors > 0 {
		r.span.SetAttributes(attribute.Int("restkv.remote_errors", remoteErrors))
	}
	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
		Logger.Debugf("[%s] %s: failed after %s: %v", r.id, r.endpoint, time.Since(r.start), err)
	} else {
		Logger.Debugf("[%s] %s: done after %s", r.id, r.endpoint, time.Since(r.start))
	}
	r.span.End()
}

// roundTrip posts body to path and hands the response body to parse.
// It is the only place where the client touches the network. Errors are classified as:
//   - transport failures, unparsable bodies and non 2xx responses without an
//     error envelope: *common.TransportError
//   - non 2xx responses carrying an error envelope: *common.RemoteError, unless
//     parse accepts the failed envelope itself (single commands)
func (c *Client) roundTrip(ctx context.Context, path string, body []byte, parse func([]byte) error) error {
	op := "POST " + path

	respBody, err := c.transport.Send(ctx, path, body)
	var statusErr *transport.StatusError
	if err != nil && !errors.As(err, &statusErr) {
		return &common.TransportError{Op: op, Err: err}
	}

	parseErr := parse(respBody)
	if statusErr == nil {
		if parseErr != nil {
			return &common.TransportError{Op: op, Err: fmt.Errorf("malformed response body: %w", parseErr)}
		}
		return nil
	}

	// the store rejects whole requests (bad token, malformed command, ...) with an
	// error envelope. Any other body of a non 2xx response is not trusted.
	envelope, envErr := common.ParseResponse(respBody)
	if envErr != nil || !envelope.Failed {
		return &common.TransportError{Op: op, StatusCode: statusErr.StatusCode, Err: statusErr}
	}
	if parseErr != nil {
		return envelope.Err()
	}
	return nil
}

// execute sends a single command and returns its envelope
func (c *Client) execute(ctx context.Context, cmd common.Command) (resp common.Response, err error) {
	ctx, req := startRequest(ctx, cmd.Name(), transport.PathCommand, 1)
	defer func() {
		remote := 0
		if err == nil && resp.Failed {
			remote = 1
		}
		req.finish(err, remote)
	}()

	body, err := c.serializer.SerializeCommand(cmd)
	if err != nil {
		return common.Response{}, &common.EncodingError{Value: cmd.Name(), Reason: err.Error()}
	}

	err = c.roundTrip(ctx, transport.PathCommand, body, func(b []byte) error {
		return c.serializer.DeserializeResponse(b, &resp)
	})
	if err != nil {
		return common.Response{}, err
	}
	return resp, nil
}

// countFailed returns the number of failed envelopes
func countFailed(resps []common.Response) int {
	n := 0
	for _, r := range resps {
		if r.Failed {
			n++
		}
	}
	return n
}
