package client

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Request metrics
// --------------------------------------------------------------------------

// Error kinds used as label values
const (
	errKindEncoding  = "encoding"
	errKindTransport = "transport"
	errKindRemote    = "remote"
	errKindDecode    = "decode"
	errKindUsage     = "usage"
)

// WriteMetrics writes all client metrics in the Prometheus text format to w
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, false)
}

// observeRequest records one finished request (or batch) against an endpoint
func observeRequest(endpoint string, commands int, start time.Time, err error) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`restkv_requests_total{endpoint=%q}`, endpoint)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`restkv_request_duration_seconds{endpoint=%q}`, endpoint)).Update(time.Since(start).Seconds())
	metrics.GetOrCreateHistogram(fmt.Sprintf(`restkv_request_commands{endpoint=%q}`, endpoint)).Update(float64(commands))
	if err != nil {
		observeErrors(endpoint, errorKind(err), 1)
	}
}

// observeErrors counts errors of one kind, e.g. failed entries of a pipeline
func observeErrors(endpoint, kind string, n int) {
	if n <= 0 {
		return
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`restkv_request_errors_total{endpoint=%q,kind=%q}`, endpoint, kind)).Add(n)
}

// errorKind maps an error to its place in the error taxonomy
func errorKind(err error) string {
	var (
		encodingErr  *common.EncodingError
		transportErr *common.TransportError
		remoteErr    *common.RemoteError
		decodeErr    *common.DecodeError
	)
	switch {
	case errors.As(err, &encodingErr):
		return errKindEncoding
	case errors.As(err, &transportErr):
		return errKindTransport
	case errors.As(err, &remoteErr):
		return errKindRemote
	case errors.As(err, &decodeErr):
		return errKindDecode
	default:
		return errKindUsage
	}
}
