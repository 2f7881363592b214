package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/http")

// NewHttpClientTransport creates a transport that uses a default net/http client
func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

// NewHttpClientTransportWithClient creates a transport that sends all requests with the given client
func NewHttpClientTransportWithClient(client *http.Client) transport.IRPCClientTransport {
	return &httpClientTransport{client: client}
}

type httpClientTransport struct {
	baseURL       *url.URL
	authorization string
	client        *http.Client
	connected     bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	// Parse the base URL
	baseURL, err := config.BaseURL()
	if err != nil {
		return err
	}

	// Build the Authorization header (the value is never logged)
	authorization, err := config.AuthorizationHeader()
	if err != nil {
		return err
	}

	// Create client with default transport
	if t.client == nil {
		t.client = &http.Client{}
	}

	t.baseURL = baseURL
	t.authorization = authorization
	t.connected = true

	Logger.Infof("Using REST endpoint %s", baseURL.Redacted())
	return nil
}

func (t *httpClientTransport) Send(ctx context.Context, path string, req []byte) (resp []byte, err error) {
	// Check if the transport is initialized
	if !t.connected {
		return nil, fmt.Errorf("http transport not initialized")
	}

	// Create the request
	requestURL := t.URL(path)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Authorization", t.authorization)
	httpRequest.Header.Set("Content-Type", "application/json")

	Logger.Debugf("POST %s (%d bytes)", path, len(req))

	// Send the request, exactly once
	httpResponse, err := t.client.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Read the response body
	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, err
	}

	// The store reports command errors with 4xx statuses and an error envelope,
	// so the body is handed back alongside the status error
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return body, &transport.StatusError{StatusCode: httpResponse.StatusCode, Status: httpResponse.Status}
	}

	return body, nil
}

func (t *httpClientTransport) URL(path string) string {
	if t.baseURL == nil {
		return path
	}
	u := *t.baseURL
	u.Path = path
	u.RawPath = ""
	return u.String()
}

func (t *httpClientTransport) Close() error {
	if t.client != nil {
		t.client.CloseIdleConnections()
	}
	t.connected = false
	return nil
}
