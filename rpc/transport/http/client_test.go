package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  common.ClientConfig
		wantErr bool
	}{
		{name: "valid", config: common.ClientConfig{Endpoint: "https://example.upstash.io", Token: "secret"}},
		{name: "missing endpoint", config: common.ClientConfig{Token: "secret"}, wantErr: true},
		{name: "relative endpoint", config: common.ClientConfig{Endpoint: "example.upstash.io", Token: "secret"}, wantErr: true},
		{name: "unsupported scheme", config: common.ClientConfig{Endpoint: "redis://example:6379", Token: "secret"}, wantErr: true},
		{name: "malformed endpoint", config: common.ClientConfig{Endpoint: "http://[::1", Token: "secret"}, wantErr: true},
		{name: "token with newline", config: common.ClientConfig{Endpoint: "https://example.upstash.io", Token: "sec\nret"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewHttpClientTransport()
			err := tr.Connect(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				// a failed connect leaves no usable transport behind
				_, sendErr := tr.Send(context.Background(), transport.PathCommand, []byte(`["PING"]`))
				assert.Error(t, sendErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSendPostsWithBearerToken(t *testing.T) {
	var gotPath, gotAuth, gotContentType, gotBody, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"result":"PONG"}`))
	}))
	defer server.Close()

	tr := NewHttpClientTransport()
	require.NoError(t, tr.Connect(common.ClientConfig{Endpoint: server.URL, Token: "secret"}))
	defer tr.Close()

	for _, path := range []string{transport.PathCommand, transport.PathPipeline, transport.PathTransaction} {
		resp, err := tr.Send(context.Background(), path, []byte(`["PING"]`))
		require.NoError(t, err)
		assert.Equal(t, `{"result":"PONG"}`, string(resp))
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, path, gotPath)
		assert.Equal(t, "Bearer secret", gotAuth)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, `["PING"]`, gotBody)
	}
}

func TestSendReturnsBodyWithStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"ERR unknown command"}`))
	}))
	defer server.Close()

	tr := NewHttpClientTransport()
	require.NoError(t, tr.Connect(common.ClientConfig{Endpoint: server.URL, Token: "secret"}))

	resp, err := tr.Send(context.Background(), transport.PathCommand, []byte(`["NOPE"]`))
	var statusErr *transport.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, `{"error":"ERR unknown command"}`, string(resp))
}

func TestSendHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":1}`))
	}))
	defer server.Close()

	tr := NewHttpClientTransport()
	require.NoError(t, tr.Connect(common.ClientConfig{Endpoint: server.URL, Token: "secret"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.Send(ctx, transport.PathCommand, []byte(`["PING"]`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestURLReplacesPath(t *testing.T) {
	tr := NewHttpClientTransport()
	require.NoError(t, tr.Connect(common.ClientConfig{Endpoint: "https://example.upstash.io/ignored?x=1", Token: "secret"}))
	assert.Equal(t, "https://example.upstash.io/pipeline?x=1", tr.URL(transport.PathPipeline))
	assert.Equal(t, "https://example.upstash.io/?x=1", tr.URL(transport.PathCommand))
}
