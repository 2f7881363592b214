package common

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/net/http/httpguts"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds everything needed to talk to a store over its REST API
type ClientConfig struct {
	// Endpoint is the base URL of the store, e.g. https://eu1-example.upstash.io
	Endpoint string `env:"UPSTASH_REDIS_REST_URL"`
	// Token is the bearer token sent with every request. It is never logged.
	Token string `env:"UPSTASH_REDIS_REST_TOKEN"`

	// Logging configuration
	LogLevel string `env:"RESTKV_LOG_LEVEL" envDefault:"info"`
}

// LoadClientConfigFromEnv reads the client configuration from environment variables
func LoadClientConfigFromEnv() (ClientConfig, error) {
	var conf ClientConfig
	if err := env.Parse(&conf); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return conf, nil
}

// BaseURL parses and validates the endpoint. Only absolute http(s) URLs are accepted.
func (c *ClientConfig) BaseURL() (*url.URL, error) {
	if c.Endpoint == "" {
		return nil, fmt.Errorf("no endpoint configured")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	return u, nil
}

// AuthorizationHeader returns the value of the Authorization header.
// It fails if the token can not be sent as a header value.
func (c *ClientConfig) AuthorizationHeader() (string, error) {
	value := "Bearer " + c.Token
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", fmt.Errorf("token contains characters that are not allowed in a header")
	}
	return value, nil
}

// Validate checks the endpoint and the token
func (c *ClientConfig) Validate() error {
	if _, err := c.BaseURL(); err != nil {
		return err
	}
	_, err := c.AuthorizationHeader()
	return err
}

// String returns a formatted string representation of the client configuration.
// The token is masked.
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Token", maskToken(c.Token))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

func maskToken(token string) string {
	if token == "" {
		return "<unset>"
	}
	return "<redacted>"
}
