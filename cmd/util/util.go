package util

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ValentinKolb/restkv/rpc/client"
	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/ValentinKolb/restkv/rpc/serializer"
	"github.com/ValentinKolb/restkv/rpc/transport/http"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// ServiceName is reported to the trace exporter
	ServiceName = "restkv"
)

var Logger = logger.GetLogger("cmd")

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "endpoint"
	cmd.PersistentFlags().String(key, "", WrapString("The base URL of the store (default: $UPSTASH_REDIS_REST_URL)"))

	key = "token"
	cmd.PersistentFlags().String(key, "", WrapString("The bearer token of the store (default: $UPSTASH_REDIS_REST_TOKEN)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("restkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads the client configuration from the environment.
// Flags (and RESTKV_* variables) override the values of the environment.
func GetClientConfig() (*common.ClientConfig, error) {
	conf, err := common.LoadClientConfigFromEnv()
	if err != nil {
		return nil, err
	}

	if endpoint := viper.GetString("endpoint"); endpoint != "" {
		conf.Endpoint = endpoint
	}
	if token := viper.GetString("token"); token != "" {
		conf.Token = token
	}
	if level := viper.GetString("log-level"); level != "" {
		conf.LogLevel = level
	}

	return &conf, nil
}

// NewClient creates a client from the configuration
func NewClient() (*client.Client, error) {
	conf, err := GetClientConfig()
	if err != nil {
		return nil, err
	}

	c, err := client.NewClient(*conf, http.NewHttpClientTransport(), serializer.NewJSONSerializer())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %q: %w", conf.Endpoint, err)
	}
	return c, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// SetupTracing initialises OpenTelemetry tracing if an OTLP endpoint is configured.
// Without endpoint a no-op shutdown function is returned and no provider is registered.
func SetupTracing(ctx context.Context) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	endpoint := viper.GetString("otel-endpoint")
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	Logger.Infof("exporting traces to %s", endpoint)
	return tp.Shutdown, nil
}

// WriteMetrics dumps the client metrics to stderr if the metrics flag is set
func WriteMetrics() {
	if viper.GetBool("metrics") {
		client.WriteMetrics(os.Stderr)
	}
}
