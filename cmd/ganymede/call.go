package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/gateway"
	"mercator-hq/ganymede/pkg/stream"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/token"
)

var callFlags struct {
	method    string
	body      string
	category  string
	tokenFlag string
	streaming bool
	timeout   time.Duration
}

var callCmd = &cobra.Command{
	Use:   "call <endpoint>",
	Short: "Issue one request through the resilience pipeline",
	Long: `Issue a single request to the configured gateway and print the JSON
response. The request passes the full pipeline: rate-limit admission,
classified retries with backoff, and offline queueing on connectivity
failures.

Examples:
  # GET a status endpoint
  ganymede call /v1/status

  # POST with an inline JSON body and a rate-limit category
  ganymede call /v1/analyze --method POST --body '{"text":"..."}' --category AI_ANALYSIS

  # Consume an NDJSON stream, one JSON value per line
  ganymede call /v1/events --stream`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&callFlags.method, "method", "X", "GET", "HTTP method")
	callCmd.Flags().StringVarP(&callFlags.body, "body", "d", "", "JSON request body")
	callCmd.Flags().StringVar(&callFlags.category, "category", "", "rate-limit category")
	callCmd.Flags().StringVar(&callFlags.tokenFlag, "token", "", "auth token (defaults to GANYMEDE_TOKEN)")
	callCmd.Flags().BoolVar(&callFlags.streaming, "stream", false, "consume the endpoint as an NDJSON stream")
	callCmd.Flags().DurationVar(&callFlags.timeout, "timeout", 5*time.Minute, "overall deadline for the call")
}

func runCall(cmd *cobra.Command, args []string) error {
	endpoint := args[0]

	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
		cfg.Telemetry.Logging.Format = "text"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return err
	}

	authToken := callFlags.tokenFlag
	if authToken == "" {
		authToken = os.Getenv("GANYMEDE_TOKEN")
	}

	client, err := gateway.New(cfg, gateway.ClientOptions{
		Tokens: token.Static(authToken),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	opts := gateway.RequestOptions{
		Method:        callFlags.method,
		RateLimitType: callFlags.category,
	}
	if callFlags.body != "" {
		if !json.Valid([]byte(callFlags.body)) {
			return fmt.Errorf("request body is not valid JSON")
		}
		opts.Body = json.RawMessage(callFlags.body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callFlags.timeout)
	defer cancel()

	if callFlags.streaming {
		decoder, err := client.Stream(ctx, endpoint, opts)
		if err != nil {
			return err
		}
		defer decoder.Close()
		return printStream(ctx, decoder)
	}

	result, err := client.Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printStream(ctx context.Context, decoder *stream.Decoder) error {
	for {
		msg, err := decoder.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := printJSON(msg); err != nil {
			return err
		}
	}
}

func printJSON(raw json.RawMessage) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		// Not a JSON document; print as-is.
		fmt.Println(string(raw))
		return nil
	}
	fmt.Println(out.String())
	return nil
}
