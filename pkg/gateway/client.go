package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/classify"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/queue"
	"mercator-hq/ganymede/pkg/ratelimit"
	"mercator-hq/ganymede/pkg/retry"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/token"
)

// maxErrorBodyBytes bounds how much of an upstream error body is carried
// on an HTTPError.
const maxErrorBodyBytes = 2048

// QueuedRequest is the replayable form of a request held in the offline
// queue. The body is captured as raw bytes at enqueue time so redelivery
// sends exactly what the original dispatch sent.
type QueuedRequest struct {
	// Endpoint is the request path, relative to the client's base URL.
	Endpoint string `json:"endpoint"`

	// Method is the normalized HTTP method.
	Method string `json:"method"`

	// Body is the encoded request body, if any.
	Body json.RawMessage `json:"body,omitempty"`

	// Headers are the per-request headers.
	Headers map[string]string `json:"headers,omitempty"`

	// Category is the rate-limit category the request was admitted under.
	Category string `json:"category"`
}

// ClientOptions contains the injectable collaborators for a Client.
// Every field is optional.
type ClientOptions struct {
	// Tokens supplies the auth credential attached to state-changing
	// requests. Nil dispatches without Authorization headers.
	Tokens token.Provider

	// Logger receives request lifecycle events. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics receives request, retry, and queue instrumentation. Nil
	// disables instrumentation.
	Metrics *metrics.Collector

	// HTTPClient overrides the pooled client built from the HTTP
	// configuration. Used by tests to inject transports.
	HTTPClient *http.Client

	// QueueStore overrides the offline queue journal. When nil and
	// queue.persist is enabled, a SQLite journal is opened at the
	// configured path and owned by the client.
	QueueStore queue.Store[QueuedRequest]
}

// Client is the resilient gateway client. It owns one rate limiter, one
// retry policy, and one offline queue; concurrent requests share all
// three. Construct with New and release with Close.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	policy     retry.Policy
	queue      *queue.Queue[QueuedRequest]
	tokens     token.Provider
	logger     *slog.Logger
	metrics    *metrics.Collector
	sweeper    *Sweeper

	// ownedStore is non-nil when the client opened the journal itself and
	// must close it.
	ownedStore queue.Store[QueuedRequest]

	healthMu sync.RWMutex
	health   Health
}

// New creates a client from a validated configuration. Defaults are
// applied to zero-valued fields before validation.
func New(cfg *config.Config, opts ClientOptions) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gateway")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := &http.Transport{
			MaxIdleConns:        cfg.HTTP.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.HTTP.IdleConnTimeout,
			ForceAttemptHTTP2:   true,
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   cfg.HTTP.Timeout,
		}
	}

	store := opts.QueueStore
	var ownedStore queue.Store[QueuedRequest]
	if store == nil && cfg.Queue.Persist {
		journal, err := queue.NewSQLiteStore[QueuedRequest](cfg.Queue.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open queue journal: %w", err)
		}
		store = journal
		ownedStore = journal
	}

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    ratelimit.New(categoryTable(cfg.Categories)),
		policy:     retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, BaseDelay: cfg.Retry.BaseDelay},
		tokens:     opts.Tokens,
		logger:     logger,
		metrics:    opts.Metrics,
		ownedStore: ownedStore,
		health: Health{
			Healthy:   true, // start optimistic
			LastCheck: time.Now(),
		},
	}

	c.queue = queue.New(c.redeliver, queue.Options[QueuedRequest]{
		Store:         store,
		Logger:        logger,
		OnDepthChange: c.metrics.UpdateQueueDepth,
	})

	if cfg.Queue.FlushSchedule != "" {
		sweeper, err := newSweeper(cfg.Queue.FlushSchedule, c, logger)
		if err != nil {
			if ownedStore != nil {
				ownedStore.Close()
			}
			return nil, fmt.Errorf("invalid queue flush schedule: %w", err)
		}
		c.sweeper = sweeper
		sweeper.Start()
	}

	return c, nil
}

// Request issues a single request through the full resilience pipeline.
//
// The request is validated, admitted against its rate-limit category,
// and dispatched with retries. A category whose window is full rejects
// immediately with a RateLimitExceededError and no dispatch. When
// retries exhaust on a connectivity failure the request is handed to
// the offline queue and this call settles with the redelivery outcome;
// cancelling ctx abandons the wait but leaves the request queued.
//
// Every returned error is annotated with its classified Outcome.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	opts.normalize()
	if err := opts.validate(endpoint); err != nil {
		return nil, classify.Annotate(err)
	}

	body, err := opts.encodeBody()
	if err != nil {
		return nil, classify.Annotate(err)
	}

	category := opts.RateLimitType
	if !c.limiter.Admit(category) {
		status := c.limiter.Status(category)
		c.metrics.RecordRateLimitRejection(category)
		c.logger.Warn("request rejected by rate limiter",
			"endpoint", endpoint,
			"category", category,
			"limit", status.Limit,
			"retry_after", status.RetryAfter,
		)
		return nil, classify.Annotate(&classify.RateLimitExceededError{
			Category:   category,
			Limit:      status.Limit,
			RetryAfter: status.RetryAfter,
		})
	}

	start := time.Now()
	result, err := c.send(ctx, endpoint, opts.Method, body, opts.Headers, category)

	if err != nil {
		var classified *classify.Error
		if errors.As(err, &classified) && classified.Outcome.Kind == classify.KindNetwork {
			// Connectivity is out. Hand the request to the offline queue
			// and settle with its redelivery outcome.
			pending := c.queue.Enqueue(QueuedRequest{
				Endpoint: endpoint,
				Method:   opts.Method,
				Body:     body,
				Headers:  opts.Headers,
				Category: category,
			})
			c.logger.Info("request queued after connectivity failure",
				"endpoint", endpoint,
				"id", pending.ID(),
			)
			result, err = pending.Wait(ctx)
		}
	}

	c.updateHealth(err == nil, err)
	c.metrics.RecordRequest(category, outcomeLabel(err), time.Since(start))
	return result, err
}

// send runs one retried dispatch, counting retry attempts for the
// category's metrics. The attempt counter is local to this call.
func (c *Client) send(ctx context.Context, endpoint, method string, body []byte, headers map[string]string, category string) (json.RawMessage, error) {
	attempts := 0
	return retry.Do(ctx, c.policy, func(ctx context.Context) (json.RawMessage, error) {
		attempts++
		if attempts > 1 {
			c.metrics.RecordRetry(category)
		}
		return c.dispatch(ctx, endpoint, method, body, headers)
	})
}

// dispatch performs a single HTTP attempt. Transport failures are
// returned raw (classified as network by the retry layer); non-2xx
// responses become HTTPErrors classified by status.
func (c *Client) dispatch(ctx context.Context, endpoint, method string, body []byte, headers map[string]string) (json.RawMessage, error) {
	req, err := c.buildRequest(ctx, endpoint, method, body, headers)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("dispatching request",
		"method", method,
		"endpoint", endpoint,
		"request_id", req.Header.Get("X-Request-ID"),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	return nil, &classify.HTTPError{
		Status:   resp.StatusCode,
		Endpoint: endpoint,
		Body:     truncate(string(respBody), maxErrorBodyBytes),
	}
}

// buildRequest assembles one HTTP attempt: merged headers, request id,
// and the auth credential for state-changing methods. The credential is
// re-read from the provider on every attempt, never cached here.
func (c *Client) buildRequest(ctx context.Context, endpoint, method string, body []byte, headers map[string]string) (*http.Request, error) {
	url := strings.TrimRight(c.cfg.HTTP.BaseURL, "/") + endpoint

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, classify.Annotate(&classify.ValidationError{Field: "endpoint", Message: err.Error()})
	}

	for key, value := range c.cfg.HTTP.DefaultHeaders {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if isMutating(method) && c.tokens != nil && req.Header.Get("Authorization") == "" {
		value, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, classify.Annotate(&classify.CredentialError{Cause: err})
		}
		if value != "" {
			req.Header.Set("Authorization", "Bearer "+value)
		}
	}

	return req, nil
}

// redeliver replays a queued request through the retried dispatch path.
// It is the queue's dispatch function: a network-classified failure
// leaves the request at the head of the queue, anything else settles it.
func (c *Client) redeliver(ctx context.Context, qr QueuedRequest) (json.RawMessage, error) {
	result, err := retry.Do(ctx, c.policy, func(ctx context.Context) (json.RawMessage, error) {
		return c.dispatch(ctx, qr.Endpoint, qr.Method, qr.Body, qr.Headers)
	})

	switch {
	case err == nil:
		c.metrics.RecordReplay("success")
	case classify.Classify(err).Kind != classify.KindNetwork:
		c.metrics.RecordReplay("failure")
	}
	return result, err
}

// QueueLen returns the number of requests awaiting redelivery.
func (c *Client) QueueLen() int {
	return c.queue.Len()
}

// FlushQueue triggers a redelivery cycle for queued requests.
func (c *Client) FlushQueue() {
	c.queue.Flush()
}

// ClearQueue drops every queued request, rejecting their waiters with a
// QueueClearedError.
func (c *Client) ClearQueue() {
	dropped := c.queue.Len()
	c.queue.Clear()
	for i := 0; i < dropped; i++ {
		c.metrics.RecordReplay("cleared")
	}
}

// RestoreQueue re-enqueues journaled requests from a previous run and
// returns how many were restored. Call once at startup when persistence
// is enabled.
func (c *Client) RestoreQueue(ctx context.Context) (int, error) {
	return c.queue.Restore(ctx)
}

// UpdateCategories swaps the rate-limit category table. Used by the
// config watcher to apply hot reloads.
func (c *Client) UpdateCategories(categories map[string]config.CategoryConfig) {
	c.limiter.UpdateCategories(categoryTable(categories))
	c.logger.Info("rate-limit categories updated", "categories", len(categories))
}

// Close stops the sweeper, closes idle connections, and releases the
// queue journal if the client owns one. Queued requests are not
// cleared.
func (c *Client) Close() error {
	if c.sweeper != nil {
		c.sweeper.Stop()
	}
	c.httpClient.CloseIdleConnections()
	if c.ownedStore != nil {
		return c.ownedStore.Close()
	}
	return nil
}

// categoryTable converts the configuration's category map to the
// limiter's table.
func categoryTable(categories map[string]config.CategoryConfig) map[string]ratelimit.Config {
	table := make(map[string]ratelimit.Config, len(categories))
	for name, cfg := range categories {
		table[name] = ratelimit.Config{MaxRequests: cfg.MaxRequests, Window: cfg.Window}
	}
	return table
}

// outcomeLabel maps a settlement to its metrics label.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return string(classify.Classify(err).Kind)
}

// truncate bounds s to max bytes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
