package gateway

import (
	"context"
	"io"

	"mercator-hq/ganymede/pkg/classify"
	"mercator-hq/ganymede/pkg/stream"
)

// Stream opens a newline-delimited JSON stream from the endpoint and
// returns a decoder over the response body. The caller owns the decoder
// and must drain it to io.EOF or Close it.
//
// The request passes validation and rate-limit admission like Request,
// but is dispatched exactly once: a partially consumed stream is not
// replayable, so there is no retry and no offline queueing. Failures
// are returned with their classified Outcome.
func (c *Client) Stream(ctx context.Context, endpoint string, opts RequestOptions) (*stream.Decoder, error) {
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
		return nil, classify.Annotate(&classify.RateLimitExceededError{
			Category:   category,
			Limit:      status.Limit,
			RetryAfter: status.RetryAfter,
		})
	}

	req, err := c.buildRequest(ctx, endpoint, opts.Method, body, opts.Headers)
	if err != nil {
		c.updateHealth(false, err)
		return nil, err
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.updateHealth(false, err)
		return nil, classify.Annotate(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()

		httpErr := &classify.HTTPError{
			Status:   resp.StatusCode,
			Endpoint: endpoint,
			Body:     string(errBody),
		}
		c.updateHealth(false, httpErr)
		return nil, classify.Annotate(httpErr)
	}

	c.updateHealth(true, nil)
	c.logger.Debug("stream opened", "endpoint", endpoint)
	return stream.NewDecoder(resp.Body, c.logger), nil
}
