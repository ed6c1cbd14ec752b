package gateway

import "time"

// unhealthyThreshold is the number of consecutive dispatch failures
// after which the client reports unhealthy.
const unhealthyThreshold = 3

// Health is a snapshot of the client's upstream health.
type Health struct {
	// Healthy is false after unhealthyThreshold consecutive failures and
	// true again after the next success.
	Healthy bool

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// TotalRequests counts dispatched requests, successful or not.
	TotalRequests uint64

	// FailedRequests counts requests that settled with an error.
	FailedRequests uint64

	// LastError is the most recent failure, nil after a success.
	LastError error

	// LastSuccess is when the last request succeeded.
	LastSuccess time.Time

	// LastCheck is when the health state was last updated.
	LastCheck time.Time
}

// IsHealthy reports whether the upstream is currently considered healthy.
func (c *Client) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health.Healthy
}

// GetHealth returns a snapshot of the client's health state.
func (c *Client) GetHealth() Health {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}

// updateHealth records the settlement of one request.
func (c *Client) updateHealth(success bool, err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.LastCheck = time.Now()
	c.health.TotalRequests++

	if success {
		c.health.Healthy = true
		c.health.ConsecutiveFailures = 0
		c.health.LastError = nil
		c.health.LastSuccess = time.Now()
		return
	}

	c.health.FailedRequests++
	c.health.ConsecutiveFailures++
	c.health.LastError = err

	if c.health.ConsecutiveFailures >= unhealthyThreshold && c.health.Healthy {
		c.health.Healthy = false
		c.logger.Warn("gateway marked unhealthy",
			"consecutive_failures", c.health.ConsecutiveFailures,
			"error", err,
		)
	}
}
