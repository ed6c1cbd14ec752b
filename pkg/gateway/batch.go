package gateway

import (
	"context"
	"sync"
)

// BatchRequest issues every item concurrently through the full Request
// pipeline and returns when all have settled. Results are positional:
// results[i] belongs to reqs[i] regardless of completion order. One
// item's failure never short-circuits the others.
func (c *Client) BatchRequest(ctx context.Context, reqs []BatchItem) []BatchResult {
	results := make([]BatchResult, len(reqs))

	var wg sync.WaitGroup
	for i, item := range reqs {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			result, err := c.Request(ctx, item.Endpoint, item.Options)
			results[i] = BatchResult{Result: result, Err: err}
		}(i, item)
	}
	wg.Wait()

	return results
}
