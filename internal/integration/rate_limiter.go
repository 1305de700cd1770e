package integration

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedFetcher wraps a PageFetcher so consecutive requests to the
// forecast site are spaced out
type RateLimitedFetcher struct {
	fetcher PageFetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher allows rps requests per second with the given burst.
// A non-positive rps disables throttling.
func NewRateLimitedFetcher(fetcher PageFetcher, rps float64, burst int) *RateLimitedFetcher {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimitedFetcher{
		fetcher: fetcher,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// FetchPage waits for the limiter before forwarding the request
func (r *RateLimitedFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return r.fetcher.FetchPage(ctx, url)
}

var _ PageFetcher = (*RateLimitedFetcher)(nil)
