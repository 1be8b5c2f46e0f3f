package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	Limiter    *rate.Limiter
}

// HTTPFetcher downloads files over HTTP with retry and rate limiting.
type HTTPFetcher struct {
	opts   HTTPOptions
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "sourcing-cli/1.0"
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(4), 2)
	}
	return &HTTPFetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Download fetches the URL, retrying transient failures with jittered
// exponential backoff.
func (f *HTTPFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			backoff += time.Duration(rand.Int63n(int64(time.Second)))
			zap.L().Debug("http: retrying download",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "http: download cancelled")
			}
		}

		if err := f.opts.Limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "http: rate limit wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "http: build request %s", url)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = eris.Wrapf(err, "http: get %s", url)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = eris.Errorf("http: get %s: status %d", url, resp.StatusCode)
			continue
		default:
			resp.Body.Close()
			return nil, eris.Errorf("http: get %s: status %d", url, resp.StatusCode)
		}
	}

	return nil, eris.Wrapf(lastErr, "http: giving up after %d attempts", f.opts.MaxRetries+1)
}
