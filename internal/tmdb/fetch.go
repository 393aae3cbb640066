package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"marquee/internal/logging"
	"marquee/internal/services"
)

const maxBodyBytes = 8 << 20

// Fetcher performs JSON GET requests with a per-attempt timeout and immediate
// bounded retry.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchHTTPClient overrides the HTTP client used for catalog requests.
func WithFetchHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithRateLimit paces outbound requests. A non-positive rate disables pacing.
func WithRateLimit(perSecond float64) FetcherOption {
	return func(f *Fetcher) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithFetchLogger attaches a logger for per-attempt diagnostics.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher constructs a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.NewNop()
	}
	return f
}

type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog returned http %d", e.StatusCode)
}

// FetchJSON issues GET url and decodes the JSON body into target. It makes
// 1+maxRetries attempts, each bounded by timeout. Cancellation of ctx stops
// further attempts and is returned unwrapped.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, timeout time.Duration, maxRetries int, target any) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	attempts := maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		start := time.Now()
		err := f.attempt(ctx, url, timeout, target)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err
		f.logger.Debug("catalog fetch attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Duration("latency", time.Since(start)),
			logging.Error(err),
		)
	}
	return services.Wrap(
		services.ErrCatalogUnavailable,
		"catalog",
		"fetch",
		fmt.Sprintf("gave up after %d attempts", attempts),
		lastErr,
	)
}

func (f *Fetcher) attempt(ctx context.Context, url string, timeout time.Duration, target any) error {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: after %s: %w", services.ErrTimeout, timeout, err)
		}
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &statusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
