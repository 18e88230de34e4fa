// Package fetcher is the concurrent-safe generalization of the teacher's
// FetchForm: one shared rate limiter and retry policy serving every worker
// in a pool, instead of a single package-level lastRequestTime that only
// makes sense for a single-threaded CLI.
package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	edgar "github.com/secfilings/go-edgar-pipeline"
)

// Version is reported in the User-Agent header, mirroring the teacher's
// VERSION constant.
const Version = "1.0.0"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// BuildUserAgent mirrors edgar.BuildUserAgent's "name/version (email)"
// shape, under this module's own name and Version.
func BuildUserAgent(email string) string {
	return fmt.Sprintf("go-edgar-pipeline/%s (%s)", Version, email)
}

// ValidateEmail applies the same checks edgar.GetSecEmail does against an
// explicitly supplied email, so a Client can be built without relying on
// an environment variable lookup.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required for SEC requests")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	if strings.HasSuffix(email, "example.com") {
		return fmt.Errorf("use a real email address, not example.com: %s", email)
	}
	return nil
}

// Client is a rate-limited, retrying, cache-backed SEC fetcher shared by
// every worker in the orchestrator's pool.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	cacheDir   string

	inflight sync.Map // url string -> *inflightCall, serializes concurrent misses for the same URL
}

// Config controls Client construction.
type Config struct {
	Email             string
	RequestsPerSecond float64 // default 10, the SEC's documented ceiling
	CacheDir          string  // empty disables the on-disk cache
	PerAttemptTimeout time.Duration
}

// New builds a Client. It fails fast if Email does not pass the same
// validation edgar.GetSecEmail applies.
func New(cfg Config) (*Client, error) {
	if err := ValidateEmail(cfg.Email); err != nil {
		return nil, err
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	timeout := cfg.PerAttemptTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		userAgent:  BuildUserAgent(cfg.Email),
		cacheDir:   cfg.CacheDir,
	}, nil
}

// inflightCall is one in-flight fetch shared by every concurrent caller for
// the same URL: the first caller runs it under once, the others wait on once
// and then read its body and err.
type inflightCall struct {
	once sync.Once
	body []byte
	err  error
}

// Fetch retrieves url, consulting the on-disk cache first, then the
// network under the shared rate limiter with exponential-backoff retry on
// 5xx/429 responses. Concurrent fetches of the same URL collapse into one
// in-flight request; the losers of the race wait for and reuse its result
// rather than issuing their own.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if cached, ok := c.readCache(url); ok {
		return cached, nil
	}

	callVal, _ := c.inflight.LoadOrStore(url, &inflightCall{})
	call := callVal.(*inflightCall)

	call.once.Do(func() {
		call.body, call.err = c.fetchWithRetry(ctx, url)
		c.inflight.Delete(url)
		if call.err == nil {
			c.writeCache(url, call.body)
		}
	})
	return call.body, call.err
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 1 * time.Second
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.2
	boCtx := backoff.WithContext(backoff.WithMaxRetries(policy, 4), ctx)

	attempt := 0
	var lastErr error
	var result []byte
	err := backoff.Retry(func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		body, status, err := c.doRequest(ctx, url)
		if err != nil {
			lastErr = &edgar.TransientFetchError{URL: url, Attempt: attempt, Err: err}
			return lastErr
		}
		if status == http.StatusOK {
			lastErr = nil
			result = body
			return nil
		}
		if status == http.StatusTooManyRequests || status >= 500 {
			lastErr = &edgar.TransientFetchError{URL: url, Attempt: attempt, Err: fmt.Errorf("status %d", status)}
			return lastErr
		}
		lastErr = &edgar.PermanentFetchError{URL: url, StatusCode: status}
		return backoff.Permanent(lastErr)
	}, boCtx)

	if err != nil {
		return nil, lastErr
	}
	return result, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:])+".cache")
}

func (c *Client) readCache(url string) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.cachePath(url))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Client) writeCache(url string, body []byte) {
	if c.cacheDir == "" {
		return
	}
	_ = os.WriteFile(c.cachePath(url), body, 0o644)
}
