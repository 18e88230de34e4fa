package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/secfilings/go-edgar-pipeline/fetcher"
)

func TestBuildUserAgent(t *testing.T) {
	ua := fetcher.BuildUserAgent("test@example.org")
	assert.Contains(t, ua, fetcher.Version)
	assert.Contains(t, ua, "test@example.org")
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, fetcher.ValidateEmail("person@acme.com"))

	tests := []string{"", "not-an-email", "person@example.com"}
	for _, email := range tests {
		t.Run(email, func(t *testing.T) {
			assert.Error(t, fetcher.ValidateEmail(email))
		})
	}
}

func TestNew_RejectsInvalidEmail(t *testing.T) {
	_, err := fetcher.New(fetcher.Config{Email: "bad"})
	require.Error(t, err)
}

func TestClient_Fetch_SuccessAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Contains(t, r.Header.Get("User-Agent"), "test@acme.com")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	cacheDir := filepath.Join(t.TempDir(), "cache")
	client, err := fetcher.New(fetcher.Config{Email: "test@acme.com", CacheDir: cacheDir, RequestsPerSecond: 100})
	require.NoError(t, err)

	body, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	// Second fetch of the same URL should be served from the on-disk cache,
	// not a second request.
	body2, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body2))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_Fetch_RetriesOnServerError(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok-after-retries"))
	}))
	defer srv.Close()

	client, err := fetcher.New(fetcher.Config{Email: "test@acme.com", RequestsPerSecond: 100})
	require.NoError(t, err)

	body, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok-after-retries", string(body))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(3))
}

func TestClient_Fetch_PermanentErrorDoesNotRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := fetcher.New(fetcher.Config{Email: "test@acme.com", RequestsPerSecond: 100})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	var permErr *edgar.PermanentFetchError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_Fetch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	client, err := fetcher.New(fetcher.Config{Email: "test@acme.com", RequestsPerSecond: 10})
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), srv.URL+"?q=2")
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed.Milliseconds(), int64(90))
}
