package generator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/httputil"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (s *stubLimiter) Allow(_ context.Context, _ redispkg.RateLimitConfig) (bool, int, error) {
	s.calls++
	if s.err != nil {
		return false, 0, s.err
	}
	return s.allowed, 0, nil
}

func backendServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write(marshal(t, validPayload()))
	}))
}

func clientFor(baseURL string) *Client {
	cfg := &config.Config{
		Generator: config.GeneratorConfig{
			Enabled: true,
			BaseURL: baseURL,
			Model:   "test-model",
		},
	}
	log := logger.NewNop()
	return NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)
}

func TestGenerateBudgetExhausted(t *testing.T) {
	hits := 0
	srv := backendServer(t, &hits)
	defer srv.Close()

	limiter := &stubLimiter{allowed: false}
	client := clientFor(srv.URL).WithRateLimiter(limiter)

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, IsRecoverable(err))
	// The backend must not be reached once the budget is exhausted.
	assert.Equal(t, 0, hits)
	assert.Equal(t, 1, limiter.calls)
}

func TestGenerateLimiterFailsOpen(t *testing.T) {
	hits := 0
	srv := backendServer(t, &hits)
	defer srv.Close()

	limiter := &stubLimiter{err: errors.New("redis unreachable")}
	client := clientFor(srv.URL).WithRateLimiter(limiter)

	resp, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Scripts)
	assert.Equal(t, 1, hits)
}

func TestGenerateDisabledRedisLimiterAllows(t *testing.T) {
	hits := 0
	srv := backendServer(t, &hits)
	defer srv.Close()

	redisClient, err := redispkg.New(&config.Config{
		Redis: config.RedisConfig{Enabled: false},
	})
	require.NoError(t, err)

	client := clientFor(srv.URL).
		WithRateLimiter(redispkg.NewRateLimiter(redisClient, "test"))

	resp, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Scripts)
	assert.Equal(t, 1, hits)
}

func TestGenerateNoLimiterConfigured(t *testing.T) {
	hits := 0
	srv := backendServer(t, &hits)
	defer srv.Close()

	resp, err := clientFor(srv.URL).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Scripts)
	assert.Equal(t, 1, hits)
}
