package generator

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/httputil"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// RateLimiter is the shared quota gate consulted before each model
// call. The redis-backed limiter in pkg/redis satisfies it; with
// several api processes the budget is then enforced across all of
// them.
type RateLimiter interface {
	Allow(ctx context.Context, cfg redispkg.RateLimitConfig) (allowed bool, remaining int, err error)
}

// Client calls the model backend. All transport goes through
// pkg/httputil so retries, rate limiting, and request logging follow
// the rest of the service.
type Client struct {
	http    *httputil.Client
	cfg     config.GeneratorConfig
	limiter RateLimiter
	logger  *logger.Logger
}

// NewClient creates a generator client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		http:   httpClient,
		cfg:    cfg.Generator,
		logger: log,
	}
}

// WithRateLimiter attaches a shared call-budget limiter. A nil limiter
// leaves the client ungated.
func (c *Client) WithRateLimiter(l RateLimiter) *Client {
	c.limiter = l
	return c
}

// Enabled reports whether a model backend is configured.
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.BaseURL != ""
}

// Model returns the configured model identity and temperature for
// provenance stamping.
func (c *Client) Model() (string, float64) {
	return c.cfg.Model, c.cfg.Temperature
}

// Generate posts the prompt and returns the validated response. Every
// failure path returns a recoverable GeneratorError so the caller can
// degrade to the deterministic scripts.
func (c *Client) Generate(ctx context.Context, prompt string) (*Response, error) {
	if !c.Enabled() {
		return nil, recoverable("dispatch", fmt.Errorf("generator disabled"))
	}

	if c.limiter != nil {
		allowed, _, err := c.limiter.Allow(ctx, redispkg.GeneratorRateLimit)
		if err != nil {
			// Fail open: a broken limiter must not take the generator
			// down with it.
			c.logger.WithError(err).Warn("Generator rate limit check failed, allowing call")
		} else if !allowed {
			return nil, recoverable("ratelimit", fmt.Errorf("generator call budget exhausted"))
		}
	}

	body := map[string]interface{}{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"prompt":      prompt,
	}
	headers := map[string]string{}
	if c.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}

	resp, err := c.http.PostJSONWithHeaders(ctx, c.cfg.BaseURL, body, headers)
	if err != nil {
		return nil, recoverable("dispatch", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, recoverable("read", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, recoverable("dispatch", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200)))
	}

	parsed, err := ParseResponse(raw)
	if err != nil {
		c.logger.WithError(err).Warn("Generator payload rejected")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"model":   c.cfg.Model,
		"scripts": len(parsed.Scripts),
	}).Debug("Generator response accepted")

	return parsed, nil
}

func truncate(raw []byte, n int) string {
	if len(raw) <= n {
		return string(raw)
	}
	return string(raw[:n]) + "..."
}
