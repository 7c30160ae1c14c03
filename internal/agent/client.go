package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client calls a hosted completion API over HTTP with cooperative rate
// limiting and bounded retries. Retries apply only to transient failures
// (429, 5xx, timeouts, network errors); a successful-but-malformed response
// is not retried because reformatting is not something a retry fixes.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	apiType       string // "anthropic" or "openai"
	httpClient    *http.Client
	maxRetries    int
	attemptWindow time.Duration
	backoffBase   time.Duration
	limiter       *rate.Limiter
	logger        *slog.Logger
}

type Option func(*Client)

func WithRetry(maxRetries int) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

// WithAttemptTimeout bounds a single completion attempt.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.attemptWindow = timeout
	}
}

func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

func WithAPIConfig(baseURL, model string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
		c.model = model
		if strings.Contains(baseURL, "openai") {
			c.apiType = "openai"
		} else {
			c.apiType = "anthropic"
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "completion_client")
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		apiKey:        apiKey,
		baseURL:       "https://api.anthropic.com/v1",
		model:         "claude-3-5-sonnet-20241022",
		apiType:       "anthropic",
		httpClient:    &http.Client{Transport: transport},
		maxRetries:    3,
		attemptWindow: 120 * time.Second,
		backoffBase:   time.Second,
		limiter:       rate.NewLimiter(rate.Limit(1), 1),
		logger:        slog.Default().With("component", "completion_client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("completion client initialized",
		"api_type", c.apiType,
		"base_url", c.baseURL,
		"model", c.model,
		"max_retries", c.maxRetries)

	return c
}

// Complete sends one completion request, retrying transient failures with
// exponential backoff and jitter. Cancellation is checked between attempts,
// never mid-flight of a single call.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	start := time.Now()
	attempts := 0
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffDelay(attempt)
			c.logger.Debug("retrying completion request",
				"attempt", attempt,
				"backoff", backoff,
				"last_error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		attempts++
		text, err := c.doAttempt(ctx, system, prompt, maxOutputTokens)
		if err == nil {
			c.logger.Info("completion request succeeded",
				"attempts", attempts,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_length", len(text))
			return text, nil
		}
		lastErr = err

		if !isTransient(err) {
			c.logger.Error("completion request failed, not retryable", "error", err)
			return "", &ProviderError{Attempts: attempts, Cause: fmt.Errorf("%w: %w", ErrProviderUnavailable, err)}
		}
		c.logger.Warn("completion attempt failed",
			"attempt", attempts,
			"error", err)
	}

	class := ErrProviderUnavailable
	if isTimeout(lastErr) {
		class = ErrProviderTimeout
	}
	c.logger.Error("completion request exhausted retries",
		"attempts", attempts,
		"duration_ms", time.Since(start).Milliseconds(),
		"last_error", lastErr)
	return "", &ProviderError{Attempts: attempts, Cause: fmt.Errorf("%w: %w", class, lastErr)}
}

func (c *Client) doAttempt(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptWindow)
	defer cancel()

	if c.apiType == "openai" {
		return c.doOpenAIRequest(attemptCtx, system, prompt, maxOutputTokens)
	}
	return c.doAnthropicRequest(attemptCtx, system, prompt, maxOutputTokens)
}

// apiError carries the HTTP status for transient classification.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.status, e.body)
}

func isTransient(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.status == http.StatusTooManyRequests || apiErr.status >= 500
	}
	// Network failures and per-attempt timeouts are transient.
	return true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.backoffBase * time.Duration(1<<uint(attempt-1))
	if ceiling := 30 * c.backoffBase; base > ceiling {
		base = ceiling
	}
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return base + jitter
}

func (c *Client) doAnthropicRequest(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	requestBody := map[string]any{
		"model":  c.model,
		"system": system,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens": maxOutputTokens,
	}

	respBody, err := c.post(ctx, "/messages", requestBody, func(req *http.Request) {
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	})
	if err != nil {
		return "", err
	}

	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return response.Content[0].Text, nil
}

func (c *Client) doOpenAIRequest(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"max_tokens": maxOutputTokens,
	}

	respBody, err := c.post(ctx, "/chat/completions", requestBody, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	})
	if err != nil {
		return "", err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return response.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, requestBody any, setAuth func(*http.Request)) ([]byte, error) {
	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{status: resp.StatusCode, body: string(respBody)}
	}
	return respBody, nil
}
