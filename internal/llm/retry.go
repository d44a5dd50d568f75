package llm

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/replicate/replicate-go"
	"github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/genmedx/genmedx/internal/core/fault"
)

// RetryPolicy bounds every outbound inference call. Retries replace the
// failed attempt; a logical request is billed at most once per attempt, and
// client errors (4xx) are never retried.
type RetryPolicy struct {
	Timeout    time.Duration
	MaxRetries uint64
	Backoff    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		Backoff:    500 * time.Millisecond,
	}
}

type retryingClient struct {
	inner      Client
	dependency string
	policy     RetryPolicy
}

// WithRetry wraps a backend with the per-call timeout and bounded backoff
// retries. The returned error after exhaustion is an UpstreamError naming
// the dependency.
func WithRetry(inner Client, dependency string, policy RetryPolicy) Client {
	return &retryingClient{inner: inner, dependency: dependency, policy: policy}
}

func (c *retryingClient) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	backoff := retry.WithMaxRetries(c.policy.MaxRetries, retry.NewExponential(c.policy.Backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
		defer cancel()

		text, err := c.inner.Generate(attemptCtx, prompt)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		return "", &fault.UpstreamError{Dependency: c.dependency, Err: err}
	}
	return out, nil
}

type retryingEmbedder struct {
	inner      Embedder
	dependency string
	policy     RetryPolicy
}

func WithEmbedRetry(inner Embedder, dependency string, policy RetryPolicy) Embedder {
	return &retryingEmbedder{inner: inner, dependency: dependency, policy: policy}
}

func (c *retryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	backoff := retry.WithMaxRetries(c.policy.MaxRetries, retry.NewExponential(c.policy.Backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
		defer cancel()

		vec, err := c.inner.Embed(attemptCtx, text)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = vec
		return nil
	})
	if err != nil {
		return nil, &fault.UpstreamError{Dependency: c.dependency, Err: err}
	}
	return out, nil
}

// statusCoder is implemented by this package's own HTTP clients.
type statusCoder interface {
	StatusCode() int
}

// isTransient reports whether an attempt may be replaced: timeouts,
// rate limits (429) and server-side failures (5xx). Anything in 4xx other
// than 429 is the caller's fault and retrying would just re-bill it.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if status, ok := upstreamStatus(err); ok {
		return status == 429 || status >= 500
	}

	return false
}

func upstreamStatus(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}

	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		return oaErr.HTTPStatusCode, true
	}

	var anErr *anthropic.RequestError
	if errors.As(err, &anErr) {
		return anErr.StatusCode, true
	}

	var repErr *replicate.APIError
	if errors.As(err, &repErr) {
		return repErr.Status, true
	}

	return 0, false
}
