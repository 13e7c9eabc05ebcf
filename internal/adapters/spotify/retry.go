package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond

	// maxRetryAfter is the longest server-requested wait a request will sit out.
	maxRetryAfter = 30 * time.Second
)

var errRetryAfterTooLong = errors.New("spotify adapter: retry-after exceeds limit")

// doRequestWithRetry sends a bodiless request, retrying transport errors, 429
// and 5xx responses with exponential backoff.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody {
		return nil, fmt.Errorf("spotify adapter: retry of %s with body is not supported", req.Method)
	}

	attempts := c.maxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}
	base := c.baseBackoff
	if base <= 0 {
		base = defaultBackoff
	}

	ctx := req.Context()
	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}
		lastStatus, lastErr = drain(resp), err
		log.Warn("spotify adapter: retrying request",
			"attempt", attempt+1, "max", attempts, "status", lastStatus, "err", err)

		if attempt == attempts-1 {
			break
		}
		delay, err := backoffFor(attempt, base, retryAfter)
		if err != nil {
			return nil, err
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, exhaustedError(attempts, lastStatus, lastErr)
}

// wait honours cancellation and the rate limiter before each attempt.
func (c *Client) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("spotify adapter: request canceled: %w", err)
	}
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("spotify adapter: rate limiter: %w", err)
	}
	return nil
}

// drain closes a response that will be retried and returns its status.
func drain(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
	return resp.StatusCode
}

func exhaustedError(attempts, status int, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("spotify adapter: request failed after %d attempts: %w", attempts, err)
	case status != 0:
		return fmt.Errorf("spotify adapter: request failed after %d attempts: status %d", attempts, status)
	default:
		return fmt.Errorf("spotify adapter: request failed after %d attempts", attempts)
	}
}

// backoffFor doubles the base delay per attempt unless the server asked for a
// specific wait. A requested wait longer than maxRetryAfter is an error.
func backoffFor(attempt int, base, retryAfter time.Duration) (time.Duration, error) {
	if retryAfter > maxRetryAfter {
		return 0, fmt.Errorf("%w: %s", errRetryAfterTooLong, retryAfter)
	}
	if retryAfter > 0 {
		return retryAfter, nil
	}
	return base * time.Duration(1<<attempt), nil
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

// parseRetryAfter reads Retry-After as delta seconds or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(seconds)*time.Second, 0)
	}
	if when, err := http.ParseTime(v); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
