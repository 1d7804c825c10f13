package github

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gh "github.com/google/go-github/v57/github"
)

// RateLimitedError is returned when GitHub rejects a call because the quota is exhausted
type RateLimitedError struct {
	ResetAt time.Time
	Message string
}

func (e *RateLimitedError) Error() string {
	if e.ResetAt.IsZero() {
		return "GitHub API rate limit exceeded"
	}
	return fmt.Sprintf("GitHub API rate limit exceeded. Resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// UpstreamError is any other non-2xx response from GitHub
type UpstreamError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API error: %d %s", e.StatusCode, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is, or wraps, a RateLimitedError
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

// classify maps a go-github error and its response onto RateLimitedError or UpstreamError.
// Transport failures without a response are returned wrapped but unclassified.
func classify(resp *gh.Response, err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitedError{ResetAt: rateErr.Rate.Reset.Time, Message: rateErr.Message}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		rl := &RateLimitedError{Message: abuseErr.Message}
		if abuseErr.RetryAfter != nil {
			rl.ResetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return rl
	}

	if resp == nil || resp.Response == nil {
		return fmt.Errorf("failed to call GitHub API: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		if reset := resp.Header.Get(headerRateReset); reset != "" {
			rl := &RateLimitedError{}
			if secs, perr := strconv.ParseInt(reset, 10, 64); perr == nil {
				rl.ResetAt = time.Unix(secs, 0).UTC()
			}
			return rl
		}
	}

	return &UpstreamError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Err:        err,
	}
}
