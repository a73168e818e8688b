package httpclient

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// RetryPolicy retries network failures and the listed statuses with
// exponential backoff.
type RetryPolicy struct {
	MaxRetries  int           `json:"max_retries"`
	BaseDelay   time.Duration `json:"base_delay"`
	MaxDelay    time.Duration `json:"max_delay"`
	Jitter      bool          `json:"jitter"`
	StatusCodes []int         `json:"status_codes"`
}

// DefaultRetryPolicy retries rate limiting and transient upstream failures twice.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  2,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      true,
		StatusCodes: []int{429, 500, 502, 503, 504},
	}
}

// Retryable reports whether status is worth another attempt.
func (p RetryPolicy) Retryable(status int) bool {
	return slices.Contains(p.StatusCodes, status)
}

// Delay is the wait before retry number attempt (0-based): base doubled per
// attempt, capped at MaxDelay, plus up to 10% jitter.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter && d >= 10 {
		d += rand.N(d / 10)
	}
	return d
}

func (p RetryPolicy) do(ctx context.Context, logger zerolog.Logger, url string, send func() (*HTTPResponse, error)) (*HTTPResponse, error) {
	var (
		resp *HTTPResponse
		err  error
	)
	for attempt := 0; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		resp, err = send()
		retryable := err != nil || p.Retryable(resp.StatusCode)
		if !retryable || attempt >= p.MaxRetries {
			break
		}

		delay := p.Delay(attempt)
		ev := logger.Debug().Str("url", url).Int("attempt", attempt+1).Dur("delay", delay)
		if err != nil {
			ev.Err(err).Msg("Request failed, retrying")
		} else {
			ev.Int("status_code", resp.StatusCode).Msg("Retryable status, retrying")
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err != nil {
		return nil, errorwrapper.WrapError(err, "all retry attempts failed")
	}
	if p.Retryable(resp.StatusCode) {
		httpErr := errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(resp.Body), url)
		return resp, errorwrapper.WrapError(httpErr, "all retry attempts failed")
	}
	return resp, nil
}
