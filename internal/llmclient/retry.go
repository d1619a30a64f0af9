package llmclient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryableStatus is the set of response codes spec.md §4.C allows a
// retry for. Anything else is surfaced immediately as ErrRequestFailed.
var retryableStatus = map[int]bool{502: true, 503: true, 504: true}

// newRetryBackoff builds the 3-total-attempt, 100ms-base exponential
// backoff spec.md §4.C requires, grounded on
// telnet2-opencode/go-opencode/internal/session/loop.go's
// newRetryBackoff helper.
func newRetryBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.Reset()
	// WithMaxRetries(b, 2) allows 2 retries on top of the first attempt:
	// 3 total attempts, matching urllib3's Retry(total=3).
	return backoff.WithContext(backoff.WithMaxRetries(b, 2), ctx)
}
