// Package retry is the single retry policy used for external calls: a fixed
// number of attempts with constant backoff, plus a way to mark failures that
// must never be retried (bad credentials, schema problems).
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how a call is retried.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPolicy matches the production client behavior for store and
// extraction calls: three attempts, one second apart.
var DefaultPolicy = Policy{MaxAttempts: 3, Interval: time.Second}

// Permanent wraps err so Do surfaces it immediately without further
// attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

// Do runs op under the policy. The last error is returned once attempts are
// exhausted; a Permanent error or context cancellation stops retrying at
// once.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(attempts-1)),
		ctx,
	)
	err := backoff.Retry(op, b)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
