package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	p := Policy{MaxAttempts: 3, Interval: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, Interval: time.Millisecond}

	calls := 0
	last := errors.New("still down")
	err := p.Do(context.Background(), func() error {
		calls++
		return last
	})

	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	p := Policy{MaxAttempts: 5, Interval: time.Millisecond}

	calls := 0
	authErr := errors.New("bad api key")
	err := p.Do(context.Background(), func() error {
		calls++
		return Permanent(authErr)
	})

	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	p := Policy{MaxAttempts: 10, Interval: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})

	assert.Error(t, err)
	assert.Less(t, calls, 10)
}
