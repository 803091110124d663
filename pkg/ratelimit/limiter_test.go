package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(3, 200*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "token %d", i+1)
	}
	assert.False(t, tb.Allow())

	time.Sleep(250 * time.Millisecond)
	assert.True(t, tb.Allow(), "bucket refills after the period")

	tb.Reset()
	assert.Equal(t, tb.capacity, tb.tokens)
}

func TestTokenBucketWaitBlocksUntilRefill(t *testing.T) {
	tb := NewTokenBucket(1, 100*time.Millisecond)
	require.True(t, tb.Allow())

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestTokenBucketWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(2, 150*time.Millisecond)

	assert.True(t, sw.Allow())
	assert.True(t, sw.Allow())
	assert.False(t, sw.Allow())

	time.Sleep(200 * time.Millisecond)
	assert.True(t, sw.Allow(), "window slides")

	sw.Reset()
	assert.Empty(t, sw.requests)
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(1, 80*time.Millisecond)
	require.True(t, sw.Allow())
	assert.NoError(t, sw.Wait(context.Background()))
}

func TestUnlimited(t *testing.T) {
	var l Limiter = Unlimited{}
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))
}
