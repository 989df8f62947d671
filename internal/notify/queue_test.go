package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_HistoryMostRecentFirstAndCapped(t *testing.T) {
	t.Parallel()

	q := New(time.Millisecond, 8)
	for i := range 12 {
		q.Enqueue(fmt.Sprintf("msg %d", i))
	}
	q.Drain()

	h := q.History()
	require.Len(t, h, 8)
	assert.Equal(t, "msg 11", h[0])
	assert.Equal(t, "msg 4", h[7])
	assert.Zero(t, q.Pending())
}

func TestQueue_IgnoresEmpty(t *testing.T) {
	t.Parallel()

	q := New(0, 0)
	q.Enqueue("")
	assert.Zero(t, q.Pending())
	assert.Equal(t, DefaultInterval, q.interval)
	assert.Equal(t, DefaultMaxHistory, q.maxHistory)
}

func TestQueue_RunRateLimited(t *testing.T) {
	t.Parallel()

	q := New(30*time.Millisecond, 8)

	var mu sync.Mutex
	var shown []time.Time
	q.OnDisplay(func(msg string) {
		mu.Lock()
		shown = append(shown, time.Now())
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(shown) == 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(shown); i++ {
		assert.GreaterOrEqual(t, shown[i].Sub(shown[i-1]), 25*time.Millisecond)
	}
	assert.Equal(t, []string{"c", "b", "a"}, q.History())
}

func TestQueue_RunWakesOnEnqueue(t *testing.T) {
	t.Parallel()

	q := New(time.Millisecond, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue("late")

	require.Eventually(t, func() bool {
		return len(q.History()) == 1
	}, time.Second, 5*time.Millisecond)
}
