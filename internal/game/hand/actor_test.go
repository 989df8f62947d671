package hand

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/holdem-table/internal/game/betting"
)

type fakeSource struct {
	action    betting.Action
	after     time.Duration
	cancelled atomic.Bool
}

func (f *fakeSource) Await(ctx context.Context, seat int) (betting.Action, error) {
	select {
	case <-ctx.Done():
		f.cancelled.Store(true)
		return betting.Action{}, ctx.Err()
	case <-time.After(f.after):
		return f.action, nil
	}
}

func TestHumanActor_LocalWinsAndCancelsRemote(t *testing.T) {
	t.Parallel()

	local := &fakeSource{action: betting.Action{Kind: betting.Raise, Amount: 60}}
	remote := &fakeSource{action: betting.Action{Kind: betting.Fold}, after: time.Hour}

	h := &HumanActor{Local: local, Remote: remote}
	a, err := h.Act(context.Background(), betting.View{Seat: 2})
	require.NoError(t, err)

	assert.Equal(t, betting.Raise, a.Kind)
	assert.Equal(t, 2, a.Seat)
	// Act 返回前远程等待方已经退出
	assert.True(t, remote.cancelled.Load())
}

func TestHumanActor_RemoteWins(t *testing.T) {
	t.Parallel()

	remote := &fakeSource{action: betting.Action{Kind: betting.Call}, after: 5 * time.Millisecond}
	h := &HumanActor{Local: NewTurnInput(), Remote: remote}

	a, err := h.Act(context.Background(), betting.View{Seat: 1})
	require.NoError(t, err)
	assert.Equal(t, betting.Call, a.Kind)
	assert.Equal(t, 1, a.Seat)
}

func TestHumanActor_CancelledTurn(t *testing.T) {
	t.Parallel()

	remote := &fakeSource{after: time.Hour}
	local := NewTurnInput()
	h := &HumanActor{Local: local, Remote: remote}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := h.Act(ctx, betting.View{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, remote.cancelled.Load())
	// 回合结束后本地输入不再被接受
	assert.False(t, local.Armed())
	assert.False(t, local.Offer(betting.Action{Kind: betting.Fold}))
}

func TestHumanActor_NoInput(t *testing.T) {
	t.Parallel()

	_, err := (&HumanActor{}).Act(context.Background(), betting.View{})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestTurnInput_DropsInputBeforeTurn(t *testing.T) {
	t.Parallel()

	in := NewTurnInput()
	// 其他座位行动时输入的动作被丢弃
	assert.False(t, in.Offer(betting.Action{Kind: betting.AllIn}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := (&HumanActor{Local: in}).Act(ctx, betting.View{Seat: 0})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTurnInput_AcceptsOncePerTurn(t *testing.T) {
	t.Parallel()

	in := NewTurnInput()
	done := make(chan betting.Action, 1)
	go func() {
		a, _ := (&HumanActor{Local: in}).Act(context.Background(), betting.View{Seat: 3})
		done <- a
	}()

	require.Eventually(t, in.Armed, time.Second, time.Millisecond)
	assert.True(t, in.Offer(betting.Action{Kind: betting.Call}))
	assert.False(t, in.Offer(betting.Action{Kind: betting.Fold}))

	select {
	case a := <-done:
		assert.Equal(t, betting.Action{Seat: 3, Kind: betting.Call}, a)
	case <-time.After(time.Second):
		t.Fatal("turn did not complete")
	}
}
