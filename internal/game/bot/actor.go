package bot

import (
	"context"
	"time"

	"github.com/weedbox/timebank"

	"github.com/palemoky/holdem-table/internal/game/betting"
)

// Actor 机器人座位：先决策，再模拟思考时间后返回
type Actor struct {
	decider Decider
	delay   time.Duration
	tb      *timebank.TimeBank
}

// NewActor 创建机器人座位，delay 为每次行动前的等待
func NewActor(d Decider, delay time.Duration) *Actor {
	return &Actor{
		decider: d,
		delay:   delay,
		tb:      timebank.NewTimeBank(),
	}
}

// Act 返回机器人动作；ctx 取消时立即放弃
func (a *Actor) Act(ctx context.Context, v betting.View) (betting.Action, error) {
	action := a.decider.Decide(v)
	action.Seat = v.Seat

	if a.delay <= 0 {
		return action, ctx.Err()
	}

	done := make(chan struct{})
	if err := a.tb.NewTask(a.delay, func(isCancelled bool) {
		close(done)
	}); err != nil {
		return betting.Action{}, err
	}

	select {
	case <-ctx.Done():
		return betting.Action{}, ctx.Err()
	case <-done:
		return action, nil
	}
}
