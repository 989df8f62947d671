package hand

import (
	"context"
	"errors"
	"sync"

	"github.com/palemoky/holdem-table/internal/game/betting"
)

// Actor 为一个座位产生动作。ctx 在轮到下一位时被取消，实现必须随之返回。
type Actor interface {
	Act(ctx context.Context, v betting.View) (betting.Action, error)
}

// ActorFunc 函数适配器
type ActorFunc func(ctx context.Context, v betting.View) (betting.Action, error)

func (f ActorFunc) Act(ctx context.Context, v betting.View) (betting.Action, error) {
	return f(ctx, v)
}

// ActionSource 远程动作来源（如动作信箱轮询）
type ActionSource interface {
	Await(ctx context.Context, seat int) (betting.Action, error)
}

var ErrNoInput = errors.New("seat has no input source")

// HumanActor 真人座位：本地输入与远程信箱同时等待，先到者生效，另一方被取消
type HumanActor struct {
	Local  ActionSource
	Remote ActionSource
}

type actResult struct {
	action betting.Action
	err    error
}

// Act 实现 Actor。返回前等待所有等待方退出。
func (h *HumanActor) Act(ctx context.Context, v betting.View) (betting.Action, error) {
	sources := make([]ActionSource, 0, 2)
	for _, src := range []ActionSource{h.Local, h.Remote} {
		if src != nil {
			sources = append(sources, src)
		}
	}
	if len(sources) == 0 {
		return betting.Action{}, ErrNoInput
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan actResult, len(sources))
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := src.Await(ctx, v.Seat)
			results <- actResult{a, err}
		}()
	}

	var firstErr error
	for range sources {
		r := <-results
		if r.err == nil {
			cancel()
			wg.Wait()
			r.action.Seat = v.Seat
			return r.action, nil
		}
		if firstErr == nil {
			firstErr = r.err
		}
	}
	wg.Wait()
	return betting.Action{}, firstErr
}

// TurnInput 本地输入源，只在 Await 等待期间接受动作。
// 未轮到时 Offer 直接丢弃，不会留到下一轮。
type TurnInput struct {
	mu      sync.Mutex
	waiting chan betting.Action
}

// NewTurnInput 创建本地输入源
func NewTurnInput() *TurnInput {
	return &TurnInput{}
}

// Offer 提交一个动作，当前没有等待中的回合时返回 false
func (in *TurnInput) Offer(a betting.Action) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.waiting == nil {
		return false
	}
	in.waiting <- a
	in.waiting = nil // 每个回合只接受一次
	return true
}

// Armed 是否有等待中的回合
func (in *TurnInput) Armed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.waiting != nil
}

// Await 实现 ActionSource
func (in *TurnInput) Await(ctx context.Context, seat int) (betting.Action, error) {
	ch := make(chan betting.Action, 1)
	in.mu.Lock()
	in.waiting = ch
	in.mu.Unlock()

	defer func() {
		in.mu.Lock()
		if in.waiting == ch {
			in.waiting = nil
		}
		in.mu.Unlock()
	}()

	select {
	case a := <-ch:
		a.Seat = seat
		return a, nil
	case <-ctx.Done():
		return betting.Action{}, ctx.Err()
	}
}
