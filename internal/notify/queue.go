// Package notify 实现限速展示的通知队列
package notify

import (
	"context"
	"slices"
	"sync"
	"time"
)

const (
	DefaultInterval   = 750 * time.Millisecond
	DefaultMaxHistory = 8
)

// Queue 通知队列：生产方随时入队，消费方每个间隔最多展示一条。
// 已展示的通知保存在历史中，最新在前，最多保留 maxHistory 条。
type Queue struct {
	mu         sync.Mutex
	pending    []string
	history    []string
	interval   time.Duration
	maxHistory int
	onDisplay  []func(msg string)

	wake chan struct{}
}

// New 创建通知队列，非正参数使用默认值
func New(interval time.Duration, maxHistory int) *Queue {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Queue{
		interval:   interval,
		maxHistory: maxHistory,
		wake:       make(chan struct{}, 1),
	}
}

// OnDisplay 注册展示回调，每展示一条调用一次
func (q *Queue) OnDisplay(fn func(msg string)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onDisplay = append(q.onDisplay, fn)
}

// Enqueue 入队，不阻塞
func (q *Queue) Enqueue(msg string) {
	if msg == "" {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Run 消费循环，直到 ctx 取消
func (q *Queue) Run(ctx context.Context) error {
	for {
		if !q.displayNext() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-q.wake:
			}
			continue
		}

		timer := time.NewTimer(q.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Drain 立即展示所有待展示通知
func (q *Queue) Drain() {
	for q.displayNext() {
	}
}

// History 已展示的通知，最新在前
func (q *Queue) History() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.history)
}

// Pending 待展示数量
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) displayNext() bool {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]

	q.history = slices.Insert(q.history, 0, msg)
	if len(q.history) > q.maxHistory {
		q.history = q.history[:q.maxHistory]
	}
	hooks := slices.Clone(q.onDisplay)
	q.mu.Unlock()

	for _, fn := range hooks {
		fn(msg)
	}
	return true
}
