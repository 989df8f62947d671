package remote

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/palemoky/holdem-table/internal/game/hand"
	"github.com/palemoky/holdem-table/internal/logger"
)

// DefaultSyncDelay 状态同步的合并窗口
const DefaultSyncDelay = 750 * time.Millisecond

// Publisher 把牌桌状态同步到复制服务。窗口内的多次 Publish 合并为一次上传，
// 上传的是窗口结束时的最新状态。
type Publisher struct {
	client  *Client
	delay   time.Duration
	timeout time.Duration

	mu            sync.Mutex
	state         *hand.TableState
	notifications []string
	timer         *time.Timer
	closed        bool
	inflight      sync.WaitGroup

	sendMu sync.Mutex // 上传按顺序进行
}

var _ hand.Publisher = (*Publisher)(nil)

// NewPublisher 创建同步器，delay 非正时使用 DefaultSyncDelay
func NewPublisher(client *Client, delay time.Duration) *Publisher {
	if delay <= 0 {
		delay = DefaultSyncDelay
	}
	return &Publisher{
		client:  client,
		delay:   delay,
		timeout: 5 * time.Second,
	}
}

// Publish 记录最新状态，窗口内没有待发送的同步时开启一个窗口
func (p *Publisher) Publish(state *hand.TableState, notifications []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || state == nil {
		return
	}
	p.state = state
	p.notifications = slices.Clone(notifications)
	if p.timer != nil {
		return
	}
	p.inflight.Add(1)
	p.timer = time.AfterFunc(p.delay, p.fire)
}

func (p *Publisher) fire() {
	defer p.inflight.Done()

	p.mu.Lock()
	state, notes := p.state, p.notifications
	p.timer = nil
	p.mu.Unlock()

	p.send(state, notes)
}

func (p *Publisher) send(state *hand.TableState, notes []string) {
	if state == nil {
		return
	}
	if notes == nil {
		notes = []string{}
	}

	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	resp, err := p.client.PublishState(ctx, state, notes)
	if err != nil {
		logger.LogError("状态同步失败: %v", err)
		return
	}
	logger.LogDebug("状态已同步 table=%s version=%d", p.client.TableID(), resp.Version)
}

// Flush 立即上传待发送的状态并等待进行中的上传结束
func (p *Publisher) Flush() {
	p.mu.Lock()
	var state *hand.TableState
	var notes []string
	if p.timer != nil && p.timer.Stop() {
		state, notes = p.state, p.notifications
		p.timer = nil
		p.inflight.Done()
	}
	p.mu.Unlock()

	p.send(state, notes)
	p.inflight.Wait()
}

// Close 上传剩余状态后停止接收新的状态
func (p *Publisher) Close() {
	p.Flush()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
