package remote

import (
	"context"
	"time"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/hand"
	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/protocol/convert"
)

// DefaultPollInterval 动作信箱轮询间隔
const DefaultPollInterval = 800 * time.Millisecond

// ActionPoller 轮询座位的动作信箱，取到动作后删除
type ActionPoller struct {
	client   *Client
	interval time.Duration
}

var _ hand.ActionSource = (*ActionPoller)(nil)

// NewActionPoller 创建轮询器，interval 非正时使用 DefaultPollInterval
func NewActionPoller(client *Client, interval time.Duration) *ActionPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ActionPoller{client: client, interval: interval}
}

// Await 阻塞直到信箱里出现合法动作或 ctx 被取消。
// 请求失败与无法识别的动作只记录日志，继续轮询。
func (p *ActionPoller) Await(ctx context.Context, seat int) (betting.Action, error) {
	for {
		if a, ok := p.poll(ctx, seat); ok {
			return a, nil
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return betting.Action{}, ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *ActionPoller) poll(ctx context.Context, seat int) (betting.Action, bool) {
	rec, err := p.client.FetchAction(ctx, seat)
	if err != nil {
		if ctx.Err() == nil {
			logger.LogError("读取座位 %d 的远程动作失败: %v", seat, err)
		}
		return betting.Action{}, false
	}
	if rec == nil {
		return betting.Action{}, false
	}

	// 读取与删除不是原子的，期间提交的新动作会被一并删除
	if err := p.client.DeleteAction(ctx, seat); err != nil && ctx.Err() == nil {
		logger.LogError("删除座位 %d 的远程动作失败: %v", seat, err)
	}

	a, err := convert.RecordToAction(seat, rec)
	if err != nil {
		logger.LogError("座位 %d 的远程动作无效: %v", seat, err)
		return betting.Action{}, false
	}
	logger.LogDebug("收到座位 %d 的远程动作 %s %d", seat, a.Kind, a.Amount)
	return a, true
}
