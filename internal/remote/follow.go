package remote

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/protocol"
	"github.com/palemoky/holdem-table/internal/protocol/codec"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second

	// 重连退避
	reconnectInterval    = 1 * time.Second
	maxReconnectInterval = 30 * time.Second
)

// SnapshotFunc 收到新版本快照时调用
type SnapshotFunc func(*protocol.Snapshot)

// Watch 按 interval 轮询快照，只把更新的版本交给 fn，直到 ctx 结束
func Watch(ctx context.Context, c *Client, interval time.Duration, fn SnapshotFunc) error {
	var version int64
	for {
		snap, err := c.FetchState(ctx, version)
		switch {
		case err == nil && snap != nil && snap.Version > version:
			version = snap.Version
			fn(snap)
		case errors.Is(err, ErrNotFound):
			// 牌桌还没开始同步
		case err != nil && ctx.Err() == nil:
			logger.LogError("读取快照失败: %v", err)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// WebSocketURL 根据服务地址生成 /ws 地址
func WebSocketURL(baseURL, tableID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"tableId": {tableID}}.Encode()
	return u.String(), nil
}

// Follow 通过 websocket 接收快照推送，断线后指数退避重连，直到 ctx 结束。
// 重连后服务端会先推送当前快照，旧版本或重复版本会被跳过。
func Follow(ctx context.Context, c *Client, fn SnapshotFunc) error {
	wsURL, err := WebSocketURL(c.BaseURL(), c.TableID())
	if err != nil {
		return err
	}

	var version int64
	backoff := reconnectInterval
	for {
		connected, err := followOnce(ctx, wsURL, func(snap *protocol.Snapshot) {
			if snap.Version > version {
				version = snap.Version
				fn(snap)
			}
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = reconnectInterval
		}
		logger.LogError("快照推送连接断开，%s 后重连: %v", backoff, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, maxReconnectInterval)
	}
}

// followOnce 维持一条连接直到出错，返回是否曾经连上
func followOnce(ctx context.Context, wsURL string, fn SnapshotFunc) (bool, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return false, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := codec.DecodeMessage(data)
		if err != nil {
			logger.LogDebug("消息解析错误: %v", err)
			continue
		}
		if msg.Type == protocol.MsgSnapshot {
			var snap protocol.Snapshot
			if err := msg.Decode(&snap); err == nil {
				fn(&snap)
			}
		}
		codec.PutMessage(msg)
	}
}
