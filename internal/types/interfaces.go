package types

import (
	"context"
	"encoding/json"

	"github.com/palemoky/holdem-table/internal/protocol"
)

// SnapshotStore 牌桌快照存储（用于打破 handler 与 storage 的依赖）
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, tableID string, state json.RawMessage, notifications []string) (*protocol.Snapshot, error)
	LoadSnapshot(ctx context.Context, tableID string) (*protocol.Snapshot, error)
}

// ActionStore 座位动作信箱
type ActionStore interface {
	SaveAction(ctx context.Context, tableID string, seat int, action string, amount int64) (*protocol.ActionRecord, error)
	LoadAction(ctx context.Context, tableID string, seat int) (*protocol.ActionRecord, error)
	DeleteAction(ctx context.Context, tableID string, seat int) error
}

// Store 复制服务使用的完整存储
type Store interface {
	SnapshotStore
	ActionStore
	Ping(ctx context.Context) error
}

// RateLimiter 速率限制器接口
type RateLimiter interface {
	Allow(key string) bool
}
