package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/holdem-table/internal/protocol"
	"github.com/palemoky/holdem-table/internal/protocol/convert"
)

const (
	// Redis key 前缀
	tableKeyPrefix = "table:"
	stateKeySuffix = ":state"

	// 默认过期时间
	DefaultSnapshotTTL = 24 * time.Hour
	DefaultActionTTL   = 5 * time.Minute

	// 乐观事务冲突时的重试次数
	maxTxRetries = 16

	// 与 JavaScript Date.toISOString 相同的格式
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

// ErrConflict 并发写入冲突，重试后仍未成功
var ErrConflict = errors.New("snapshot write conflict")

// RedisStore 牌桌快照与动作信箱
type RedisStore struct {
	client      *redis.Client
	snapshotTTL time.Duration
	actionTTL   time.Duration
	now         func() time.Time
}

// NewRedisStore 创建 Redis 存储，非正 TTL 使用默认值
func NewRedisStore(client *redis.Client, snapshotTTL, actionTTL time.Duration) *RedisStore {
	if snapshotTTL <= 0 {
		snapshotTTL = DefaultSnapshotTTL
	}
	if actionTTL <= 0 {
		actionTTL = DefaultActionTTL
	}
	return &RedisStore{
		client:      client,
		snapshotTTL: snapshotTTL,
		actionTTL:   actionTTL,
		now:         time.Now,
	}
}

func stateKey(tableID string) string {
	return tableKeyPrefix + tableID + stateKeySuffix
}

func actionKey(tableID string, seat int) string {
	return tableKeyPrefix + tableID + ":action:" + strconv.Itoa(seat)
}

// UpdatesChannel 快照更新的发布频道
func UpdatesChannel(tableID string) string {
	return tableKeyPrefix + tableID + ":updates"
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// --- 快照 ---

// SaveSnapshot 写入新版本快照：版本号为当前版本加一，省略通知时沿用上一版本的通知。
// 使用 WATCH 乐观事务，写入成功后在更新频道发布完整快照。
func (rs *RedisStore) SaveSnapshot(ctx context.Context, tableID string, state json.RawMessage, notifications []string) (*protocol.Snapshot, error) {
	key := stateKey(tableID)
	var saved *protocol.Snapshot

	txf := func(tx *redis.Tx) error {
		current, err := loadSnapshot(ctx, tx, key)
		if err != nil {
			return err
		}

		snap := &protocol.Snapshot{
			State:         state,
			Notifications: notifications,
			UpdatedAt:     rs.now().UTC().Format(isoMillis),
			Version:       1,
		}
		if current != nil {
			snap.Version = current.Version + 1
			if snap.Notifications == nil {
				snap.Notifications = current.Notifications
			}
		}
		if snap.Notifications == nil {
			snap.Notifications = []string{}
		}
		if len(snap.Notifications) > protocol.MaxNotifications {
			snap.Notifications = slices.Clone(snap.Notifications[:protocol.MaxNotifications])
		}

		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("序列化快照失败: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, rs.snapshotTTL)
			pipe.Publish(ctx, UpdatesChannel(tableID), data)
			return nil
		})
		if err != nil {
			return err
		}
		saved = snap
		return nil
	}

	for range maxTxRetries {
		err := rs.client.Watch(ctx, txf, key)
		if err == nil {
			return saved, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

// LoadSnapshot 读取快照，不存在时返回 nil
func (rs *RedisStore) LoadSnapshot(ctx context.Context, tableID string) (*protocol.Snapshot, error) {
	return loadSnapshot(ctx, rs.client, stateKey(tableID))
}

func loadSnapshot(ctx context.Context, c redis.Cmdable, key string) (*protocol.Snapshot, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 快照不存在
		}
		return nil, err
	}

	var snap protocol.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("反序列化快照失败: %w", err)
	}
	return &snap, nil
}

// ListTables 列出仍有快照的牌桌
func (rs *RedisStore) ListTables(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, tableKeyPrefix+"*"+stateKeySuffix).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimSuffix(strings.TrimPrefix(key, tableKeyPrefix), stateKeySuffix)
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Subscribe 订阅牌桌快照更新，返回前确认订阅已生效
func (rs *RedisStore) Subscribe(ctx context.Context, tableID string) (*redis.PubSub, error) {
	ps := rs.client.Subscribe(ctx, UpdatesChannel(tableID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	return ps, nil
}

// --- 动作信箱 ---

// SaveAction 写入座位的待处理动作，覆盖之前未取走的动作
func (rs *RedisStore) SaveAction(ctx context.Context, tableID string, seat int, action string, amount int64) (*protocol.ActionRecord, error) {
	rec := convert.ActionToRecord(action, amount, rs.now())
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("序列化动作失败: %w", err)
	}
	if err := rs.client.Set(ctx, actionKey(tableID, seat), data, rs.actionTTL).Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LoadAction 读取座位的待处理动作，不存在时返回 nil。读取不会删除动作。
func (rs *RedisStore) LoadAction(ctx context.Context, tableID string, seat int) (*protocol.ActionRecord, error) {
	data, err := rs.client.Get(ctx, actionKey(tableID, seat)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var rec protocol.ActionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("反序列化动作失败: %w", err)
	}
	return &rec, nil
}

// DeleteAction 删除座位的待处理动作
func (rs *RedisStore) DeleteAction(ctx context.Context, tableID string, seat int) error {
	return rs.client.Del(ctx, actionKey(tableID, seat)).Err()
}
