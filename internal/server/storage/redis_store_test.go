package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/holdem-table/internal/protocol"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, 0, 0)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return store, mr
}

func TestRedisStore_SnapshotVersions(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	// 不存在
	snap, err := store.LoadSnapshot(ctx, "t1")
	assert.NoError(t, err)
	assert.Nil(t, snap)

	for i := 1; i <= 3; i++ {
		state := json.RawMessage(fmt.Sprintf(`{"pot":%d}`, i*10))
		saved, err := store.SaveSnapshot(ctx, "t1", state, []string{"msg"})
		require.NoError(t, err)
		assert.Equal(t, int64(i), saved.Version)
		assert.Equal(t, "2023-11-14T22:13:20.123Z", saved.UpdatedAt)
	}

	snap, err = store.LoadSnapshot(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(3), snap.Version)
	assert.JSONEq(t, `{"pot":30}`, string(snap.State))

	// 其他牌桌的版本独立计数
	other, err := store.SaveSnapshot(ctx, "t2", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Version)
}

func TestRedisStore_NotificationsFallback(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	first, err := store.SaveSnapshot(ctx, "t1", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, first.Notifications)

	_, err = store.SaveSnapshot(ctx, "t1", json.RawMessage(`{}`), []string{"A folded.", "B checked."})
	require.NoError(t, err)

	// 省略通知：沿用上一版本
	third, err := store.SaveSnapshot(ctx, "t1", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A folded.", "B checked."}, third.Notifications)

	// 显式空列表：清空
	fourth, err := store.SaveSnapshot(ctx, "t1", json.RawMessage(`{}`), []string{})
	require.NoError(t, err)
	assert.Empty(t, fourth.Notifications)

	long := make([]string, 12)
	for i := range long {
		long[i] = fmt.Sprintf("n%d", i)
	}
	fifth, err := store.SaveSnapshot(ctx, "t1", json.RawMessage(`{}`), long)
	require.NoError(t, err)
	assert.Len(t, fifth.Notifications, protocol.MaxNotifications)
	assert.Equal(t, "n0", fifth.Notifications[0])
}

func TestRedisStore_SnapshotTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	_, err := store.SaveSnapshot(ctx, "t1", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSnapshotTTL, mr.TTL("table:t1:state"))

	mr.FastForward(DefaultSnapshotTTL + time.Second)
	snap, err := store.LoadSnapshot(ctx, "t1")
	assert.NoError(t, err)
	assert.Nil(t, snap)

	// 过期后重新从版本 1 开始
	saved, err := store.SaveSnapshot(ctx, "t1", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)
}

func TestRedisStore_ListTables(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	for _, id := range []string{"beta", "alpha"} {
		_, err := store.SaveSnapshot(ctx, id, json.RawMessage(`{}`), nil)
		require.NoError(t, err)
	}
	_, err := store.SaveAction(ctx, "gamma", 1, "fold", 0)
	require.NoError(t, err)

	ids, err := store.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, ids)
}

func TestRedisStore_ActionMailbox(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	rec, err := store.LoadAction(ctx, "t1", 0)
	assert.NoError(t, err)
	assert.Nil(t, rec)

	saved, err := store.SaveAction(ctx, "t1", 0, "raise", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), saved.Timestamp)
	assert.Equal(t, DefaultActionTTL, mr.TTL("table:t1:action:0"))

	// 新动作覆盖旧动作
	_, err = store.SaveAction(ctx, "t1", 0, "call", 0)
	require.NoError(t, err)

	rec, err = store.LoadAction(ctx, "t1", 0)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "call", rec.Action)

	// 读取不会删除
	rec, err = store.LoadAction(ctx, "t1", 0)
	require.NoError(t, err)
	assert.NotNil(t, rec)

	// 其他座位不受影响
	rec, err = store.LoadAction(ctx, "t1", 1)
	assert.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.DeleteAction(ctx, "t1", 0))
	rec, err = store.LoadAction(ctx, "t1", 0)
	assert.NoError(t, err)
	assert.Nil(t, rec)

	// 删除不存在的动作不报错
	assert.NoError(t, store.DeleteAction(ctx, "t1", 5))
}

func TestRedisStore_ActionTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	_, err := store.SaveAction(ctx, "t1", 2, "fold", 0)
	require.NoError(t, err)

	mr.FastForward(DefaultActionTTL + time.Second)
	rec, err := store.LoadAction(ctx, "t1", 2)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRedisStore_Subscribe(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps, err := store.Subscribe(ctx, "t1")
	require.NoError(t, err)
	defer ps.Close()

	_, err = store.SaveSnapshot(ctx, "t1", json.RawMessage(`{"pot":15}`), []string{"hi"})
	require.NoError(t, err)

	select {
	case msg := <-ps.Channel():
		assert.Equal(t, UpdatesChannel("t1"), msg.Channel)
		var snap protocol.Snapshot
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &snap))
		assert.Equal(t, int64(1), snap.Version)
		assert.Equal(t, []string{"hi"}, snap.Notifications)
	case <-ctx.Done():
		t.Fatal("no update published")
	}
}

func TestRedisStore_Ping(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
