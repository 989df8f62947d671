package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/holdem-table/internal/config"
	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/hand"
	"github.com/palemoky/holdem-table/internal/protocol"
	"github.com/palemoky/holdem-table/internal/server"
)

// newTestService 启动完整的复制服务（miniredis 作为存储）
func newTestService(t *testing.T) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ts := httptest.NewServer(server.New(config.Default(), rdb).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_State(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	ctx := context.Background()
	c := NewClient(ts.URL+"/", "t1")

	_, err := c.FetchState(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	resp, err := c.PublishState(ctx, &hand.TableState{Pot: 30, Phase: "preflop"}, []string{"A is Dealer."})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, int64(1), resp.Version)

	snap, err := c.FetchState(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, []string{"A is Dealer."}, snap.Notifications)

	var state hand.TableState
	require.NoError(t, json.Unmarshal(snap.State, &state))
	assert.Equal(t, int64(30), state.Pot)

	// 没有更新
	snap, err = c.FetchState(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, snap)
}

func TestClient_Actions(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	ctx := context.Background()
	c := NewClient(ts.URL, "t1")

	rec, err := c.FetchAction(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, rec)

	resp, err := c.SubmitAction(ctx, 2, "raise", 80)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "raise", resp.Action)

	rec, err = c.FetchAction(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(80), rec.Amount)

	require.NoError(t, c.DeleteAction(ctx, 2))
	rec, err = c.FetchAction(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = c.SubmitAction(ctx, 2, "bet", 0)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "Missing or invalid action", se.Body)
}

func TestClient_Submit(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	ctx := context.Background()
	c := NewClient(ts.URL, "t1")

	resp, err := c.Submit(ctx, betting.Action{Seat: 3, Kind: betting.AllIn})
	require.NoError(t, err)
	assert.Equal(t, "allin", resp.Action)

	a, err := NewActionPoller(c, 10*time.Millisecond).Await(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, betting.Action{Seat: 3, Kind: betting.AllIn}, a)
}

func TestClient_DefaultTable(t *testing.T) {
	t.Parallel()

	c := NewClient("http://localhost:1780/", "")
	assert.Equal(t, protocol.DefaultTableID, c.TableID())
	assert.Equal(t, "http://localhost:1780", c.BaseURL())
}

func TestPublisher_Coalesces(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	c := NewClient(ts.URL, "t1")
	p := NewPublisher(c, 50*time.Millisecond)

	for pot := int64(10); pot <= 50; pot += 10 {
		p.Publish(&hand.TableState{Pot: pot}, []string{"n"})
	}

	require.Eventually(t, func() bool {
		s, err := c.FetchState(context.Background(), 0)
		return err == nil && s != nil
	}, 2*time.Second, 20*time.Millisecond)

	// 一个窗口内只上传一次，内容为最新状态
	time.Sleep(150 * time.Millisecond)
	snap, err := c.FetchState(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	var state hand.TableState
	require.NoError(t, json.Unmarshal(snap.State, &state))
	assert.Equal(t, int64(50), state.Pot)

	// 下一个窗口
	p.Publish(&hand.TableState{Pot: 60}, nil)
	p.Flush()
	snap, err = c.FetchState(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(2), snap.Version)
	assert.Empty(t, snap.Notifications)
}

func TestPublisher_FlushAndClose(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	c := NewClient(ts.URL, "t1")
	p := NewPublisher(c, time.Hour)

	p.Publish(&hand.TableState{Pot: 15}, []string{"B posts big blind 10."})
	p.Close()

	snap, err := c.FetchState(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)

	// 关闭后不再上传
	p.Publish(&hand.TableState{Pot: 99}, nil)
	p.Flush()
	snap, err = c.FetchState(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, snap)
}

func TestActionPoller_Await(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	c := NewClient(ts.URL, "t1")
	poller := NewActionPoller(c, 20*time.Millisecond)

	go func() {
		time.Sleep(60 * time.Millisecond)
		_, _ = c.SubmitAction(context.Background(), 1, "call", 0)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	a, err := poller.Await(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, betting.Action{Seat: 1, Kind: betting.Call}, a)

	// 取走后信箱被清空
	rec, err := c.FetchAction(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestActionPoller_Cancelled(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	poller := NewActionPoller(NewClient(ts.URL, "t1"), 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := poller.Await(ctx, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestActionPoller_ServiceDown(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	c := NewClient(ts.URL, "t1")
	ts.Close()

	// 请求失败只记录日志，直到 ctx 结束
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := NewActionPoller(c, 10*time.Millisecond).Await(ctx, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type collector struct {
	mu    sync.Mutex
	snaps []*protocol.Snapshot
}

func (c *collector) add(s *protocol.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, s)
}

func (c *collector) versions() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, 0, len(c.snaps))
	for _, s := range c.snaps {
		out = append(out, s.Version)
	}
	return out
}

func TestWatch(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	c := NewClient(ts.URL, "t1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got collector
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, c, 20*time.Millisecond, got.add) }()

	_, err := c.PublishState(context.Background(), map[string]int{"pot": 1}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(got.versions()) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = c.PublishState(context.Background(), map[string]int{"pot": 2}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(got.versions()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int64{1, 2}, got.versions())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFollow(t *testing.T) {
	t.Parallel()
	ts := newTestService(t)
	c := NewClient(ts.URL, "t1")

	_, err := c.PublishState(context.Background(), map[string]int{"pot": 1}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got collector
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, c, got.add) }()

	// 连接后先收到当前快照
	require.Eventually(t, func() bool { return len(got.versions()) == 1 }, 3*time.Second, 10*time.Millisecond)

	_, err = c.PublishState(context.Background(), map[string]int{"pot": 2}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(got.versions()) == 2 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int64{1, 2}, got.versions())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}

func TestWebSocketURL(t *testing.T) {
	t.Parallel()

	u, err := WebSocketURL("http://localhost:1780", "t1")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:1780/ws?tableId=t1", u)

	u, err = WebSocketURL("https://poker.example.com/api/", "a b")
	require.NoError(t, err)
	assert.Equal(t, "wss://poker.example.com/api/ws?tableId=a+b", u)
}
