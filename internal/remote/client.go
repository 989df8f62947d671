package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/protocol"
	"github.com/palemoky/holdem-table/internal/protocol/codec"
	"github.com/palemoky/holdem-table/internal/protocol/convert"
)

// ErrNotFound 牌桌还没有快照
var ErrNotFound = errors.New("table has no snapshot")

// StatusError 服务返回的非预期状态码
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("replication service returned %d: %s", e.Status, e.Body)
}

// Client 复制服务的 HTTP 客户端，绑定一张牌桌
type Client struct {
	baseURL string
	tableID string
	http    *http.Client
}

// NewClient 创建客户端，tableID 为空时使用 default
func NewClient(baseURL, tableID string) *Client {
	if tableID == "" {
		tableID = protocol.DefaultTableID
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tableID: tableID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// TableID 绑定的牌桌
func (c *Client) TableID() string { return c.tableID }

// BaseURL 服务地址
func (c *Client) BaseURL() string { return c.baseURL }

// PublishState 上传一版牌桌状态，notifications 为 nil 时服务端沿用上一版本的通知
func (c *Client) PublishState(ctx context.Context, state any, notifications []string) (*protocol.StateResponse, error) {
	raw, err := codec.EncodeJSON(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	req := protocol.StateRequest{
		TableID:       c.tableID,
		State:         raw,
		Notifications: notifications,
	}

	var resp protocol.StateResponse
	if _, err := c.do(ctx, http.MethodPost, "/state", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchState 读取比 sinceVersion 新的快照，没有更新时返回 nil
func (c *Client) FetchState(ctx context.Context, sinceVersion int64) (*protocol.Snapshot, error) {
	q := url.Values{
		"tableId":      {c.tableID},
		"sinceVersion": {strconv.FormatInt(sinceVersion, 10)},
	}

	var snap protocol.Snapshot
	status, err := c.do(ctx, http.MethodGet, "/state", q, nil, &snap)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &snap, nil
}

// SubmitAction 为座位提交动作，覆盖未被取走的旧动作
func (c *Client) SubmitAction(ctx context.Context, seat int, action string, amount int64) (*protocol.ActionResponse, error) {
	return c.postAction(ctx, protocol.ActionRequest{
		TableID:   c.tableID,
		SeatIndex: seat,
		Action:    action,
		Amount:    amount,
	})
}

// Submit 提交一个下注动作
func (c *Client) Submit(ctx context.Context, a betting.Action) (*protocol.ActionResponse, error) {
	return c.postAction(ctx, convert.ActionToRequest(c.tableID, a))
}

func (c *Client) postAction(ctx context.Context, req protocol.ActionRequest) (*protocol.ActionResponse, error) {
	var resp protocol.ActionResponse
	if _, err := c.do(ctx, http.MethodPost, "/action", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchAction 读取座位的待处理动作，没有时返回 nil
func (c *Client) FetchAction(ctx context.Context, seat int) (*protocol.ActionRecord, error) {
	var rec protocol.ActionRecord
	status, err := c.do(ctx, http.MethodGet, "/action", c.seatQuery(seat), nil, &rec)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &rec, nil
}

// DeleteAction 删除座位的待处理动作
func (c *Client) DeleteAction(ctx context.Context, seat int) error {
	var resp protocol.OKResponse
	_, err := c.do(ctx, http.MethodDelete, "/action", c.seatQuery(seat), nil, &resp)
	return err
}

func (c *Client) seatQuery(seat int) url.Values {
	return url.Values{
		"tableId":   {c.tableID},
		"seatIndex": {strconv.Itoa(seat)},
	}
}

// do 发送请求，2xx 且有响应体时解析到 out；返回状态码
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) (int, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := codec.EncodeJSON(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	if resp.StatusCode == http.StatusNoContent || len(data) == 0 || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}
