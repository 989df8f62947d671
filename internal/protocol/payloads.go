package protocol

import (
	"encoding/json"
	"math"
	"slices"
)

// DefaultTableID 未指定 tableId 时使用的牌桌
const DefaultTableID = "default"

// MaxNotifications 快照中保留的通知条数
const MaxNotifications = 8

// ValidActions 可提交的动作
var ValidActions = []string{"fold", "check", "call", "raise", "allin"}

// --- /state ---

// StateRequest POST /state 请求体
type StateRequest struct {
	TableID       string          `json:"tableId"`
	State         json.RawMessage `json:"state"`
	Notifications []string        `json:"notifications"` // 省略时沿用上一版本
}

// HasState 请求是否携带 state 字段（null 也算携带）
func (r *StateRequest) HasState() bool {
	return len(r.State) > 0
}

// Table 目标牌桌，缺省为 default
func (r *StateRequest) Table() string {
	if r.TableID == "" {
		return DefaultTableID
	}
	return r.TableID
}

// StateResponse POST /state 响应
type StateResponse struct {
	OK        bool   `json:"ok"`
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updatedAt"`
}

// Snapshot 复制服务保存的牌桌快照
type Snapshot struct {
	State         json.RawMessage `json:"state"`
	Notifications []string        `json:"notifications"`
	UpdatedAt     string          `json:"updatedAt"`
	Version       int64           `json:"version"`
}

// --- /action ---

// ActionRequest POST /action 请求体。SeatIndex 必须是 JSON 数字。
type ActionRequest struct {
	TableID   string `json:"tableId"`
	SeatIndex any    `json:"seatIndex"`
	Action    string `json:"action"`
	Amount    int64  `json:"amount"`
}

// Seat 解析座位号，非整数时返回 false
func (r *ActionRequest) Seat() (int, bool) {
	f, ok := r.SeatIndex.(float64)
	if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ValidAction 动作是否合法
func (r *ActionRequest) ValidAction() bool {
	return slices.Contains(ValidActions, r.Action)
}

// ActionRecord 动作信箱中的一条动作
type ActionRecord struct {
	Action    string `json:"action"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"` // unix ms
}

// ActionResponse POST /action 响应
type ActionResponse struct {
	OK bool `json:"ok"`
	ActionRecord
}

// OKResponse 通用成功响应
type OKResponse struct {
	OK bool `json:"ok"`
}
