package protocol

import "encoding/json"

// Message websocket 帧
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 服务端 → 客户端
const (
	MsgSnapshot MessageType = "snapshot" // 牌桌快照
	MsgPong     MessageType = "pong"     // 心跳 pong
	MsgError    MessageType = "error"    // 错误消息
)

// 客户端 → 服务端
const (
	MsgPing MessageType = "ping" // 心跳 ping
)

// NewMessage 创建消息
func NewMessage(t MessageType, payload any) (*Message, error) {
	msg := &Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg.Payload = data
	return msg, nil
}

// Decode 解析负载
func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}
