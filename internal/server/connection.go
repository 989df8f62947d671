package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/protocol"
	"github.com/palemoky/holdem-table/internal/protocol/codec"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 16
)

// Follower 通过 websocket 关注一张牌桌的客户端
type Follower struct {
	conn    *websocket.Conn
	tableID string
	ip      string
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

func newFollower(conn *websocket.Conn, tableID, ip string) *Follower {
	return &Follower{
		conn:    conn,
		tableID: tableID,
		ip:      ip,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
	}
}

// Close 关闭连接，可重复调用
func (f *Follower) Close() {
	f.once.Do(func() {
		close(f.done)
		_ = f.conn.Close()
	})
}

// enqueue 非阻塞发送，缓冲区满时丢弃（客户端按版本号追赶）
func (f *Follower) enqueue(frame []byte) {
	select {
	case f.send <- frame:
	case <-f.done:
	default:
		logger.LogDebug("关注者 %s 发送缓冲区已满，丢弃一帧", f.ip)
	}
}

// handleWebSocket 推送牌桌快照：连接后先发送当前快照，之后转发每次更新
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	tableID := r.URL.Query().Get("tableId")
	if tableID == "" {
		tableID = protocol.DefaultTableID
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.LogError("WebSocket 升级失败 (IP: %s): %v", clientIP, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ps, err := s.store.Subscribe(ctx, tableID)
	if err != nil {
		cancel()
		logger.LogError("订阅牌桌 %s 失败: %v", tableID, err)
		_ = conn.Close()
		return
	}

	f := newFollower(conn, tableID, clientIP)
	s.registerFollower(f)
	logger.LogInfo("✅ 关注者 %s 已连接牌桌 %s", clientIP, tableID)

	if snap, err := s.store.LoadSnapshot(ctx, tableID); err != nil {
		logger.LogError("读取牌桌 %s 快照失败: %v", tableID, err)
	} else if snap != nil {
		if frame, err := codec.EncodeJSON(snap); err == nil {
			f.enqueue(snapshotFrame(frame))
		}
	}

	go f.writePump()

	// 转发 Redis 更新
	go func() {
		ch := ps.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					f.Close()
					return
				}
				f.enqueue(snapshotFrame([]byte(msg.Payload)))
			case <-f.done:
				return
			}
		}
	}()

	go func() {
		f.readPump()
		f.Close()
		cancel()
		_ = ps.Close()
		s.unregisterFollower(f)
		logger.LogInfo("❌ 关注者 %s 已断开牌桌 %s", clientIP, tableID)
	}()
}

// snapshotFrame 把快照 JSON 包装成 websocket 帧
func snapshotFrame(snapshot []byte) []byte {
	frame, err := codec.EncodeJSON(&protocol.Message{Type: protocol.MsgSnapshot, Payload: snapshot})
	if err != nil {
		return nil
	}
	return frame
}

// readPump 读取客户端消息，只处理心跳
func (f *Follower) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()

	f.conn.SetReadLimit(maxMessageSize)
	_ = f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		return f.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.LogDebug("关注者 %s 读取错误: %v", f.ip, err)
			}
			return
		}

		msg, err := codec.DecodeMessage(data)
		if err != nil {
			logger.LogDebug("消息解析错误: %v", err)
			continue
		}
		if msg.Type == protocol.MsgPing {
			pong, _ := protocol.NewMessage(protocol.MsgPong, nil)
			if frame, err := codec.EncodeJSON(pong); err == nil {
				f.enqueue(frame)
			}
		}
		codec.PutMessage(msg)
	}
}

// writePump 写入消息并定期发送 ping
func (f *Follower) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		f.Close()
	}()

	for {
		select {
		case frame := <-f.send:
			if frame == nil {
				continue
			}
			_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-f.done:
			_ = f.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		}
	}
}
