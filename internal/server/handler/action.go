package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/palemoky/holdem-table/internal/apperrors"
	"github.com/palemoky/holdem-table/internal/protocol"
)

// --- /action ---

// handlePostAction 写入座位动作，覆盖未取走的旧动作
func (h *Handler) handlePostAction(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}

	var req protocol.ActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.ErrInvalidJSON
	}

	if req.TableID == "" {
		return apperrors.ErrMissingTableID
	}
	seat, ok := req.Seat()
	if !ok {
		return apperrors.ErrBadSeatIndex
	}
	if !req.ValidAction() {
		return apperrors.ErrInvalidAction
	}

	rec, err := h.store.SaveAction(r.Context(), req.TableID, seat, req.Action, req.Amount)
	if err != nil {
		return fmt.Errorf("保存动作失败: %w", err)
	}
	return writeJSON(w, protocol.ActionResponse{OK: true, ActionRecord: *rec})
}

// handleGetAction 读取座位动作，不删除；没有动作时返回 204
func (h *Handler) handleGetAction(w http.ResponseWriter, r *http.Request) error {
	tableID, seat, err := seatQuery(r)
	if err != nil {
		return err
	}

	rec, err := h.store.LoadAction(r.Context(), tableID, seat)
	if err != nil {
		return fmt.Errorf("读取动作失败: %w", err)
	}
	if rec == nil {
		writeNoContent(w)
		return nil
	}
	return writeJSON(w, rec)
}

// handleDeleteAction 删除座位动作
func (h *Handler) handleDeleteAction(w http.ResponseWriter, r *http.Request) error {
	tableID, seat, err := seatQuery(r)
	if err != nil {
		return err
	}

	if err := h.store.DeleteAction(r.Context(), tableID, seat); err != nil {
		return fmt.Errorf("删除动作失败: %w", err)
	}
	return writeJSON(w, protocol.OKResponse{OK: true})
}

// seatQuery 解析 tableId 与 seatIndex 查询参数
func seatQuery(r *http.Request) (string, int, error) {
	q := r.URL.Query()
	tableID := q.Get("tableId")
	if tableID == "" {
		return "", 0, apperrors.ErrMissingTableID
	}
	param := q.Get("seatIndex")
	if param == "" {
		return "", 0, apperrors.ErrMissingSeatIndex
	}
	seat, ok := parseIntPrefix(param)
	if !ok {
		return "", 0, apperrors.ErrInvalidSeatIndex
	}
	return tableID, int(seat), nil
}

// parseIntPrefix 解析开头的十进制整数，忽略其后的字符（"3abc" 解析为 3）
func parseIntPrefix(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
