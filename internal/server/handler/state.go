package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/palemoky/holdem-table/internal/apperrors"
	"github.com/palemoky/holdem-table/internal/protocol"
)

// maxBodyBytes 请求体大小上限
const maxBodyBytes = 1 << 20

// --- /state ---

// handleGetState 读取快照，sinceVersion 不小于当前版本时返回 204
func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	tableID := q.Get("tableId")
	if tableID == "" {
		tableID = protocol.DefaultTableID
	}

	snap, err := h.store.LoadSnapshot(r.Context(), tableID)
	if err != nil {
		return fmt.Errorf("读取快照失败: %w", err)
	}
	if snap == nil {
		return apperrors.ErrNotFound
	}

	if since, ok := parseIntPrefix(q.Get("sinceVersion")); ok && snap.Version <= since {
		writeNoContent(w)
		return nil
	}
	return writeJSON(w, snap)
}

// handlePostState 写入新版本快照
func (h *Handler) handlePostState(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}

	var req protocol.StateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		// 合法 JSON 但不是对象时视为缺少 state
		return apperrors.ErrMissingState
	}
	if !req.HasState() {
		return apperrors.ErrMissingState
	}

	snap, err := h.store.SaveSnapshot(r.Context(), req.Table(), req.State, req.Notifications)
	if err != nil {
		return fmt.Errorf("保存快照失败: %w", err)
	}
	return writeJSON(w, protocol.StateResponse{
		OK:        true,
		Version:   snap.Version,
		UpdatedAt: snap.UpdatedAt,
	})
}

// readBody 读取请求体并校验是否为合法 JSON
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || !json.Valid(body) {
		return nil, apperrors.ErrInvalidJSON
	}
	return body, nil
}
