package handler

import (
	"net/http"

	"github.com/palemoky/holdem-table/internal/apperrors"
	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/protocol/codec"
	"github.com/palemoky/holdem-table/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Store types.Store
	// ActionLimiter 限制 POST /action 的频率，可为 nil
	ActionLimiter types.RateLimiter
	// ClientIP 提取限流使用的客户端标识
	ClientIP func(r *http.Request) string
}

// Handler /state 与 /action 的 HTTP 处理器
type Handler struct {
	store         types.Store
	actionLimiter types.RateLimiter
	clientIP      func(r *http.Request) string
	routes        map[string]map[string]handlerFunc
}

// handlerFunc 统一的处理器函数签名，返回的错误映射为状态码与纯文本响应
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		store:         deps.Store,
		actionLimiter: deps.ActionLimiter,
		clientIP:      deps.ClientIP,
	}
	if h.clientIP == nil {
		h.clientIP = func(r *http.Request) string { return r.RemoteAddr }
	}
	h.initRoutes()
	return h
}

// initRoutes 初始化路由映射
func (h *Handler) initRoutes() {
	h.routes = map[string]map[string]handlerFunc{
		"/state": {
			http.MethodGet:  h.handleGetState,
			http.MethodPost: h.handlePostState,
		},
		"/action": {
			http.MethodGet:    h.handleGetAction,
			http.MethodPost:   h.limited(h.handlePostAction),
			http.MethodDelete: h.handleDeleteAction,
		},
	}
}

// ServeHTTP 所有响应都带 CORS 头，OPTIONS 对任意路径返回 204
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	SetCORS(w.Header())

	defer func() {
		if rec := recover(); rec != nil {
			logger.LogPanic(rec)
			WriteError(w, apperrors.ErrInternal)
		}
	}()

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	methods, ok := h.routes[r.URL.Path]
	if !ok {
		WriteError(w, apperrors.ErrNotFound)
		return
	}
	fn, ok := methods[r.Method]
	if !ok {
		WriteError(w, apperrors.ErrMethodNotAllowed)
		return
	}

	if err := fn(w, r); err != nil {
		status, _ := apperrors.StatusOf(err)
		if status >= http.StatusInternalServerError {
			logger.LogError("%s %s 失败: %v", r.Method, r.URL.Path, err)
		}
		WriteError(w, err)
	}
}

// limited 按客户端 IP 限流
func (h *Handler) limited(fn handlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if h.actionLimiter != nil && !h.actionLimiter.Allow(h.clientIP(r)) {
			return apperrors.ErrTooManyRequests
		}
		return fn(w, r)
	}
}

// SetCORS 写入跨域响应头
func SetCORS(header http.Header) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

// WriteError 写入纯文本错误响应
func WriteError(w http.ResponseWriter, err error) {
	status, msg := apperrors.StatusOf(err)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, v any) error {
	data, err := codec.EncodeJSON(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return nil
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
