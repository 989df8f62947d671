package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/holdem-table/internal/config"
	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/server/handler"
	"github.com/palemoky/holdem-table/internal/server/storage"
)

// Server 状态复制服务
type Server struct {
	config  *config.Config
	redis   *redis.Client
	store   *storage.RedisStore
	handler *handler.Handler

	// 安全组件
	rateLimiter   *RateLimiter
	originChecker *OriginChecker
	upgrader      websocket.Upgrader

	// websocket 关注者
	followers   map[*Follower]struct{}
	followersMu sync.RWMutex

	httpServer *http.Server
}

// NewServer 创建服务器实例并检查 Redis 连接
func NewServer(cfg *config.Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	return New(cfg, rdb), nil
}

// New 使用已有的 Redis 客户端创建服务器
func New(cfg *config.Config, rdb *redis.Client) *Server {
	s := &Server{
		config: cfg,
		redis:  rdb,
		store: storage.NewRedisStore(rdb,
			cfg.Replication.SnapshotTTLDuration(),
			cfg.Replication.ActionTTLDuration(),
		),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker: NewOriginChecker(cfg.Server.AllowedOrigins),
		followers:     make(map[*Follower]struct{}),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Store:         s.store,
		ActionLimiter: s.rateLimiter,
		ClientIP:      GetClientIP,
	})

	logger.LogInfo("🔒 安全配置: 动作限制=%d/s %d/min, 封禁=%s, 来源白名单=%v",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.RateLimit.MaxPerMinute,
		cfg.Security.RateLimit.BanDurationTime(), cfg.Server.AllowedOrigins)

	return s
}

// Routes 返回完整的路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/", s.handler)
	return mux
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	go s.monitorStats(ctx)

	logger.LogInfo("🚀 服务器启动在 http://%s (CPU核心数: %d)", addr, runtime.NumCPU())
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		logger.LogError("健康检查失败: %v", err)
		http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
