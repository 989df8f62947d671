package server

import (
	"context"
	"runtime"
	"time"

	"github.com/palemoky/holdem-table/internal/logger"
)

// monitorStats 定期输出服务器状态并清理限流记录
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		removed := s.rateLimiter.Cleanup()
		tables, err := s.store.ListTables(ctx)
		if err != nil {
			logger.LogError("获取牌桌列表失败: %v", err)
		}

		logger.LogInfo("📊 [监控] 牌桌: %d | 关注者: %d | Goroutines: %d | 限流清理: %d | 内存: %.2f MB",
			len(tables),
			s.GetOnlineCount(),
			runtime.NumGoroutine(),
			removed,
			float64(m.Alloc)/1024/1024)

		for tableID, n := range s.followerCounts() {
			logger.LogDebug("📊 [监控] 牌桌 %s 关注者: %d", tableID, n)
		}
	}
}

// Shutdown 优雅关闭：停止接收请求，断开关注者，关闭 Redis
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.closeFollowers()
	_ = s.redis.Close()

	logger.LogInfo("服务器已关闭")
	return err
}
