package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palemoky/holdem-table/internal/config"
	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	logDir := flag.String("log-dir", "", "日志目录，为空时只输出到标准错误")
	verbose := flag.Bool("verbose", false, "输出 DEBUG 日志")
	flag.Parse()

	if err := logger.Init(*logDir, "server"); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.SetVerbose(*verbose)

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.LogError("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.LogError("创建服务器失败: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 优雅关闭
	go func() {
		<-ctx.Done()
		logger.LogInfo("正在关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.LogError("关闭服务器失败: %v", err)
		}
	}()

	logger.LogInfo("♠️ 牌桌状态复制服务启动中...")
	if err := srv.Start(ctx); err != nil {
		logger.LogError("服务器启动失败: %v", err)
		os.Exit(1)
	}
}
