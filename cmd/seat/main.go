package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/protocol"
	"github.com/palemoky/holdem-table/internal/remote"
	"github.com/palemoky/holdem-table/internal/ui"
)

// 远程座位控制器：跟随牌桌快照，提交本座位的动作
func main() {
	serverURL := flag.String("server", "http://localhost:1780", "复制服务地址")
	tableID := flag.String("table", protocol.DefaultTableID, "牌桌 ID")
	seat := flag.Int("seat", 0, "座位号")
	poll := flag.Duration("poll", 0, "轮询间隔，0 表示使用 websocket 推送")
	logDir := flag.String("log-dir", os.TempDir(), "日志目录")
	flag.Parse()

	// 界面占用终端，日志只写文件
	if err := logger.Init(*logDir, "seat"); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.FileOnly()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := remote.NewClient(*serverURL, *tableID)
	submit := func(kind betting.Kind, amount int64) error {
		reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, err := client.Submit(reqCtx, betting.Action{Seat: *seat, Kind: kind, Amount: amount})
		return err
	}

	p := tea.NewProgram(ui.NewSeatModel(client.TableID(), *seat, submit), tea.WithAltScreen())

	go func() {
		onSnapshot := func(snap *protocol.Snapshot) { p.Send(ui.SnapshotMsg{Snapshot: snap}) }
		var err error
		if *poll > 0 {
			err = remote.Watch(ctx, client, *poll, onSnapshot)
		} else {
			err = remote.Follow(ctx, client, onSnapshot)
		}
		if err != nil && ctx.Err() == nil {
			logger.LogError("跟随牌桌失败: %v", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "界面运行失败: %v\n", err)
		os.Exit(1)
	}
}
