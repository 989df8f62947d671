package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/holdem-table/internal/config"
	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/bot"
	"github.com/palemoky/holdem-table/internal/game/hand"
	"github.com/palemoky/holdem-table/internal/game/table"
	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/notify"
	"github.com/palemoky/holdem-table/internal/protocol/convert"
	"github.com/palemoky/holdem-table/internal/remote"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	tableID := flag.String("table", "", "牌桌 ID，为空时随机生成")
	seed := flag.Uint64("seed", 0, "随机种子，0 表示使用当前时间")
	stdinSeat := flag.Int("stdin-seat", -1, "从标准输入读取该座位的动作（-1 关闭）")
	logDir := flag.String("log-dir", "", "日志目录，为空时只输出到标准错误")
	verbose := flag.Bool("verbose", false, "输出 DEBUG 日志")
	flag.Parse()

	if err := logger.Init(*logDir, "table"); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.SetVerbose(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.LogError("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	if *tableID == "" {
		*tableID = uuid.NewString()
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	champion, err := run(ctx, cfg, *tableID, *seed, *stdinSeat)
	switch {
	case errors.Is(err, context.Canceled):
		logger.LogInfo("牌桌 %s 已停止", *tableID)
	case err != nil:
		logger.LogError("牌桌 %s 异常结束: %v", *tableID, err)
		os.Exit(1)
	default:
		logger.LogInfo("🏆 牌桌 %s 冠军: %s", *tableID, champion.Name)
	}
}

func run(ctx context.Context, cfg *config.Config, tableID string, seed uint64, stdinSeat int) (*table.Player, error) {
	tc := cfg.Table
	players := make([]*table.Player, 0, len(tc.Seats))
	for i, seat := range tc.Seats {
		players = append(players, table.NewPlayer(i, seat.Name, tc.StartingChips, seat.Bot))
	}
	t := table.New(players, tc.SmallBlind, tc.BigBlind)

	notifier := notify.New(tc.NotifyInterval(), tc.MaxNotifications)
	notifier.OnDisplay(func(msg string) { fmt.Println(msg) })
	go func() { _ = notifier.Run(ctx) }()

	opts := hand.Options{
		Actors:        make(map[int]hand.Actor, len(players)),
		Notifier:      notifier,
		Rand:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		TransferDelay: tc.ChipTransferDelay(),
	}

	var client *remote.Client
	if tc.BackendURL != "" {
		client = remote.NewClient(tc.BackendURL, tableID)
		pub := remote.NewPublisher(client, tc.StateSyncDelay())
		defer pub.Close()
		opts.Publisher = pub
		logger.LogInfo("📡 同步到 %s (tableId=%s)", tc.BackendURL, tableID)
	}

	var local *hand.TurnInput
	if stdinSeat >= 0 {
		local = hand.NewTurnInput()
		go readInput(os.Stdin, os.Stdout, stdinSeat, local)
	}

	for i, p := range players {
		if p.Bot {
			opts.Actors[p.Seat] = bot.NewActor(bot.NewRuleDecider(seed+uint64(i)), tc.BotDelay())
			continue
		}
		human := &hand.HumanActor{}
		if client != nil {
			human.Remote = remote.NewActionPoller(client, tc.ActionPollInterval())
		}
		if p.Seat == stdinSeat {
			human.Local = local
		}
		opts.Actors[p.Seat] = human
	}

	session := hand.NewSession(t, opts)
	session.Subscribe(logEvent)

	logger.LogInfo("🃏 牌桌 %s 开始: %d 名玩家，盲注 %d/%d，种子 %d",
		tableID, len(players), tc.SmallBlind, tc.BigBlind, seed)
	champion, err := session.Run(ctx)

	// 展示剩余通知后再退出
	notifier.Drain()
	return champion, err
}

// readInput 把每一行解析为动作，只有轮到该座位时才会被接受
func readInput(r io.Reader, w io.Writer, seat int, in *hand.TurnInput) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		kind, amount, err := convert.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		if !in.Offer(betting.Action{Seat: seat, Kind: kind, Amount: amount}) {
			fmt.Fprintf(w, "还没轮到座位 %d，已忽略: %s\n", seat, line)
		}
	}
}

func logEvent(e hand.Event) {
	switch e.Kind {
	case hand.EventHandStarted:
		logger.LogInfo("—— 第 %d 手 ——", e.Hand)
	case hand.EventTurn:
		if st := e.State; st != nil && st.ActionContext != nil {
			c := st.ActionContext
			fmt.Printf("轮到座位 %d: 跟注 %d，最小加注到 %d，筹码 %d\n", e.Seat, c.NeedToCall, c.MinRaise, c.PlayerChips)
		}
	case hand.EventAction:
		if a := e.Applied; a != nil && a.Corrected() {
			logger.LogDebug("座位 %d 的 %s 被修正为 %s %d", a.Seat, a.Requested, a.Kind, a.Amount)
		}
	case hand.EventSettled:
		if r := e.Result; r != nil {
			for _, p := range r.Payouts {
				logger.LogDebug("第 %d 手 座位 %d 赢得 %d", e.Hand, p.Seat, p.Amount)
			}
		}
	case hand.EventChampion:
		logger.LogInfo("比赛结束")
	}
}
