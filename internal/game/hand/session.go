// Package hand 驱动完整的一手牌：发牌、各轮下注、摊牌结算，以及多手牌之间的推进
package hand

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/card"
	"github.com/palemoky/holdem-table/internal/game/settle"
	"github.com/palemoky/holdem-table/internal/game/table"
	"github.com/palemoky/holdem-table/internal/logger"
	"github.com/palemoky/holdem-table/internal/notify"
)

var ErrNoPlayers = errors.New("no players left at the table")

// Publisher 接收状态快照（例如同步到复制服务）。实现不应阻塞。
type Publisher interface {
	Publish(state *TableState, notifications []string)
}

// Options 会话依赖
type Options struct {
	Actors        map[int]Actor // 按座位号
	Evaluator     settle.Evaluator
	Notifier      *notify.Queue
	Publisher     Publisher
	Rand          *rand.Rand
	TransferDelay time.Duration // 每手结算后的停顿
}

// Outcome 一手牌的结果
type Outcome struct {
	Hand     int
	Result   *settle.Result
	Busted   []*table.Player
	Champion *table.Player // 非空表示比赛结束
}

// Session 独占一张牌桌的全部可变状态，只在一个 goroutine 中推进
type Session struct {
	table    *table.Table
	opts     Options
	handlers []Handler
	latest   atomic.Pointer[TableState]
}

// NewSession 创建会话，缺省依赖使用默认实现
func NewSession(t *table.Table, opts Options) *Session {
	if opts.Evaluator == nil {
		opts.Evaluator = settle.PokerEvaluator{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.New(0, 0)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if opts.Actors == nil {
		opts.Actors = map[int]Actor{}
	}

	s := &Session{table: t, opts: opts}
	s.latest.Store(Snapshot(t))
	// 每展示一条通知同步一次，让远端看到最新的通知历史
	opts.Notifier.OnDisplay(func(string) { s.publishLatest() })
	return s
}

// Table 会话持有的牌桌
func (s *Session) Table() *table.Table { return s.table }

// Notifier 通知队列
func (s *Session) Notifier() *notify.Queue { return s.opts.Notifier }

// Subscribe 注册事件订阅者，必须在 Run 之前调用
func (s *Session) Subscribe(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Latest 最近一次发布的状态，可在其他 goroutine 中读取
func (s *Session) Latest() *TableState {
	return s.latest.Load()
}

// Run 连续进行多手牌，直到只剩一名玩家，返回冠军
func (s *Session) Run(ctx context.Context) (*table.Player, error) {
	for {
		out, err := s.PlayHand(ctx)
		if err != nil {
			return nil, err
		}
		if out.Champion != nil {
			return out.Champion, nil
		}
	}
}

// PlayHand 进行一手牌。开局前移除筹码耗尽的玩家；只剩一人时返回冠军而不开局。
func (s *Session) PlayHand(ctx context.Context) (*Outcome, error) {
	t := s.table
	out := &Outcome{}

	out.Busted = t.RemoveBusted()
	for _, p := range out.Busted {
		s.notify("%s is out of the game!", p.Name)
		s.emit(Event{Kind: EventBusted, Seat: p.Seat})
	}

	if len(t.Players) == 0 {
		return nil, ErrNoPlayers
	}
	if champ := t.Champion(); champ != nil {
		out.Champion = champ
		t.ActiveSeat = table.NoSeat
		s.notify("%s wins the game! 🏆", champ.Name)
		state := Snapshot(t)
		state.Champion = champ.Name
		s.latest.Store(state)
		s.publishLatest()
		s.emit(Event{Kind: EventChampion, Seat: champ.Seat, State: state})
		logger.LogInfo("🏆 %s wins after %d hands", champ.Name, t.HandCount)
		return out, nil
	}

	t.ResetHand()
	t.Pot = 0
	t.HandCount++
	out.Hand = t.HandCount

	dealer := t.RotateDealer(s.opts.Rand)
	s.notify("%s is Dealer.", dealer.Name)

	blinds, err := t.AssignBlinds()
	if err != nil {
		return nil, fmt.Errorf("assign blinds: %w", err)
	}
	if blinds.LevelRaised {
		s.notify("Blinds are now %d/%d.", t.SmallBlindLevel, t.BigBlindLevel)
	}
	s.notify("%s posted small blind of %d.", blinds.SmallBlind.Name, blinds.SmallPosted)
	s.notify("%s posted big blind of %d.", blinds.BigBlind.Name, blinds.BigPosted)
	s.emit(Event{Kind: EventHandStarted, Hand: t.HandCount, Seat: dealer.Seat, State: s.sync()})
	s.emit(Event{Kind: EventBlinds, Hand: t.HandCount, State: s.Latest()})

	deck := card.NewDeck()
	card.Shuffle(deck, s.opts.Rand)
	if err := s.dealHoles(&deck); err != nil {
		return nil, err
	}
	s.emit(Event{Kind: EventDealt, Hand: t.HandCount, State: s.sync()})

	streets := []struct {
		phase table.Phase
		cards int
		label string
	}{
		{table.PhasePreflop, 0, ""},
		{table.PhaseFlop, 3, "Flop (3 cards) dealt."},
		{table.PhaseTurn, 1, "Turn (4th card) dealt."},
		{table.PhaseRiver, 1, "River (5th card) dealt."},
	}
	for _, st := range streets {
		// 只剩一人时直接结算，不再发公共牌
		if len(t.InHand()) < 2 {
			break
		}
		if st.cards > 0 {
			if err := deck.Burn(); err != nil {
				return nil, err
			}
			board, err := deck.Draw(st.cards)
			if err != nil {
				return nil, err
			}
			t.Board = append(t.Board, board...)
			s.notify("%s", st.label)
		}
		t.Phase = st.phase
		s.emit(Event{Kind: EventStreet, Hand: t.HandCount, Phase: st.phase, State: s.sync()})

		if err := s.bettingRound(ctx); err != nil {
			return nil, err
		}
	}

	t.Phase = table.PhaseShowdown
	res, err := settle.Settle(t, s.opts.Evaluator)
	if err != nil {
		return nil, fmt.Errorf("settle hand %d: %w", t.HandCount, err)
	}
	if res.Forfeited > 0 {
		logger.LogError("hand %d: %d chips forfeited with no eligible player", t.HandCount, res.Forfeited)
	}
	out.Result = res
	for _, msg := range res.Messages {
		s.notify("%s", msg)
	}
	s.emit(Event{Kind: EventSettled, Hand: t.HandCount, Phase: table.PhaseShowdown, Result: res, State: s.sync()})

	if err := sleep(ctx, s.opts.TransferDelay); err != nil {
		return nil, err
	}
	return out, nil
}

// dealHoles 从小盲开始每人两张
func (s *Session) dealHoles(deck *card.Deck) error {
	t := s.table
	n := len(t.Players)
	for range 2 {
		for i := range n {
			p := t.Players[(i+1)%n]
			c, err := deck.Draw(1)
			if err != nil {
				return err
			}
			p.Hole = append(p.Hole, c...)
		}
	}
	for _, p := range t.Players {
		p.Stats.Hands++
	}
	return nil
}

// bettingRound 逐个请求行动者表态，直到本轮结束。
// 每位行动者拥有独立的子 context，在下一位开始前取消。
func (s *Session) bettingRound(ctx context.Context) error {
	t := s.table
	r := betting.Start(t)

	for {
		p, ok := r.Next()
		if !ok {
			return nil
		}
		state := s.sync()
		s.emit(Event{Kind: EventTurn, Hand: t.HandCount, Phase: t.Phase, Seat: p.Seat, State: state})

		view, _ := r.View(p.Seat)
		action, err := s.ask(ctx, p, view)
		if err != nil {
			return err
		}

		applied, err := r.Apply(action)
		if err != nil {
			return fmt.Errorf("apply action for seat %d: %w", p.Seat, err)
		}
		s.announce(p, applied)
		s.emit(Event{Kind: EventAction, Hand: t.HandCount, Phase: t.Phase, Seat: p.Seat, Applied: &applied, State: s.sync()})
	}
}

func (s *Session) ask(ctx context.Context, p *table.Player, view betting.View) (betting.Action, error) {
	fallback := betting.Action{Seat: p.Seat, Kind: betting.Fold}
	if view.CanCheck {
		fallback.Kind = betting.Check
	}

	actor, ok := s.opts.Actors[p.Seat]
	if !ok {
		logger.LogError("no actor for seat %d (%s), defaulting to %s", p.Seat, p.Name, fallback.Kind)
		return fallback, nil
	}

	turnCtx, cancel := context.WithCancel(ctx)
	action, err := actor.Act(turnCtx, view)
	cancel()

	if ctx.Err() != nil {
		return betting.Action{}, ctx.Err()
	}
	if err != nil {
		logger.LogError("seat %d (%s) failed to act: %v", p.Seat, p.Name, err)
		return fallback, nil
	}
	if !action.Kind.Valid() {
		logger.LogError("seat %d (%s) sent unknown action %q", p.Seat, p.Name, action.Kind)
		return fallback, nil
	}
	action.Seat = p.Seat
	return action, nil
}

func (s *Session) announce(p *table.Player, a betting.Applied) {
	switch a.Kind {
	case betting.Fold:
		s.notify("%s folded.", p.Name)
	case betting.Check:
		s.notify("%s checked.", p.Name)
	case betting.Call:
		if p.AllIn {
			s.notify("%s is all-in.", p.Name)
			return
		}
		s.notify("%s called %d.", p.Name, a.Amount)
	case betting.Raise:
		s.notify("%s raised to %d.", p.Name, p.RoundBet)
	case betting.AllIn:
		s.notify("%s is all-in.", p.Name)
	}
}

func (s *Session) notify(format string, args ...any) {
	s.opts.Notifier.Enqueue(fmt.Sprintf(format, args...))
}

func (s *Session) emit(e Event) {
	if e.State == nil {
		e.State = s.Latest()
	}
	for _, h := range s.handlers {
		h(e)
	}
}

// sync 生成并发布当前状态
func (s *Session) sync() *TableState {
	state := Snapshot(s.table)
	s.latest.Store(state)
	s.publishLatest()
	return state
}

func (s *Session) publishLatest() {
	if s.opts.Publisher == nil {
		return
	}
	s.opts.Publisher.Publish(s.latest.Load(), s.opts.Notifier.History())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
