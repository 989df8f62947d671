package table

import (
	"fmt"

	"github.com/thoas/go-funk"

	"github.com/palemoky/holdem-table/internal/game/card"
)

// NoSeat 表示没有座位（如当前无人行动）
const NoSeat = -1

// Phase 牌局阶段
type Phase int

const (
	PhasePreflop Phase = iota
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
)

var phaseNames = map[Phase]string{
	PhasePreflop:  "preflop",
	PhaseFlop:     "flop",
	PhaseTurn:     "turn",
	PhaseRiver:    "river",
	PhaseShowdown: "showdown",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText 以名称序列化
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Table 单桌状态，由 Session 独占
type Table struct {
	Players []*Player // 座位顺序即行动顺序，下标 0 为庄家

	Phase           Phase
	Pot             int64
	CurrentBet      int64
	LastRaise       int64
	RaisesThisRound int
	Board           []card.Card

	SmallBlindLevel int64
	BigBlindLevel   int64
	OrbitCount      int // 庄家回到锚定座位的次数，首手为 0
	AnchorSeat      int // 首任庄家座位，用于判断完整一圈

	HandCount  int
	ActiveSeat int
}

// New 创建牌桌
func New(players []*Player, smallBlind, bigBlind int64) *Table {
	return &Table{
		Players:         players,
		SmallBlindLevel: smallBlind,
		BigBlindLevel:   bigBlind,
		LastRaise:       bigBlind,
		OrbitCount:      -1,
		AnchorSeat:      NoSeat,
		ActiveSeat:      NoSeat,
	}
}

// Find 按座位号查找玩家
func (t *Table) Find(seat int) *Player {
	p, _ := funk.Find(t.Players, func(p *Player) bool {
		return p.Seat == seat
	}).(*Player)
	return p
}

// InHand 未弃牌的玩家
func (t *Table) InHand() []*Player {
	return funk.Filter(t.Players, func(p *Player) bool {
		return p.InHand()
	}).([]*Player)
}

// Actionable 未弃牌且未全下的玩家
func (t *Table) Actionable() []*Player {
	return funk.Filter(t.Players, func(p *Player) bool {
		return p.CanAct()
	}).([]*Player)
}

// Contributors 本手有投入的玩家
func (t *Table) Contributors() []*Player {
	return funk.Filter(t.Players, func(p *Player) bool {
		return p.TotalBet > 0
	}).([]*Player)
}

// TotalChips 桌面筹码总量（含底池）
func (t *Table) TotalChips() int64 {
	total := t.Pot
	for _, p := range t.Players {
		total += p.Chips
	}
	return total
}

// ResetRoundBets 清空本轮下注
func (t *Table) ResetRoundBets() {
	for _, p := range t.Players {
		p.RoundBet = 0
	}
}

// ResetHand 新一手开始前清理手级状态
func (t *Table) ResetHand() {
	for _, p := range t.Players {
		p.resetForHand()
	}
	t.Phase = PhasePreflop
	t.Board = nil
	t.CurrentBet = 0
	t.LastRaise = t.BigBlindLevel
	t.RaisesThisRound = 0
	t.ActiveSeat = NoSeat
}
