package table

import "github.com/palemoky/holdem-table/internal/game/card"

// Stats 玩家统计（跨手累计）
type Stats struct {
	Hands          int `json:"hands"`
	HandsWon       int `json:"handsWon"`
	Showdowns      int `json:"showdowns"`
	ShowdownsWon   int `json:"showdownsWon"`
	VPIP           int `json:"vpip"`
	PFR            int `json:"pfr"`
	Calls          int `json:"calls"`
	AggressiveActs int `json:"aggressiveActs"`
	Folds          int `json:"folds"`
	FoldsPreflop   int `json:"foldsPreflop"`
	FoldsPostflop  int `json:"foldsPostflop"`
	AllIns         int `json:"allins"`
}

// Player 座位上的玩家
type Player struct {
	Seat int    // 座位号，开局分配后不再变化
	Name string // 显示名
	Bot  bool   // 是否由机器人决策

	Chips    int64 // 剩余筹码
	RoundBet int64 // 本轮下注
	TotalBet int64 // 本手累计下注

	Folded bool
	AllIn  bool

	Dealer     bool
	SmallBlind bool
	BigBlind   bool

	Hole  []card.Card
	Stats Stats
}

// NewPlayer 创建玩家
func NewPlayer(seat int, name string, chips int64, bot bool) *Player {
	return &Player{
		Seat:  seat,
		Name:  name,
		Bot:   bot,
		Chips: chips,
	}
}

// PlaceBet 下注，金额按剩余筹码截断，返回实际下注额
func (p *Player) PlaceBet(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	bet := min(amount, p.Chips)
	p.Chips -= bet
	p.RoundBet += bet
	p.TotalBet += bet
	if p.Chips == 0 {
		p.AllIn = true
	}
	return bet
}

// NeedToCall 跟注所需金额
func (p *Player) NeedToCall(currentBet int64) int64 {
	return max(currentBet-p.RoundBet, 0)
}

// InHand 是否仍在本手中（未弃牌）
func (p *Player) InHand() bool { return !p.Folded }

// CanAct 是否仍可表态
func (p *Player) CanAct() bool { return !p.Folded && !p.AllIn }

func (p *Player) resetForHand() {
	p.RoundBet = 0
	p.TotalBet = 0
	p.Folded = false
	p.AllIn = false
	p.Hole = nil
}

func (p *Player) clearBlinds() {
	p.SmallBlind = false
	p.BigBlind = false
}
