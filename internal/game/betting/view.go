package betting

import (
	"github.com/palemoky/holdem-table/internal/game/card"
	"github.com/palemoky/holdem-table/internal/game/table"
)

// Context 行动者面对的下注局面
type Context struct {
	NeedToCall  int64 `json:"needToCall"`
	MinRaise    int64 `json:"minRaise"`
	CanCheck    bool  `json:"canCheck"`
	PlayerChips int64 `json:"playerChips"`
}

// Opponent 公开的座位信息
type Opponent struct {
	Seat     int
	Name     string
	Chips    int64
	RoundBet int64
	TotalBet int64
	Folded   bool
	AllIn    bool
}

// View 决策所需的完整公开信息，外加行动者自己的底牌
type View struct {
	Seat  int
	Name  string
	Phase table.Phase
	Hole  []card.Card
	Board []card.Card

	Pot             int64
	CurrentBet      int64
	LastRaise       int64
	SmallBlind      int64
	BigBlind        int64
	RaisesThisRound int

	Context
	Players []Opponent
}

// ContextFor 计算玩家的下注局面
func ContextFor(t *table.Table, p *table.Player) Context {
	need := p.NeedToCall(t.CurrentBet)
	return Context{
		NeedToCall:  need,
		MinRaise:    need + t.LastRaise,
		CanCheck:    t.CurrentBet == 0 || p.RoundBet >= t.CurrentBet,
		PlayerChips: p.Chips,
	}
}

// View 生成指定座位的决策视图
func (r *Round) View(seat int) (View, bool) {
	t := r.t
	p := t.Find(seat)
	if p == nil {
		return View{}, false
	}

	v := View{
		Seat:            p.Seat,
		Name:            p.Name,
		Phase:           t.Phase,
		Hole:            append([]card.Card(nil), p.Hole...),
		Board:           append([]card.Card(nil), t.Board...),
		Pot:             t.Pot,
		CurrentBet:      t.CurrentBet,
		LastRaise:       t.LastRaise,
		SmallBlind:      t.SmallBlindLevel,
		BigBlind:        t.BigBlindLevel,
		RaisesThisRound: t.RaisesThisRound,
		Context:         ContextFor(t, p),
		Players:         make([]Opponent, 0, len(t.Players)),
	}
	for _, o := range t.Players {
		v.Players = append(v.Players, Opponent{
			Seat:     o.Seat,
			Name:     o.Name,
			Chips:    o.Chips,
			RoundBet: o.RoundBet,
			TotalBet: o.TotalBet,
			Folded:   o.Folded,
			AllIn:    o.AllIn,
		})
	}
	return v, true
}
