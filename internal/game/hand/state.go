package hand

import (
	"time"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/card"
	"github.com/palemoky/holdem-table/internal/game/table"
)

// PlayerState 对外发布的座位状态
type PlayerState struct {
	Name       string      `json:"name"`
	SeatIndex  int         `json:"seatIndex"`
	Chips      int64       `json:"chips"`
	RoundBet   int64       `json:"roundBet"`
	TotalBet   int64       `json:"totalBet"`
	Folded     bool        `json:"folded"`
	AllIn      bool        `json:"allIn"`
	IsBot      bool        `json:"isBot"`
	Dealer     bool        `json:"dealer"`
	SmallBlind bool        `json:"smallBlind"`
	BigBlind   bool        `json:"bigBlind"`
	Cards      []string    `json:"cards"`
	Stats      table.Stats `json:"stats"`
}

// TableState 对外发布的牌桌状态
type TableState struct {
	Phase                 string           `json:"phase"`
	Pot                   int64            `json:"pot"`
	CurrentBet            int64            `json:"currentBet"`
	LastRaise             int64            `json:"lastRaise"`
	SmallBlind            int64            `json:"smallBlind"`
	BigBlind              int64            `json:"bigBlind"`
	RaisesThisRound       int              `json:"raisesThisRound"`
	DealerOrbitCount      int              `json:"dealerOrbitCount"`
	HandCount             int              `json:"handCount"`
	CommunityCards        []string         `json:"communityCards"`
	Players               []PlayerState    `json:"players"`
	ActivePlayerSeatIndex *int             `json:"activePlayerSeatIndex"`
	ActionContext         *betting.Context `json:"actionContext"`
	Champion              string           `json:"champion,omitempty"`
	Timestamp             int64            `json:"timestamp"`
}

// Player 按座位号查找
func (s *TableState) Player(seat int) *PlayerState {
	for i := range s.Players {
		if s.Players[i].SeatIndex == seat {
			return &s.Players[i]
		}
	}
	return nil
}

// Snapshot 生成当前牌桌的发布状态。只有真人行动者才附带 actionContext。
func Snapshot(t *table.Table) *TableState {
	s := &TableState{
		Phase:            t.Phase.String(),
		Pot:              t.Pot,
		CurrentBet:       t.CurrentBet,
		LastRaise:        t.LastRaise,
		SmallBlind:       t.SmallBlindLevel,
		BigBlind:         t.BigBlindLevel,
		RaisesThisRound:  t.RaisesThisRound,
		DealerOrbitCount: t.OrbitCount,
		HandCount:        t.HandCount,
		CommunityCards:   card.Codes(t.Board),
		Players:          make([]PlayerState, 0, len(t.Players)),
		Timestamp:        time.Now().UnixMilli(),
	}
	if s.CommunityCards == nil {
		s.CommunityCards = []string{}
	}

	for _, p := range t.Players {
		cards := card.Codes(p.Hole)
		if cards == nil {
			cards = []string{}
		}
		s.Players = append(s.Players, PlayerState{
			Name:       p.Name,
			SeatIndex:  p.Seat,
			Chips:      p.Chips,
			RoundBet:   p.RoundBet,
			TotalBet:   p.TotalBet,
			Folded:     p.Folded,
			AllIn:      p.AllIn,
			IsBot:      p.Bot,
			Dealer:     p.Dealer,
			SmallBlind: p.SmallBlind,
			BigBlind:   p.BigBlind,
			Cards:      cards,
			Stats:      p.Stats,
		})
	}

	if t.ActiveSeat != table.NoSeat {
		seat := t.ActiveSeat
		s.ActivePlayerSeatIndex = &seat
		if p := t.Find(seat); p != nil && !p.Bot {
			ctx := betting.ContextFor(t, p)
			s.ActionContext = &ctx
		}
	}
	return s
}
