// Package bot 提供机器人座位的决策与行动
package bot

import (
	"math/rand/v2"
	"slices"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/card"
	"github.com/palemoky/holdem-table/internal/game/table"
)

// Decider 根据公开局面给出动作
type Decider interface {
	Decide(v betting.View) betting.Action
}

// DeciderFunc 函数适配器
type DeciderFunc func(v betting.View) betting.Action

func (f DeciderFunc) Decide(v betting.View) betting.Action { return f(v) }

// RuleDecider 基于手牌强度的规则型决策
type RuleDecider struct {
	Tightness  float64 // 越高越容易弃牌
	Aggression float64 // 越高越容易加注
	MaxRaises  int     // 单轮最多参与的加注次数

	rng *rand.Rand
}

// NewRuleDecider 创建默认性格的决策器
func NewRuleDecider(seed uint64) *RuleDecider {
	return &RuleDecider{
		Tightness:  0.5,
		Aggression: 0.3,
		MaxRaises:  3,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Decide 实现 Decider
func (d *RuleDecider) Decide(v betting.View) betting.Action {
	strength := Strength(v)
	canRaise := v.RaisesThisRound < d.MaxRaises && v.PlayerChips > v.NeedToCall

	if canRaise && strength >= 1-d.Aggression*0.6 {
		return betting.Action{Seat: v.Seat, Kind: betting.Raise, Amount: d.raiseSize(v)}
	}

	if v.CanCheck {
		if canRaise && d.rng.Float64() < d.Aggression*0.1 {
			return betting.Action{Seat: v.Seat, Kind: betting.Raise, Amount: v.MinRaise}
		}
		return betting.Action{Seat: v.Seat, Kind: betting.Check}
	}

	// 底池赔率足够时跟注
	cheap := v.NeedToCall*10 <= v.Pot
	if strength < d.Tightness*0.7 && !cheap {
		return betting.Action{Seat: v.Seat, Kind: betting.Fold}
	}
	return betting.Action{Seat: v.Seat, Kind: betting.Call}
}

// raiseSize 加注投入：跟注额加半个底池，不低于最小加注
func (d *RuleDecider) raiseSize(v betting.View) int64 {
	amount := v.NeedToCall + max(v.LastRaise, v.Pot/2)
	amount = max(amount, v.MinRaise)
	return min(amount, v.PlayerChips)
}

// Strength 粗略估计手牌强度（0..1）。翻牌后与公共牌成对时加分。
func Strength(v betting.View) float64 {
	if len(v.Hole) < 2 {
		return 0.3
	}
	a, b := v.Hole[0], v.Hole[1]

	s := float64(a.Rank+b.Rank) / 28
	if a.Rank == b.Rank {
		s += 0.25
	}
	if a.Suit == b.Suit {
		s += 0.05
	}
	if gap := a.Rank - b.Rank; gap >= -2 && gap <= 2 && gap != 0 {
		s += 0.05
	}

	if v.Phase != table.PhasePreflop {
		for _, c := range v.Hole {
			if slices.ContainsFunc(v.Board, func(bc card.Card) bool { return bc.Rank == c.Rank }) {
				s += 0.2
			}
		}
	}
	return min(max(s, 0), 1)
}
