// Package settle 负责边池划分与摊牌结算
package settle

import (
	"slices"

	"github.com/thoas/go-funk"

	"github.com/palemoky/holdem-table/internal/game/table"
)

// Pot 一个（边）池
type Pot struct {
	Amount     int64
	Level      int64 // 本池覆盖到的累计下注上限
	Eligible   []int // 累计下注达到 Level 的座位（含已弃牌）
	Contenders []int // Eligible 中未弃牌的座位
}

// BuildSidePots 按累计下注的不同档位划分底池。
// 每档金额为档差乘以达到该档的人数，因此各池之和等于所有人的累计下注之和。
func BuildSidePots(players []*table.Player) []Pot {
	bettors := funk.Filter(players, func(p *table.Player) bool {
		return p.TotalBet > 0
	}).([]*table.Player)
	levels := funk.Map(bettors, func(p *table.Player) int64 {
		return p.TotalBet
	}).([]int64)
	slices.Sort(levels)
	levels = slices.Compact(levels)

	pots := make([]Pot, 0, len(levels))
	var prev int64
	for _, lvl := range levels {
		eligible := funk.Filter(bettors, func(p *table.Player) bool {
			return p.TotalBet >= lvl
		}).([]*table.Player)
		contenders := funk.Filter(eligible, func(p *table.Player) bool {
			return !p.Folded
		}).([]*table.Player)

		pot := Pot{
			Level:      lvl,
			Eligible:   seats(eligible),
			Contenders: seats(contenders),
		}
		pot.Amount = (lvl - prev) * int64(len(pot.Eligible))
		pots = append(pots, pot)
		prev = lvl
	}
	return pots
}

func seats(players []*table.Player) []int {
	return funk.Map(players, func(p *table.Player) int {
		return p.Seat
	}).([]int)
}

// MergeAdjacent 合并相邻且未弃牌参与者完全相同的边池。
// 只比较相邻的两池，不相邻的同构边池保持独立。
func MergeAdjacent(pots []Pot) []Pot {
	out := make([]Pot, 0, len(pots))
	for _, pot := range pots {
		if n := len(out); n > 0 && slices.Equal(out[n-1].Contenders, pot.Contenders) {
			out[n-1].Amount += pot.Amount
			out[n-1].Level = pot.Level
			continue
		}
		pot.Eligible = slices.Clone(pot.Eligible)
		pot.Contenders = slices.Clone(pot.Contenders)
		out = append(out, pot)
	}
	return out
}

// Total 各池金额之和
func Total(pots []Pot) int64 {
	amounts := funk.Map(pots, func(p Pot) int64 { return p.Amount }).([]int64)
	return funk.SumInt64(amounts)
}
