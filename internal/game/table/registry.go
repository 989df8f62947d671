package table

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// ErrNotEnoughPlayers 人数不足以开局
var ErrNotEnoughPlayers = errors.New("not enough players")

// Blinds 本手盲注结果
type Blinds struct {
	SmallBlind  *Player
	BigBlind    *Player
	SmallPosted int64
	BigPosted   int64
	LevelRaised bool // 本手是否涨盲
}

// RotateDealer 移动庄家按钮并旋转座位，使庄家位于下标 0。
// 首手随机选择庄家并记为锚定座位。
func (t *Table) RotateDealer(rng *rand.Rand) *Player {
	if len(t.Players) == 0 {
		return nil
	}

	idx := slices.IndexFunc(t.Players, func(p *Player) bool { return p.Dealer })
	var next int
	switch {
	case idx < 0 && t.AnchorSeat == NoSeat:
		next = rng.IntN(len(t.Players))
		t.AnchorSeat = t.Players[next].Seat
	case idx < 0:
		// 上一任庄家已出局，旋转后其下家位于下标 0
		next = 0
	default:
		t.Players[idx].Dealer = false
		next = (idx + 1) % len(t.Players)
	}
	t.Players[next].Dealer = true

	t.Players = slices.Concat(t.Players[next:], t.Players[:next])
	return t.Players[0]
}

// AssignBlinds 判定完整一圈并涨盲，指定大小盲并下盲注。
// 每完成两圈盲注翻倍；单挑时庄家即小盲。
func (t *Table) AssignBlinds() (Blinds, error) {
	if len(t.Players) < 2 {
		return Blinds{}, ErrNotEnoughPlayers
	}

	var out Blinds
	if t.Players[0].Seat == t.AnchorSeat {
		t.OrbitCount++
		if t.OrbitCount > 0 && t.OrbitCount%2 == 0 {
			t.SmallBlindLevel *= 2
			t.BigBlindLevel *= 2
			out.LevelRaised = true
		}
	}

	for _, p := range t.Players {
		p.clearBlinds()
	}

	sbIdx, bbIdx := 1, 2
	if len(t.Players) == 2 {
		sbIdx, bbIdx = 0, 1
	}
	sb, bb := t.Players[sbIdx], t.Players[bbIdx]

	out.SmallBlind, out.BigBlind = sb, bb
	out.SmallPosted = sb.PlaceBet(t.SmallBlindLevel)
	out.BigPosted = bb.PlaceBet(t.BigBlindLevel)
	sb.SmallBlind = true
	bb.BigBlind = true

	t.Pot += out.SmallPosted + out.BigPosted
	t.CurrentBet = t.BigBlindLevel
	t.LastRaise = t.BigBlindLevel
	return out, nil
}

// RemoveBusted 移除筹码为 0 的玩家并返回被移除者。
// 锚定座位出局时，改为当前下标 0 的座位并重置圈数。
func (t *Table) RemoveBusted() []*Player {
	var busted []*Player
	remaining := make([]*Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.Chips <= 0 {
			p.Chips = 0
			busted = append(busted, p)
			continue
		}
		remaining = append(remaining, p)
	}
	t.Players = remaining

	if len(remaining) > 0 && t.AnchorSeat != NoSeat && t.Find(t.AnchorSeat) == nil {
		t.AnchorSeat = remaining[0].Seat
		t.OrbitCount = -1
	}
	return busted
}

// Champion 仅剩一名玩家时返回该玩家
func (t *Table) Champion() *Player {
	if len(t.Players) == 1 {
		return t.Players[0]
	}
	return nil
}
