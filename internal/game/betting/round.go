// Package betting 实现单个下注轮的行动顺序与动作校正
package betting

import (
	"fmt"

	"github.com/palemoky/holdem-table/internal/game/table"
)

// Round 一个下注轮。
// 结束条件：仅剩一名未弃牌玩家；无人可行动；或所有可行动玩家自上次有效加注后都已表态且跟平。
type Round struct {
	t      *table.Table
	cursor int // 下一位候选行动者在 Players 中的下标

	acted  map[int]bool // 自上次有效加注后已表态
	capped map[int]bool // 因不足额全下未被重新开放，只能跟注或弃牌
}

// Start 开始当前阶段的下注轮。
// 翻牌前从大盲下家开始；翻牌后清空本轮下注并从庄家下家开始。
func Start(t *table.Table) *Round {
	r := &Round{
		t:      t,
		acted:  make(map[int]bool),
		capped: make(map[int]bool),
	}
	t.RaisesThisRound = 0

	n := len(t.Players)
	if n == 0 {
		return r
	}

	if t.Phase == table.PhasePreflop {
		bb := 0
		for i, p := range t.Players {
			if p.BigBlind {
				bb = i
				break
			}
		}
		r.cursor = (bb + 1) % n
		return r
	}

	t.CurrentBet = 0
	t.LastRaise = t.BigBlindLevel
	t.ResetRoundBets()

	dealer := 0
	for i, p := range t.Players {
		if p.Dealer {
			dealer = i
			break
		}
	}
	r.cursor = (dealer + 1) % n
	return r
}

// Done 本轮是否已结束
func (r *Round) Done() bool {
	if len(r.t.InHand()) < 2 {
		return true
	}

	actionable := r.t.Actionable()
	switch len(actionable) {
	case 0:
		return true
	case 1:
		// 唯一可行动者只在面对未跟平的下注时需要表态
		if actionable[0].RoundBet >= r.t.CurrentBet {
			return true
		}
	}

	for _, p := range actionable {
		if !r.acted[p.Seat] || p.RoundBet < r.t.CurrentBet {
			return false
		}
	}
	return true
}

// Next 返回下一位需要行动的玩家，本轮结束时返回 false
func (r *Round) Next() (*table.Player, bool) {
	if r.Done() {
		r.t.ActiveSeat = table.NoSeat
		return nil, false
	}

	n := len(r.t.Players)
	for i := range n {
		idx := (r.cursor + i) % n
		p := r.t.Players[idx]
		if !p.CanAct() {
			continue
		}
		if r.acted[p.Seat] && p.RoundBet >= r.t.CurrentBet {
			continue
		}
		r.cursor = idx
		r.t.ActiveSeat = p.Seat
		return p, true
	}

	r.t.ActiveSeat = table.NoSeat
	return nil, false
}

// Apply 执行当前行动者的动作。
// 非法请求不会被拒绝，而是校正为最接近的合法动作：
// 欠注时过牌视为跟注，无需跟注时跟注视为过牌，加注不足最小加注额时补足，
// 加注额不小于剩余筹码时视为全下，未被重新开放的玩家加注视为跟注。
func (r *Round) Apply(a Action) (Applied, error) {
	if r.t.ActiveSeat == table.NoSeat {
		return Applied{}, ErrNoActiveSeat
	}
	if a.Seat != r.t.ActiveSeat {
		return Applied{}, fmt.Errorf("%w: seat %d, waiting for %d", ErrOutOfTurn, a.Seat, r.t.ActiveSeat)
	}
	if !a.Kind.Valid() {
		return Applied{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}

	t := r.t
	p := t.Players[r.cursor]
	needToCall := p.NeedToCall(t.CurrentBet)
	minRaise := needToCall + t.LastRaise

	kind, amount := r.correct(p, a, needToCall, minRaise)
	out := Applied{Seat: p.Seat, Requested: a.Kind, Kind: kind}

	switch kind {
	case Fold:
		p.Folded = true
	case Check:
	case Call:
		out.Amount = p.PlaceBet(needToCall)
	case Raise:
		out.Amount = p.PlaceBet(amount)
		r.raise(p, out.Amount-needToCall)
		out.Reopened = true
	case AllIn:
		out.Amount = p.PlaceBet(p.Chips)
		switch {
		case out.Amount >= minRaise:
			r.raise(p, out.Amount-needToCall)
			out.Reopened = true
		case p.RoundBet > t.CurrentBet:
			// 不足额全下：抬高当前注额但不重新开放行动
			t.CurrentBet = p.RoundBet
			for seat := range r.acted {
				if seat != p.Seat {
					r.capped[seat] = true
				}
			}
		}
	}
	t.Pot += out.Amount

	r.acted[p.Seat] = true
	r.cursor = (r.cursor + 1) % len(t.Players)
	t.ActiveSeat = table.NoSeat

	recordStats(p, t.Phase, kind)
	return out, nil
}

func (r *Round) correct(p *table.Player, a Action, needToCall, minRaise int64) (Kind, int64) {
	kind, amount := a.Kind, max(a.Amount, 0)

	if r.capped[p.Seat] && (kind == Raise || kind == AllIn) {
		kind = Call
	}

	switch kind {
	case Check:
		if needToCall > 0 {
			kind = Call
		}
	case Call:
		if needToCall == 0 {
			kind = Check
		}
	case Raise:
		if amount < minRaise {
			amount = minRaise
		}
		if amount >= p.Chips {
			kind, amount = AllIn, p.Chips
		}
	}
	return kind, amount
}

// raise 有效加注：更新注额与最近加注额，重新开放其他玩家的行动
func (r *Round) raise(p *table.Player, increment int64) {
	r.t.CurrentBet = p.RoundBet
	r.t.LastRaise = increment
	r.t.RaisesThisRound++
	clear(r.acted)
	clear(r.capped)
}

// State 座位在本轮中的状态
func (r *Round) State(seat int) SeatState {
	p := r.t.Find(seat)
	switch {
	case p == nil || p.Folded:
		return Folded
	case p.AllIn:
		return AllInState
	case r.acted[seat] && p.RoundBet >= r.t.CurrentBet:
		return Matched
	default:
		return ToAct
	}
}

func recordStats(p *table.Player, phase table.Phase, kind Kind) {
	st := &p.Stats
	preflop := phase == table.PhasePreflop

	switch kind {
	case Fold:
		st.Folds++
		if preflop {
			st.FoldsPreflop++
		} else {
			st.FoldsPostflop++
		}
		return
	case AllIn:
		st.AllIns++
	}

	if preflop {
		if kind == Call || kind == Raise || kind == AllIn {
			st.VPIP++
		}
		if kind == Raise || kind == AllIn {
			st.PFR++
		}
		return
	}
	switch kind {
	case Call:
		st.Calls++
	case Raise, AllIn:
		st.AggressiveActs++
	}
}
