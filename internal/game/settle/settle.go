package settle

import (
	"fmt"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/palemoky/holdem-table/internal/game/table"
)

// Payout 一笔派彩
type Payout struct {
	Seat   int
	Amount int64
}

// PotResult 单个边池的结算结果
type PotResult struct {
	Pot         Pot
	Winners     []int
	Hand        string // 单一赢家时的牌型描述
	Uncontested bool   // 仅一人有资格，直接返还/派发
	Forfeited   bool   // 无人有资格
	Payouts     []Payout
}

// Result 一手牌的结算结果
type Result struct {
	Showdown  bool
	Pots      []PotResult
	Payouts   []Payout       // 按座位汇总，顺序为首次获得派彩的顺序
	Hands     map[int]string // 摊牌时各玩家最佳牌型
	Messages  []string
	Forfeited int64
}

// Won 座位本手赢得的筹码
func (r *Result) Won(seat int) int64 {
	for _, p := range r.Payouts {
		if p.Seat == seat {
			return p.Amount
		}
	}
	return 0
}

// Settle 结算底池并把筹码发给赢家，结算后底池清零。
// 仅剩一名未弃牌玩家时直接获得整个底池，不比牌。
func Settle(t *table.Table, ev Evaluator) (*Result, error) {
	t.ResetRoundBets()
	t.ActiveSeat = table.NoSeat

	inHand := t.InHand()
	res := &Result{Hands: map[int]string{}}

	if len(inHand) == 1 {
		winner := inHand[0]
		amount := t.Pot
		winner.Chips += amount
		winner.Stats.HandsWon++
		res.Payouts = []Payout{{Seat: winner.Seat, Amount: amount}}
		res.Messages = []string{fmt.Sprintf("%s wins %d!", winner.Name, amount)}
		t.Pot = 0
		return res, nil
	}

	res.Showdown = len(inHand) > 1
	if res.Showdown {
		for _, p := range inHand {
			p.Stats.Showdowns++
		}
	}

	pots := MergeAdjacent(BuildSidePots(t.Players))
	winnersSet := make(map[int]bool)
	credit := func(seat int, amount int64) {
		for i := range res.Payouts {
			if res.Payouts[i].Seat == seat {
				res.Payouts[i].Amount += amount
				return
			}
		}
		res.Payouts = append(res.Payouts, Payout{Seat: seat, Amount: amount})
	}
	markWinner := func(seat int) {
		if winnersSet[seat] {
			return
		}
		winnersSet[seat] = true
		p := t.Find(seat)
		p.Stats.HandsWon++
		if res.Showdown {
			p.Stats.ShowdownsWon++
		}
	}

	for _, pot := range pots {
		pr := PotResult{Pot: pot}

		switch len(pot.Contenders) {
		case 0:
			pr.Forfeited = true
			res.Forfeited += pot.Amount
		case 1:
			seat := pot.Contenders[0]
			pr.Uncontested = true
			pr.Winners = []int{seat}
			pr.Payouts = []Payout{{Seat: seat, Amount: pot.Amount}}
			markWinner(seat)
		default:
			contenders := make([]Contender, 0, len(pot.Contenders))
			for _, seat := range pot.Contenders {
				contenders = append(contenders, Contender{Seat: seat, Hole: t.Find(seat).Hole})
			}
			eval, err := ev.Evaluate(t.Board, contenders)
			if err != nil {
				return nil, fmt.Errorf("evaluate pot %d: %w", pot.Level, err)
			}
			if len(eval.Winners) == 0 {
				return nil, fmt.Errorf("evaluate pot %d: no winners", pot.Level)
			}
			for seat, desc := range eval.Hands {
				res.Hands[seat] = desc
			}

			pr.Winners = eval.Winners
			if len(eval.Winners) == 1 {
				pr.Hand = eval.Hands[eval.Winners[0]]
			}
			pr.Payouts = split(pot.Amount, eval.Winners)
			for _, w := range eval.Winners {
				markWinner(w)
			}
		}

		for _, p := range pr.Payouts {
			t.Find(p.Seat).Chips += p.Amount
			credit(p.Seat, p.Amount)
		}
		res.Pots = append(res.Pots, pr)
	}

	res.Messages = payoutMessages(t, res.Pots)
	t.Pot = 0
	return res, nil
}

// split 整除平分，余数按赢家顺序逐个筹码分配
func split(amount int64, winners []int) []Payout {
	n := int64(len(winners))
	share := amount / n
	remainder := amount - share*n

	out := make([]Payout, 0, len(winners))
	for _, seat := range winners {
		p := Payout{Seat: seat, Amount: share}
		if remainder > 0 {
			p.Amount++
			remainder--
		}
		out = append(out, p)
	}
	return out
}

// payoutMessages 生成派彩通知。只退还本人超额下注的边池不通知；
// 同一人赢下所有边池时合并为一条。
func payoutMessages(t *table.Table, pots []PotResult) []string {
	shown := funk.Filter(pots, func(pr PotResult) bool {
		return !pr.Uncontested && !pr.Forfeited
	}).([]PotResult)
	if len(shown) == 0 {
		return nil
	}

	name := func(seat int) string { return t.Find(seat).Name }

	allSame := true
	for _, pr := range shown {
		if len(pr.Winners) != 1 || pr.Winners[0] != shown[0].Winners[0] {
			allSame = false
			break
		}
	}
	if allSame {
		var total int64
		for _, pr := range shown {
			total += pr.Pot.Amount
		}
		return []string{winMessage(name(shown[0].Winners[0]), total, shown[0].Hand)}
	}

	msgs := make([]string, 0, len(shown))
	for _, pr := range shown {
		if len(pr.Winners) == 1 {
			msgs = append(msgs, winMessage(name(pr.Winners[0]), pr.Pot.Amount, pr.Hand))
			continue
		}
		names := make([]string, len(pr.Winners))
		for i, w := range pr.Winners {
			names[i] = name(w)
		}
		msgs = append(msgs, fmt.Sprintf("%s split %d", strings.Join(names, " & "), pr.Pot.Amount))
	}
	return msgs
}

func winMessage(name string, amount int64, hand string) string {
	if hand == "" {
		return fmt.Sprintf("%s wins %d", name, amount)
	}
	return fmt.Sprintf("%s wins %d with %s", name, amount, hand)
}
