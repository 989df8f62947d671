package settle

import (
	"errors"
	"fmt"

	"github.com/paulhankin/poker"

	"github.com/palemoky/holdem-table/internal/game/card"
)

// Contender 参与比牌的座位及其底牌
type Contender struct {
	Seat int
	Hole []card.Card
}

// Evaluation 比牌结果
type Evaluation struct {
	Winners []int          // 赢家座位，顺序即余数分配顺序
	Hands   map[int]string // 每位参与者的最佳牌型描述
}

// Evaluator 牌型评估器
type Evaluator interface {
	Evaluate(board []card.Card, contenders []Contender) (Evaluation, error)
}

var ErrIncompleteHand = errors.New("hand needs exactly 7 cards")

// PokerEvaluator 基于 paulhankin/poker 的七张牌评估器
type PokerEvaluator struct{}

// Evaluate 计算每位参与者的七张牌分值，分值最高者（可并列）获胜
func (PokerEvaluator) Evaluate(board []card.Card, contenders []Contender) (Evaluation, error) {
	out := Evaluation{Hands: make(map[int]string, len(contenders))}

	var best int16
	for i, c := range contenders {
		seven, err := toSeven(board, c.Hole)
		if err != nil {
			return Evaluation{}, fmt.Errorf("seat %d: %w", c.Seat, err)
		}

		score := poker.Eval7(&seven)
		desc, err := poker.Describe(seven[:])
		if err != nil {
			return Evaluation{}, fmt.Errorf("seat %d: describe: %w", c.Seat, err)
		}
		out.Hands[c.Seat] = desc

		switch {
		case i == 0 || score > best:
			best = score
			out.Winners = []int{c.Seat}
		case score == best:
			out.Winners = append(out.Winners, c.Seat)
		}
	}
	return out, nil
}

func toSeven(board, hole []card.Card) ([7]poker.Card, error) {
	var seven [7]poker.Card
	if len(board)+len(hole) != 7 {
		return seven, fmt.Errorf("%w: got %d", ErrIncompleteHand, len(board)+len(hole))
	}
	for i, c := range append(append([]card.Card(nil), hole...), board...) {
		pc, err := toPoker(c)
		if err != nil {
			return seven, err
		}
		seven[i] = pc
	}
	return seven, nil
}

// toPoker 转换为 paulhankin/poker 的牌（A 的点数为 1）
func toPoker(c card.Card) (poker.Card, error) {
	rank := int(c.Rank)
	if c.Rank == card.RankA {
		rank = 1
	}
	pc, err := poker.MakeCard(poker.Suit(c.Suit), poker.Rank(rank))
	if err != nil {
		return pc, fmt.Errorf("card %s: %w", c, err)
	}
	return pc, nil
}
