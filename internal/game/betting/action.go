package betting

import (
	"errors"
	"fmt"
)

// Kind 动作类型
type Kind string

const (
	Fold  Kind = "fold"
	Check Kind = "check"
	Call  Kind = "call"
	Raise Kind = "raise"
	AllIn Kind = "allin"
)

var kinds = []Kind{Fold, Check, Call, Raise, AllIn}

// ParseKind 解析动作字符串
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Valid 是否为已知动作
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrOutOfTurn     = errors.New("action out of turn")
	ErrNoActiveSeat  = errors.New("no seat is waiting to act")
)

// Action 一次表态请求。Amount 为本次投入的筹码（加注时含跟注部分）
type Action struct {
	Seat   int
	Kind   Kind
	Amount int64
}

// Applied 实际生效的动作
type Applied struct {
	Seat      int
	Requested Kind
	Kind      Kind  // 修正后的动作
	Amount    int64 // 实际投入底池的筹码
	Reopened  bool  // 是否为有效加注（重新开放行动）
}

// Corrected 请求是否被引擎修正
func (a Applied) Corrected() bool {
	return a.Requested != a.Kind
}

// SeatState 座位在本轮中的状态
type SeatState int

const (
	ToAct SeatState = iota
	Folded
	AllInState
	Matched
)

var seatStateNames = map[SeatState]string{
	ToAct:      "TO_ACT",
	Folded:     "FOLDED",
	AllInState: "ALL_IN",
	Matched:    "MATCHED",
}

func (s SeatState) String() string {
	return seatStateNames[s]
}
