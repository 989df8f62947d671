package hand

import (
	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/settle"
	"github.com/palemoky/holdem-table/internal/game/table"
)

// EventKind 事件类型
type EventKind string

const (
	EventHandStarted EventKind = "hand_started"
	EventBlinds      EventKind = "blinds"
	EventDealt       EventKind = "dealt"
	EventStreet      EventKind = "street"
	EventTurn        EventKind = "turn"
	EventAction      EventKind = "action"
	EventSettled     EventKind = "settled"
	EventBusted      EventKind = "busted"
	EventChampion    EventKind = "champion"
)

// Event 牌局状态变化。渲染层订阅事件，不参与状态推进。
type Event struct {
	Kind    EventKind
	Hand    int
	Phase   table.Phase
	Seat    int
	Applied *betting.Applied
	Result  *settle.Result
	State   *TableState
}

// Handler 事件订阅者，在牌局 goroutine 中同步调用
type Handler func(Event)
