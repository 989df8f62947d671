package convert

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/protocol"
)

// RecordToAction 将信箱记录转换为 betting.Action
func RecordToAction(seat int, rec *protocol.ActionRecord) (betting.Action, error) {
	kind, err := betting.ParseKind(rec.Action)
	if err != nil {
		return betting.Action{}, err
	}
	return betting.Action{Seat: seat, Kind: kind, Amount: max(rec.Amount, 0)}, nil
}

// ActionToRequest 将 betting.Action 转换为 POST /action 请求
func ActionToRequest(tableID string, a betting.Action) protocol.ActionRequest {
	return protocol.ActionRequest{
		TableID:   tableID,
		SeatIndex: float64(a.Seat),
		Action:    string(a.Kind),
		Amount:    a.Amount,
	}
}

// ActionToRecord 生成带时间戳的信箱记录
func ActionToRecord(action string, amount int64, now time.Time) protocol.ActionRecord {
	return protocol.ActionRecord{
		Action:    action,
		Amount:    amount,
		Timestamp: now.UnixMilli(),
	}
}

// ErrBadCommand 无法解析的命令行输入
var ErrBadCommand = errors.New("usage: fold | check | call | raise <amount> | allin")

// ParseCommand 解析命令行输入，如 "raise 60"、"call"，动作不区分大小写
func ParseCommand(line string) (betting.Kind, int64, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 || len(fields) > 2 {
		return "", 0, ErrBadCommand
	}

	word := fields[0]
	if word == "all-in" {
		word = string(betting.AllIn)
	}
	kind, err := betting.ParseKind(word)
	if err != nil {
		return "", 0, ErrBadCommand
	}

	var amount int64
	if len(fields) == 2 {
		amount, err = strconv.ParseInt(fields[1], 10, 64)
		if err != nil || amount < 0 {
			return "", 0, ErrBadCommand
		}
	}
	if kind == betting.Raise && amount == 0 {
		return "", 0, ErrBadCommand
	}
	return kind, amount, nil
}
