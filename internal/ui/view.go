package ui

import (
	"fmt"
	"strings"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/hand"
)

// RenderTable 某个座位看到的牌桌：公共信息、对手、自己的底牌与最近通知
func RenderTable(st *hand.TableState, seat int, notifications []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s  第 %d 手  盲注 %d/%d\n",
		TitleStyle.Render(strings.ToUpper(st.Phase)), st.HandCount, st.SmallBlind, st.BigBlind)
	fmt.Fprintf(&sb, "底池 %d  公共牌 %s\n\n", st.Pot, RenderCards(st.CommunityCards))

	for i := range st.Players {
		p := &st.Players[i]
		if p.SeatIndex == seat {
			continue
		}
		sb.WriteString(renderOpponent(p, isActive(st, p.SeatIndex)))
		sb.WriteString("\n")
	}

	me := st.Player(seat)
	if me == nil {
		sb.WriteString("\n" + ErrorStyle.Render(fmt.Sprintf("座位 %d 不在牌桌上", seat)))
		return BoxStyle.Render(sb.String())
	}

	fmt.Fprintf(&sb, "\n%s %s%s\n", me.Name, positionTags(me), statusTag(me))
	fmt.Fprintf(&sb, "手牌 %s  筹码 %d  本轮已下 %d\n", RenderCards(me.Cards), me.Chips, me.RoundBet)

	if st.Champion != "" {
		fmt.Fprintf(&sb, "\n🏆 %s 赢得比赛\n", st.Champion)
	} else if isActive(st, seat) {
		sb.WriteString("\n" + TurnStyle.Render(RenderPrompt(st.ActionContext)) + "\n")
	}

	if len(notifications) > 0 {
		sb.WriteString("\n")
		for _, n := range notifications {
			sb.WriteString(GrayStyle.Render("· "+n) + "\n")
		}
	}
	return BoxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// RenderPrompt 轮到自己时的可选动作
func RenderPrompt(ctx *betting.Context) string {
	if ctx == nil {
		return ">>> 轮到你"
	}
	var opts []string
	opts = append(opts, "fold")
	if ctx.CanCheck {
		opts = append(opts, "check")
	} else {
		opts = append(opts, fmt.Sprintf("call %d", ctx.NeedToCall))
	}
	if ctx.PlayerChips > ctx.NeedToCall {
		opts = append(opts, fmt.Sprintf("raise <≥%d>", ctx.MinRaise))
	}
	opts = append(opts, "allin")
	return ">>> 轮到你: " + strings.Join(opts, " | ")
}

func renderOpponent(p *hand.PlayerState, active bool) string {
	marker := "  "
	if active {
		marker = "▶ "
	}
	line := fmt.Sprintf("%s%-8s 筹码 %-6d 下注 %-5d %s%s", marker, p.Name, p.Chips, p.RoundBet, positionTags(p), statusTag(p))
	if p.Folded {
		return GrayStyle.Render(line)
	}
	return line
}

func positionTags(p *hand.PlayerState) string {
	var tags []string
	if p.Dealer {
		tags = append(tags, "D")
	}
	if p.SmallBlind {
		tags = append(tags, "SB")
	}
	if p.BigBlind {
		tags = append(tags, "BB")
	}
	if len(tags) == 0 {
		return ""
	}
	return "[" + strings.Join(tags, ",") + "]"
}

func statusTag(p *hand.PlayerState) string {
	switch {
	case p.Folded:
		return " 已弃牌"
	case p.AllIn:
		return " 全下"
	}
	return ""
}

func isActive(st *hand.TableState, seat int) bool {
	return st.ActivePlayerSeatIndex != nil && *st.ActivePlayerSeatIndex == seat
}
