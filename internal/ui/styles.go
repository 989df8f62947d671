// Package ui 远程座位的终端界面
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	RedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	BlackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	GrayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	TurnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var suitSymbols = map[byte]string{
	'S': "♠",
	'H': "♥",
	'D': "♦",
	'C': "♣",
}

// CardLabel 牌面文字，如 "AH" -> "A♥"、"TD" -> "10♦"。无法识别时原样返回。
func CardLabel(code string) string {
	code = strings.ToUpper(code)
	if len(code) != 2 {
		return code
	}
	sym, ok := suitSymbols[code[1]]
	if !ok {
		return code
	}
	rank := code[:1]
	if rank == "T" {
		rank = "10"
	}
	return rank + sym
}

// RenderCard 按花色着色
func RenderCard(code string) string {
	label := CardLabel(code)
	code = strings.ToUpper(code)
	if len(code) == 2 && (code[1] == 'H' || code[1] == 'D') {
		return RedStyle.Render(label)
	}
	return BlackStyle.Render(label)
}

// RenderCards 渲染一组牌，空时显示占位
func RenderCards(codes []string) string {
	if len(codes) == 0 {
		return GrayStyle.Render("--")
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = RenderCard(c)
	}
	return strings.Join(parts, " ")
}
