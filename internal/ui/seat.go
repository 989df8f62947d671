package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/holdem-table/internal/game/betting"
	"github.com/palemoky/holdem-table/internal/game/hand"
	"github.com/palemoky/holdem-table/internal/protocol"
	"github.com/palemoky/holdem-table/internal/protocol/convert"
)

// SubmitFunc 提交本座位的动作
type SubmitFunc func(kind betting.Kind, amount int64) error

// SnapshotMsg 收到新的牌桌快照
type SnapshotMsg struct {
	Snapshot *protocol.Snapshot
}

// SubmitResultMsg 动作提交结果
type SubmitResultMsg struct {
	Kind   betting.Kind
	Amount int64
	Err    error
}

// SeatModel 远程座位的 bubbletea model
type SeatModel struct {
	seat    int
	tableID string
	submit  SubmitFunc

	state         *hand.TableState
	notifications []string
	version       int64

	input  textinput.Model
	status string
	err    string
}

// NewSeatModel 创建座位 model
func NewSeatModel(tableID string, seat int, submit SubmitFunc) *SeatModel {
	ti := textinput.New()
	ti.Placeholder = "fold | check | call | raise <amount> | allin"
	ti.CharLimit = 32
	ti.Width = 40
	ti.Focus()

	return &SeatModel{
		seat:    seat,
		tableID: tableID,
		submit:  submit,
		input:   ti,
	}
}

// Init 实现 tea.Model
func (m *SeatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update 实现 tea.Model
func (m *SeatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.handleEnter()
		}

	case SnapshotMsg:
		m.applySnapshot(msg.Snapshot)
		return m, nil

	case SubmitResultMsg:
		if msg.Err != nil {
			m.err = fmt.Sprintf("提交失败: %v", msg.Err)
			m.status = ""
		} else {
			m.err = ""
			m.status = fmt.Sprintf("已提交 %s", describe(msg.Kind, msg.Amount))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *SeatModel) handleEnter() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return nil
	}
	kind, amount, err := convert.ParseCommand(line)
	if err != nil {
		m.err = err.Error()
		return nil
	}
	// 未轮到本座位时不提交
	if !m.MyTurn() {
		m.err = "还没轮到你，动作未提交"
		return nil
	}
	m.input.SetValue("")
	m.err = ""
	m.status = "提交中..."

	submit := m.submit
	return func() tea.Msg {
		return SubmitResultMsg{Kind: kind, Amount: amount, Err: submit(kind, amount)}
	}
}

// applySnapshot 只接受更新的版本
func (m *SeatModel) applySnapshot(snap *protocol.Snapshot) {
	if snap == nil || snap.Version <= m.version {
		return
	}
	var st hand.TableState
	if err := json.Unmarshal(snap.State, &st); err != nil {
		m.err = fmt.Sprintf("快照 v%d 无法解析: %v", snap.Version, err)
		return
	}
	m.state = &st
	m.notifications = snap.Notifications
	m.version = snap.Version
}

// MyTurn 是否轮到本座位
func (m *SeatModel) MyTurn() bool {
	return m.state != nil && isActive(m.state, m.seat)
}

// View 实现 tea.Model
func (m *SeatModel) View() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(fmt.Sprintf("♠ 牌桌 %s · 座位 %d", m.tableID, m.seat)))
	sb.WriteString("\n\n")

	if m.state == nil {
		sb.WriteString(GrayStyle.Render("等待牌桌状态..."))
	} else {
		sb.WriteString(RenderTable(m.state, m.seat, m.notifications))
	}

	sb.WriteString("\n")
	sb.WriteString(PromptStyle.Render(m.input.View()))
	sb.WriteString("\n")
	if m.err != "" {
		sb.WriteString(ErrorStyle.Render(m.err) + "\n")
	} else if m.status != "" {
		sb.WriteString(GrayStyle.Render(m.status) + "\n")
	}
	sb.WriteString(GrayStyle.Render("Enter 提交 · Esc 退出"))
	return DocStyle.Render(sb.String())
}

func describe(kind betting.Kind, amount int64) string {
	if kind == betting.Raise {
		return fmt.Sprintf("%s %d", kind, amount)
	}
	return string(kind)
}
