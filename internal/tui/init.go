package tui

import (
	"context"

	"genstudio/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func NewModel(ctrl *session.Controller) *Model {
	ta := textarea.New()
	ta.Prompt = "❯ "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(2)
	ta.SetWidth(80)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB")).Bold(true)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.Focus()

	ti := textinput.New()
	ti.Prompt = "path: "
	ti.Placeholder = "/path/to/file"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB"))

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctrl:     ctrl,
		sub:      ctrl.Subscribe(ctx),
		stop:     cancel,
		state:    ctrl.Snapshot(),
		prompt:   ta,
		path:     ti,
		spinner:  sp,
		viewport: viewport.New(80, 15),
	}
	m.applyModeInfo()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, waitForSnapshot(m.sub))
}

func NewProgram(ctrl *session.Controller) *tea.Program {
	return tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
}

func waitForSnapshot(sub <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}
