package tui

import (
	"context"
	"errors"
	"strings"

	"genstudio/internal/filecodec"
	"genstudio/internal/session"
	"genstudio/internal/studio"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.InFlight {
			m.refreshViewport()
		}
		return m, cmd

	case snapshotMsg:
		m.applySnapshot(session.Snapshot(msg))
		return m, waitForSnapshot(m.sub)

	case subscriptionClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.stop()
		return m, tea.Quit
	}

	if m.attaching {
		return m.handleAttachKey(msg)
	}

	if m.state.InFlight {
		if msg.String() == "esc" {
			m.stop()
			return m, tea.Quit
		}
		return m, nil
	}

	m.notice = ""
	switch msg.String() {
	case "esc":
		m.stop()
		return m, tea.Quit
	case "tab":
		m.intent(m.ctrl.ChangeMode(m.shiftMode(1)))
		return m, nil
	case "shift+tab":
		m.intent(m.ctrl.ChangeMode(m.shiftMode(-1)))
		return m, nil
	case "ctrl+o":
		if m.state.Mode.Info().Accept == "" {
			m.notice = "this mode takes no attachment"
			return m, nil
		}
		m.attaching = true
		m.prompt.Blur()
		m.path.SetValue("")
		return m, m.path.Focus()
	case "ctrl+x":
		m.intent(m.setAttachment(nil))
		return m, nil
	case "ctrl+l":
		m.intent(m.ctrl.ClearInputs())
		return m, nil
	case "enter":
		_, outcome := m.ctrl.SubmitAsync(context.Background())
		if outcome == session.OutcomeIgnored && m.state.Prompt == "" {
			m.notice = "enter a prompt first"
		}
		if outcome == session.OutcomeDispatched {
			m.savedImage, m.savedImageContent = "", ""
		}
		m.applySnapshot(m.ctrl.Snapshot())
		return m, nil
	}

	var cmd tea.Cmd
	before := m.prompt.Value()
	m.prompt, cmd = m.prompt.Update(msg)
	if after := m.prompt.Value(); after != before {
		m.intent(m.ctrl.SetPrompt(after))
	}
	return m, cmd
}

func (m *Model) handleAttachKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.endAttach()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.path.Value())
		m.endAttach()
		if path == "" {
			return m, nil
		}
		f, err := filecodec.NewOnDisk(expandHome(path))
		if err != nil {
			m.notice = "cannot attach: " + err.Error()
			return m, nil
		}
		m.intent(m.setAttachment(f))
		return m, nil
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *Model) endAttach() {
	m.attaching = false
	m.path.Blur()
	m.prompt.Focus()
}

// setAttachment targets the slot the current mode uses.
func (m *Model) setAttachment(f filecodec.File) error {
	switch m.state.Mode {
	case studio.ModeVision:
		return m.ctrl.SetImageAttachment(f)
	case studio.ModeFile:
		return m.ctrl.SetFileAttachment(f)
	}
	return nil
}

func (m *Model) intent(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrBusy):
		m.notice = "a request is already in progress"
	default:
		m.notice = err.Error()
	}
	// Apply synchronously so the next keystroke sees the new state; the
	// subscription delivers the same snapshot again later.
	m.applySnapshot(m.ctrl.Snapshot())
}

func (m *Model) shiftMode(delta int) studio.Mode {
	idx := 0
	for i, mode := range studio.Modes {
		if mode == m.state.Mode {
			idx = i
		}
	}
	n := len(studio.Modes)
	return studio.Modes[((idx+delta)%n+n)%n]
}

func (m *Model) applySnapshot(snap session.Snapshot) {
	if snap.Version < m.state.Version {
		return
	}
	modeChanged := snap.Mode != m.state.Mode
	m.state = snap
	if m.prompt.Value() != snap.Prompt {
		m.prompt.SetValue(snap.Prompt)
	}
	if modeChanged {
		m.applyModeInfo()
	}
	switch r := snap.Result; {
	case r == nil || snap.InFlight:
		m.savedImage, m.savedImageContent = "", ""
	case r.Kind == studio.ResultImage && r.Content != m.savedImageContent:
		path, err := saveImage(r)
		if err != nil {
			m.notice = "could not save image: " + err.Error()
		}
		m.savedImage = path
		m.savedImageContent = r.Content
	}
	m.refreshViewport()
}

func (m *Model) applyModeInfo() {
	m.prompt.Placeholder = m.state.Mode.Info().Placeholder
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	m.prompt.SetWidth(inner)
	m.path.Width = inner - len(m.path.Prompt)
	m.viewport.Width = inner
	vh := height - 10
	if vh < 3 {
		vh = 3
	}
	m.viewport.Height = vh
	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(inner-4),
	)
	m.refreshViewport()
}
