package tui

import (
	"fmt"
	"strings"

	"genstudio/internal/session"
	"genstudio/internal/studio"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Gemini Studio"))
	b.WriteString("\n")
	b.WriteString(m.renderModes())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	if line := m.renderAttachment(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.attaching {
		b.WriteString(m.path.View())
	} else {
		b.WriteString(m.prompt.View())
	}
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(infoStyle.Render(m.helpLine()))
	return b.String()
}

func (m *Model) renderModes() string {
	tabs := make([]string, 0, len(studio.Modes))
	for _, mode := range studio.Modes {
		label := mode.Info().Label
		if mode == m.state.Mode {
			tabs = append(tabs, activeModeStyle.Render(label))
		} else {
			tabs = append(tabs, modeStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderAttachment() string {
	var att *session.Attachment
	switch m.state.Mode {
	case studio.ModeVision:
		att = m.state.Image
	case studio.ModeFile:
		att = m.state.File
	default:
		return ""
	}
	if att == nil {
		return infoStyle.Render("no attachment (ctrl+o to attach)")
	}
	return attachmentStyle.Render(fmt.Sprintf("📎 %s (%s, %s)", att.Name, att.MIMEType, humanSize(att.Size)))
}

func (m *Model) helpLine() string {
	if m.attaching {
		return "enter attach • esc cancel"
	}
	if m.state.InFlight {
		return "working… • esc quit"
	}
	return "enter send • tab mode • ctrl+o attach • ctrl+x detach • ctrl+l clear • esc quit"
}

// refreshViewport renders the result area from the current snapshot.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderResult())
	m.viewport.GotoTop()
}

func (m *Model) renderResult() string {
	if m.state.InFlight {
		return m.spinner.View() + " Generating..."
	}
	r := m.state.Result
	if r == nil {
		return infoStyle.Render("Pick a mode and enter a prompt to get started.")
	}
	switch r.Kind {
	case studio.ResultImage:
		if m.savedImage == "" {
			return errorStyle.Render("Image received but could not be saved.")
		}
		return resultStyle.Render("Image saved to " + m.savedImage)
	case studio.ResultText:
		if m.renderer != nil {
			if out, err := m.renderer.Render(r.Content); err == nil {
				return out
			}
		}
		return resultStyle.Render(r.Content)
	default:
		return errorStyle.Render(r.Content)
	}
}
