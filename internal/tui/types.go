package tui

import (
	"genstudio/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// snapshotMsg carries a controller snapshot into the update loop.
type snapshotMsg session.Snapshot

// subscriptionClosedMsg is sent once the controller subscription ends.
type subscriptionClosedMsg struct{}

// Model renders one Controller. It never mutates state itself: every key that
// changes inputs is turned into a controller intent, and the view is rebuilt
// from the snapshots the controller publishes.
type Model struct {
	ctrl *session.Controller
	sub  <-chan session.Snapshot
	stop func()

	state session.Snapshot

	prompt    textarea.Model
	path      textinput.Model
	attaching bool
	spinner   spinner.Model
	viewport  viewport.Model
	renderer  *glamour.TermRenderer

	// savedImage is where the current image result was written. It is reset
	// when a submission clears the result, so later intents that keep the
	// result do not write it again.
	savedImage        string
	savedImageContent string
	notice            string

	width  int
	height int
}
