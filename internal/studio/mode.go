package studio

import (
	"fmt"
	"strings"
)

// Mode selects which inputs a submission needs and which remote operation runs.
type Mode string

const (
	ModeImage  Mode = "image"
	ModeVision Mode = "vision"
	ModeFile   Mode = "file"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeImage, ModeVision, ModeFile}

// ModeInfo is the presentation metadata shells render for a mode.
type ModeInfo struct {
	Mode        Mode   `json:"mode"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	// Accept is the upload filter for the mode's attachment slot, empty when
	// the mode takes no attachment.
	Accept string `json:"accept,omitempty"`
}

var modeInfo = map[Mode]ModeInfo{
	ModeImage: {
		Mode:        ModeImage,
		Label:       "Image Gen",
		Placeholder: "A futuristic cityscape with flying cars...",
	},
	ModeVision: {
		Mode:        ModeVision,
		Label:       "Vision",
		Placeholder: "What is in this image? Describe it in detail.",
		Accept:      "image/*",
	},
	ModeFile: {
		Mode:        ModeFile,
		Label:       "Chat with File",
		Placeholder: "Summarize this document in three bullet points.",
		Accept:      ".txt,.md,.js,.ts,.py,.html,.css,.json",
	},
}

// Info returns the presentation metadata for m.
func (m Mode) Info() ModeInfo {
	return modeInfo[m]
}

func (m Mode) Valid() bool {
	_, ok := modeInfo[m]
	return ok
}

func (m Mode) String() string { return string(m) }

// ParseMode accepts the wire form of a mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// AllModeInfo returns the metadata table in display order.
func AllModeInfo() []ModeInfo {
	out := make([]ModeInfo, 0, len(Modes))
	for _, m := range Modes {
		out = append(out, m.Info())
	}
	return out
}
