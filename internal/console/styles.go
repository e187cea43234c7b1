package console

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Level is the severity of a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelOK
	LevelError
	LevelWarning
)

// Styles holds the rendering for each status level.
type Styles struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Assistant lipgloss.Style
	levels    map[Level]lipgloss.Style
	icons     map[Level]string
}

// NewStyles builds styles bound to w. Colour is only emitted when color is
// true and the renderer detects a capable terminal.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	plain := r.NewStyle()
	s := Styles{
		Title:     plain,
		Muted:     plain,
		Assistant: plain,
		levels: map[Level]lipgloss.Style{
			LevelInfo: plain, LevelOK: plain, LevelError: plain, LevelWarning: plain,
		},
		icons: map[Level]string{
			LevelInfo:    "i",
			LevelOK:      "✔",
			LevelError:   "✖",
			LevelWarning: "!",
		},
	}
	if !color {
		return s
	}
	s.Title = r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	s.Muted = r.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	s.Assistant = r.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	s.levels[LevelInfo] = r.NewStyle().Foreground(lipgloss.Color("#89B4FA"))
	s.levels[LevelOK] = r.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	s.levels[LevelError] = r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8"))
	s.levels[LevelWarning] = r.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	return s
}

// Status renders one status line without a trailing newline.
func (s Styles) Status(level Level, msg string) string {
	return s.levels[level].Render(s.icons[level] + " " + msg)
}

// ColorEnabled reports whether w is an interactive terminal and NO_COLOR is unset.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
