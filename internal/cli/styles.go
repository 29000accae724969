// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/meetlog/internal/stats"
)

// Palette.
var (
	AccentColor  = lipgloss.Color("#7C6FE4")
	OKColor      = lipgloss.Color("#3FB68B")
	CautionColor = lipgloss.Color("#F2C14E")
	FailColor    = lipgloss.Color("#E5534B")
	NoteColor    = lipgloss.Color("#6CB6D9")
	DimColor     = lipgloss.Color("#7A7A7A")
	BorderColor  = lipgloss.Color("#3A3A3A")
)

var (
	// TitleStyle is used for report headings.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor).MarginBottom(1)

	// SubtleStyle renders secondary text such as empty-report notices.
	SubtleStyle = lipgloss.NewStyle().Foreground(DimColor).Italic(true)

	// BoxStyle frames a report.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
)

// message is a status line kind: a marker followed by the text, in one color.
type message struct {
	marker string
	style  lipgloss.Style
}

var (
	successMsg = message{"✓", lipgloss.NewStyle().Foreground(OKColor)}
	errorMsg   = message{"✗", lipgloss.NewStyle().Foreground(FailColor)}
	warningMsg = message{"!", lipgloss.NewStyle().Foreground(CautionColor)}
	infoMsg    = message{"•", lipgloss.NewStyle().Foreground(NoteColor)}
)

func (m message) format(text string) string {
	return m.style.Render(m.marker + " " + text)
}

// FormatSuccess marks text as a completed action.
func FormatSuccess(text string) string { return successMsg.format(text) }

// FormatError marks text as a failure.
func FormatError(text string) string { return errorMsg.format(text) }

// FormatWarning marks text as needing attention.
func FormatWarning(text string) string { return warningMsg.format(text) }

// FormatInfo marks text as informational.
func FormatInfo(text string) string { return infoMsg.format(text) }

// FormatTitle renders a report heading.
func FormatTitle(title string) string {
	return TitleStyle.Render("📊 " + title)
}

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox frames content under a heading.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, "", content))
}

// RenderCounts lays counted entries out as a two-column table with labels
// padded to the widest one. No entries renders empty instead.
func RenderCounts(entries []stats.Count, empty string) string {
	if len(entries) == 0 {
		return SubtleStyle.Render(empty)
	}

	width := 0
	for _, e := range entries {
		width = max(width, lipgloss.Width(e.Label))
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Label)
		b.WriteString(strings.Repeat(" ", width-lipgloss.Width(e.Label)+2))
		b.WriteString(strconv.Itoa(e.Count))
	}
	return b.String()
}
