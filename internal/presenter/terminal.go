package presenter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/roleta-service/internal/entity"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}).
			Underline(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"})

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorLost))
)

// TerminalSink writes cards to a terminal.
type TerminalSink struct {
	w io.Writer
}

func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{w: w}
}

func (s *TerminalSink) Present(_ context.Context, sel *entity.Selection) error {
	_, err := fmt.Fprintln(s.w, RenderCard(NewCard(sel)))
	return err
}

func (s *TerminalSink) Unavailable(_ context.Context, message string) error {
	_, err := fmt.Fprintln(s.w, errorStyle.Render(message))
	return err
}

// RenderCard lays the card out as a bordered box coloured by outcome.
func RenderCard(c Card) string {
	accent := lipgloss.Color(c.Color)

	lines := []string{
		titleStyle.Foreground(accent).Render(c.Title),
		linkStyle.Render(c.URL),
		"",
		titleStyle.Render(c.Outcome),
		dimStyle.Render(c.Summary),
	}
	if c.Image != "" {
		lines = append(lines, dimStyle.Render("poster: "+c.Image))
	}

	return cardStyle.BorderForeground(accent).Render(strings.Join(lines, "\n"))
}
