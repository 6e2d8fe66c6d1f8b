package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the terminal color scheme.
type Theme struct {
	Primary   lipgloss.Color // accent, titles
	Dim       lipgloss.Color // help and status text
	User      lipgloss.Color // user transcript lines
	Assistant lipgloss.Color // assistant transcript lines
	Feedback  lipgloss.Color // correction/feedback blocks
	Danger    lipgloss.Color // errors, wrong answers
	Success   lipgloss.Color // correct answers
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary:   lipgloss.Color("#00b4ff"),
	Dim:       lipgloss.Color("#6e7681"),
	User:      lipgloss.Color("#e6edf3"),
	Assistant: lipgloss.Color("#7ee787"),
	Feedback:  lipgloss.Color("#d2a8ff"),
	Danger:    lipgloss.Color("#ff7b72"),
	Success:   lipgloss.Color("#7ee787"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Help     lipgloss.Style
	User     lipgloss.Style
	Asst     lipgloss.Style
	Feedback lipgloss.Style
	Danger   lipgloss.Style
	Success  lipgloss.Style
	Card     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Help:     lipgloss.NewStyle().Foreground(t.Dim),
		User:     lipgloss.NewStyle().Foreground(t.User),
		Asst:     lipgloss.NewStyle().Foreground(t.Assistant),
		Feedback: lipgloss.NewStyle().Foreground(t.Feedback).Italic(true),
		Danger:   lipgloss.NewStyle().Foreground(t.Danger),
		Success:  lipgloss.NewStyle().Foreground(t.Success),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 2),
	}
}

// UserLine renders a user transcript line.
func (s Styles) UserLine(text string) string {
	return s.Label.Render("나 ▸ ") + s.User.Render(text)
}

// AssistantLine renders an assistant reply with its optional feedback
// block underneath.
func (s Styles) AssistantLine(response, feedback string) string {
	out := s.Label.Render("AI ▸ ") + s.Asst.Render(response)
	if feedback != "" {
		for _, line := range strings.Split(feedback, "\n") {
			out += "\n" + s.Feedback.Render("   │ "+line)
		}
	}
	return out
}

// Stat is one dashboard figure.
type Stat struct {
	Label string
	Value string
}

// Dashboard renders stats as a row of bordered cards.
func (s Styles) Dashboard(title string, stats []Stat) string {
	cards := make([]string, 0, len(stats))
	for _, st := range stats {
		body := s.Title.Render(st.Value) + "\n" + s.Help.Render(st.Label)
		cards = append(cards, s.Card.Render(body))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	return s.Title.Render(title) + "\n" + row
}

// Flashcard renders one card side.
func (s Styles) Flashcard(front string, back string, flipped bool, pos, total int) string {
	var body string
	if flipped {
		body = s.Asst.Render(back)
	} else {
		body = s.User.Render(front)
	}
	footer := s.Help.Render(fmt.Sprintf("%d / %d", pos, total))
	return s.Card.Render(body+"\n\n"+footer)
}
