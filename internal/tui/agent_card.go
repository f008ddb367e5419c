package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// AgentCard renders a single agent profile as a card.
type AgentCard struct {
	width int

	borderStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	idStyle       lipgloss.Style
	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
}

// NewAgentCard creates a new AgentCard.
func NewAgentCard() *AgentCard {
	return &AgentCard{
		width: minCardWidth,

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),

		selectedStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1),

		idStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
	}
}

// SetWidth sets the card width.
func (c *AgentCard) SetWidth(width int) {
	c.width = width
}

// View renders profile. Selected cards are highlighted.
func (c *AgentCard) View(profile models.AgentProfile, selected bool) string {
	lines := []string{
		c.idStyle.Render(truncate(profile.ID, c.width-4)),
		c.labelStyle.Render("tier  ") + c.valueStyle.Render(string(profile.Tier)),
		c.labelStyle.Render("style ") + c.valueStyle.Render(string(profile.Style)),
		c.labelStyle.Render("dom   ") + c.valueStyle.Render(truncate(strings.Join(profile.Domains, ","), c.width-10)),
	}

	style := c.borderStyle
	if selected {
		style = c.selectedStyle
	}
	return style.Width(c.width - 2).Render(strings.Join(lines, "\n"))
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
