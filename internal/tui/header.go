package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/cadre/internal/learning"
)

// Header renders the title bar with the session and its metrics.
type Header struct {
	width int
}

// NewHeader creates a new Header.
func NewHeader() *Header {
	return &Header{width: 80}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header.
func (h *Header) View(sessionID string, m learning.Metrics) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ECDC4")).
		Bold(true).
		Render("cadre")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true).
		Render(fmt.Sprintf("session %s  velocity %.2f  effectiveness %.2f  emergence %.2f",
			sessionID, m.LearningVelocity, m.TransformationEffectiveness, m.EmergenceQuotient))

	return lipgloss.NewStyle().
		Width(h.width).
		PaddingBottom(1).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, subtitle))
}
