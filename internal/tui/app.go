package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// maxHistory bounds the number of delegations kept on screen.
const maxHistory = 20

const minCardWidth = 28

// Delegator is the part of the engine the prompt drives.
type Delegator interface {
	DelegateTask(description string) (models.DelegationResult, error)
	SessionID() string
	Metrics() learning.Metrics
	Agents() []models.AgentProfile
}

// DelegatedMsg carries the outcome of a submitted task.
type DelegatedMsg struct {
	Description string
	Result      models.DelegationResult
	Err         error
}

type historyEntry struct {
	description string
	result      models.DelegationResult
	err         error
}

// App is the interactive delegation prompt.
type App struct {
	delegator Delegator
	header    *Header
	input     *InputField
	card      *AgentCard
	history   []historyEntry
	width     int
	height    int
	quitting  bool

	errStyle       lipgloss.Style
	primaryStyle   lipgloss.Style
	rationaleStyle lipgloss.Style
	dimStyle       lipgloss.Style
}

// NewApp creates the prompt over d.
func NewApp(d Delegator) *App {
	return &App{
		delegator: d,
		header:    NewHeader(),
		input:     NewInputField(),
		card:      NewAgentCard(),
		width:     80,
		height:    24,

		errStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		primaryStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		rationaleStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

// NewProgram creates a Bubbletea program running the prompt.
func NewProgram(d Delegator) *tea.Program {
	return tea.NewProgram(NewApp(d), tea.WithAltScreen())
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.input.Focus()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			a.quitting = true
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.header.SetWidth(msg.Width)
		a.input.SetWidth(msg.Width)
		a.card.SetWidth(max(minCardWidth, msg.Width/4))
		return a, nil

	case TaskSubmittedMsg:
		return a, a.delegate(msg.Description)

	case DelegatedMsg:
		a.history = append(a.history, historyEntry{
			description: msg.Description,
			result:      msg.Result,
			err:         msg.Err,
		})
		if len(a.history) > maxHistory {
			a.history = a.history[len(a.history)-maxHistory:]
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) delegate(description string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.delegator.DelegateTask(description)
		return DelegatedMsg{Description: description, Result: result, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	var selected models.DelegationResult
	if n := len(a.history); n > 0 {
		selected = a.history[n-1].result
	}

	cardWidth := a.card.width
	historyWidth := a.width - cardWidth - 2
	if historyWidth < 20 {
		historyWidth = a.width
	}

	body := lipgloss.NewStyle().Width(historyWidth).Render(a.renderHistory())
	if historyWidth != a.width {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", a.renderAgents(selected))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.header.View(a.delegator.SessionID(), a.delegator.Metrics()),
		body,
		a.input.View(),
		a.dimStyle.Render("enter: delegate  esc: quit"),
	)
}

func (a *App) renderHistory() string {
	if len(a.history) == 0 {
		return a.dimStyle.Render("No tasks delegated yet.")
	}

	var b strings.Builder
	for i := len(a.history) - 1; i >= 0; i-- {
		entry := a.history[i]
		fmt.Fprintf(&b, "%s\n", a.dimStyle.Render("> "+entry.description))
		switch {
		case entry.err != nil:
			fmt.Fprintf(&b, "%s\n", a.errStyle.Render(entry.err.Error()))
		case !entry.result.Eligible():
			fmt.Fprintf(&b, "%s\n", a.errStyle.Render("no eligible agent"))
		default:
			req := entry.result.Requirement
			fmt.Fprintf(&b, "%s %s\n",
				a.primaryStyle.Render(entry.result.PrimaryAgentID),
				a.dimStyle.Render(fmt.Sprintf("[%s, %s]", req.Tier, strings.Join(req.Domains, ","))))
			if len(entry.result.Team) > 1 {
				fmt.Fprintf(&b, "team: %s\n", strings.Join(entry.result.Team, ", "))
			}
		}
		if entry.result.Rationale != "" {
			fmt.Fprintf(&b, "%s\n", a.rationaleStyle.Render(entry.result.Rationale))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderAgents(selected models.DelegationResult) string {
	team := make(map[string]bool, len(selected.Team))
	for _, id := range selected.Team {
		team[id] = true
	}

	var cards []string
	for _, p := range a.delegator.Agents() {
		cards = append(cards, a.card.View(p, team[p.ID]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}
