package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/internal/registry"
	"github.com/ShayCichocki/cadre/pkg/models"
)

type fakeDelegator struct {
	calls  []string
	result models.DelegationResult
	err    error
}

func (f *fakeDelegator) DelegateTask(description string) (models.DelegationResult, error) {
	f.calls = append(f.calls, description)
	return f.result, f.err
}

func (f *fakeDelegator) SessionID() string             { return "tui-session" }
func (f *fakeDelegator) Metrics() learning.Metrics     { return learning.Metrics{LearningVelocity: 0.25} }
func (f *fakeDelegator) Agents() []models.AgentProfile { return registry.DefaultProfiles() }

func TestApp_SubmitDelegates(t *testing.T) {
	d := &fakeDelegator{result: models.DelegationResult{
		PrimaryAgentID: "consciousness-architect",
		Team:           []string{"consciousness-architect"},
		Rationale:      "best domain fit",
		Requirement:    models.TaskRequirement{Tier: models.TierHigh, Domains: []string{"consciousness"}},
	}}
	app := NewApp(d)

	_, cmd := app.Update(TaskSubmittedMsg{Description: "design it"})
	if cmd == nil {
		t.Fatal("submit should return a delegation command")
	}
	msg := cmd()
	delegated, ok := msg.(DelegatedMsg)
	if !ok {
		t.Fatalf("expected DelegatedMsg, got %T", msg)
	}
	if len(d.calls) != 1 || d.calls[0] != "design it" {
		t.Errorf("calls = %v", d.calls)
	}

	app.Update(delegated)

	view := app.View()
	for _, want := range []string{"tui-session", "consciousness-architect", "best domain fit", "design it"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestApp_RendersFailures(t *testing.T) {
	app := NewApp(&fakeDelegator{})

	app.Update(DelegatedMsg{Description: "blank", Err: errors.New("empty description")})
	app.Update(DelegatedMsg{Description: "orphan", Result: models.DelegationResult{Team: []string{}}})

	view := app.View()
	if !strings.Contains(view, "empty description") {
		t.Error("view should show the delegation error")
	}
	if !strings.Contains(view, "no eligible agent") {
		t.Error("view should show the empty result")
	}
}

func TestApp_HistoryIsBounded(t *testing.T) {
	app := NewApp(&fakeDelegator{})

	for i := 0; i < maxHistory+5; i++ {
		app.Update(DelegatedMsg{Description: "task"})
	}
	if len(app.history) != maxHistory {
		t.Errorf("history length = %d, want %d", len(app.history), maxHistory)
	}
}

func TestApp_Quit(t *testing.T) {
	tests := []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc}

	for _, key := range tests {
		app := NewApp(&fakeDelegator{})
		_, cmd := app.Update(tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("key %v should quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %v: expected QuitMsg", key)
		}
		if app.View() != "Goodbye!\n" {
			t.Errorf("key %v: unexpected view %q", key, app.View())
		}
	}
}

func TestApp_WindowSize(t *testing.T) {
	app := NewApp(&fakeDelegator{})

	app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})

	if app.width != 140 || app.height != 40 {
		t.Errorf("size = %dx%d, want 140x40", app.width, app.height)
	}
	if app.input.width != 140 {
		t.Errorf("input width = %d, want 140", app.input.width)
	}
	if app.card.width != 35 {
		t.Errorf("card width = %d, want 35", app.card.width)
	}

	app.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if app.card.width != minCardWidth {
		t.Errorf("card width = %d, want %d", app.card.width, minCardWidth)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"consciousness-architect", 10, "conscio..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
