package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/internal/config"
	"github.com/ShayCichocki/cadre/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current session state",
	Long: `Display the current state of the cadre session.

Shows:
  - The active session and whether it can be resumed
  - Recent delegations in that session
  - How often each agent has been picked
  - Recently finished sessions`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := os.Stat(cfg.State.DBPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No active session. Run 'cadre delegate <task>' to start.")
		return nil
	}

	db, err := state.Open(cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	interrupted, err := state.NewRecoveryManager(db).CheckForInterrupted()
	if err != nil {
		return err
	}

	if interrupted == nil {
		fmt.Println("No active session. Run 'cadre delegate <task>' to start.")
	} else if err := displayActiveSession(db, cfg, interrupted); err != nil {
		return err
	}

	fmt.Println()
	if err := displayAgentUsage(db); err != nil {
		return err
	}
	return displayRecentSessions(db)
}

func displayActiveSession(db *state.DB, cfg *config.Config, s *state.InterruptedSession) error {
	fmt.Printf("Current Session: %s\n", s.SessionID)
	fmt.Printf("  Started: %s\n", formatSince(s.StartedAt))
	fmt.Printf("  Last activity: %s\n", formatSince(s.LastActivity))

	switch {
	case s.Resumable():
		printStatus("✓", fmt.Sprintf("Snapshot %s (%d patterns, %d workers)",
			s.Snapshot.Path, s.Snapshot.PatternCount, s.Snapshot.WorkerCount), color.FgGreen)
	case s.SnapshotMissing:
		printStatus("⚠", "Snapshot "+s.Snapshot.Path+" is missing", color.FgYellow)
	default:
		printStatus("⚠", "No snapshot saved yet (expected at "+cfg.Snapshot.Path+")", color.FgYellow)
	}

	delegations, err := db.ListDelegations(s.SessionID, 5)
	if err != nil {
		return err
	}
	if len(delegations) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println("Recent Delegations:")
	for _, d := range delegations {
		primary := d.PrimaryAgent
		if primary == "" {
			primary = "(none)"
		}
		fmt.Printf("  [%s] %q -> %s\n", d.Tier, d.Description, primary)
	}
	return nil
}

func displayAgentUsage(db *state.DB) error {
	usage, err := db.AgentUsage()
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		return nil
	}

	ids := make([]string, 0, len(usage))
	for id := range usage {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if usage[ids[i]] != usage[ids[j]] {
			return usage[ids[i]] > usage[ids[j]]
		}
		return ids[i] < ids[j]
	})

	fmt.Println("Agent Usage:")
	for _, id := range ids {
		fmt.Printf("  %-26s %d\n", id, usage[id])
	}
	fmt.Println()
	return nil
}

func displayRecentSessions(db *state.DB) error {
	sessions, err := db.ListSessions(0)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	var recent []state.Session
	for _, s := range sessions {
		if s.Status != state.SessionActive {
			recent = append(recent, s)
			if len(recent) >= 5 {
				break
			}
		}
	}

	if len(recent) == 0 {
		return nil
	}

	fmt.Println("Recent Sessions:")
	for _, s := range recent {
		fmt.Printf("  %s: %s (%s)\n", s.ID, s.Status, formatSince(s.StartedAt))
	}
	return nil
}

// formatSince renders a stored timestamp as a relative age.
func formatSince(stamp string) string {
	t, err := state.ParseTime(stamp)
	if err != nil {
		return stamp
	}
	return formatDuration(time.Since(t)) + " ago"
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
