package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/internal/state"
)

var (
	finishFailed bool
	finishForget bool
)

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "End the current session",
	Long: `Mark the current session finished and remove its snapshot so the next
command starts a fresh session.

Examples:
  cadre finish            # Mark completed
  cadre finish --failed   # Mark failed so it is not offered for resumption
  cadre finish --forget   # Also drop its patterns from the archive`,
	Args: cobra.NoArgs,
	RunE: runFinish,
}

var (
	cleanupOlderThan time.Duration
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge old sessions",
	Long: `Delete sessions, with their delegations and snapshot index entries,
whose last activity is older than --older-than.

Examples:
  cadre cleanup
  cadre cleanup --older-than 168h`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	finishCmd.Flags().BoolVar(&finishFailed, "failed", false, "Mark the session failed instead of completed")
	finishCmd.Flags().BoolVar(&finishForget, "forget", false, "Delete the session's archived patterns")

	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 30*24*time.Hour, "Age threshold for purging")
}

func runFinish(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	id := s.engine.SessionID()
	rm := state.NewRecoveryManager(s.db)
	if finishFailed {
		err = rm.Clean(id)
	} else {
		err = rm.Complete(id)
	}
	if err != nil {
		return err
	}

	if finishForget {
		if err := s.patterns.DeleteSession(id); err != nil {
			return fmt.Errorf("forget patterns: %w", err)
		}
	}

	if err := os.Remove(s.cfg.Snapshot.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}

	status := state.SessionCompleted
	if finishFailed {
		status = state.SessionFailed
	}
	printStatus("✓", fmt.Sprintf("Session %s marked %s", id, status), color.FgGreen)
	return nil
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := state.Open(cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	n, err := db.PurgeOldSessions(cleanupOlderThan)
	if err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Purged %d session(s) older than %s", n, cleanupOlderThan), color.FgGreen)
	return nil
}
