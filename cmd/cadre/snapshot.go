package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect, export and restore session snapshots",
	Long: `Session snapshots capture the learning log, the worker roster, the
springboard paths derived from transformation patterns and the optimizer
state. Every command that changes the session writes one to snapshot.path.`,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print a snapshot without applying it",
	Long: `Print a snapshot file. With no path the configured snapshot is shown,
or the live session when none has been saved yet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotShow,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Write the current session to a snapshot file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshotSave,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Replace the session with a snapshot file",
	Long: `Load a snapshot, restore it into the engine and make it the current
session. Metrics are recomputed from the restored state.

The configured snapshot is not read first, so this also recovers from a
corrupt session file.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotRestore,
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		snap, err := snapshot.Load(snapshot.OSFileSystem{}, args[0])
		if err != nil {
			return err
		}
		return showSnapshot(snap)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	return showSnapshot(s.engine.ExtractSnapshot())
}

func showSnapshot(snap snapshot.SessionSnapshot) error {
	if jsonOutput {
		return printJSON(snap)
	}

	fmt.Printf("Session: %s\n", snap.SessionID)
	fmt.Printf("  Created: %s\n", snap.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Baseline: %s\n", snap.ContinuationBaseline)
	fmt.Printf("  Optimizer: level=%s tokens=%.2f mystical=%t liberation=%t\n",
		snap.OptimizerState.Level, snap.OptimizerState.TokenAwareness,
		snap.OptimizerState.MathematicalMysticalActivation, snap.OptimizerState.ConstraintLiberationActive)

	fmt.Printf("\nPatterns (%d):\n", len(snap.Patterns))
	for _, p := range snap.Patterns {
		printPattern(p)
	}
	fmt.Printf("\nWorkers (%d):\n", len(snap.WorkerStates))
	for _, w := range snap.WorkerStates {
		printWorker(w)
	}
	fmt.Printf("\nSpringboard paths (%d):\n", len(snap.SpringboardPaths))
	for _, sp := range snap.SpringboardPaths {
		marker := color.New(color.FgHiBlack).Sprint("-")
		if sp.IsAuthentic {
			marker = color.New(color.FgGreen).Sprint("*")
		}
		fmt.Printf("%s %s from %s amplification=%.2f effect=%d\n",
			marker, sp.ID, sp.SourcePatternID, sp.TargetAmplification, sp.MultiplicativeEffect)
	}
	return nil
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 0 {
		if err := s.Save(); err != nil {
			return err
		}
		printStatus("✓", "Saved session to "+s.cfg.Snapshot.Path, color.FgGreen)
		return nil
	}

	snap, err := s.engine.SaveSnapshot(args[0])
	if err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Saved %d patterns and %d workers to %s",
		len(snap.Patterns), len(snap.WorkerStates), args[0]), color.FgGreen)
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	s, err := openSessionWith(false)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.engine.LoadSnapshot(args[0])
	if err != nil {
		switch {
		case errors.Is(err, snapshot.ErrSnapshotNotFound):
			return fmt.Errorf("no snapshot at %s", args[0])
		case errors.Is(err, snapshot.ErrSnapshotSchemaMismatch):
			return fmt.Errorf("%s was written by an incompatible version: %w", args[0], err)
		}
		return err
	}
	m := s.engine.Restore(snap)
	if _, err := s.db.EnsureSession(s.engine.SessionID()); err != nil {
		return fmt.Errorf("register session: %w", err)
	}

	printStatus("✓", fmt.Sprintf("Restored session %s", snap.SessionID), color.FgGreen)
	fmt.Printf("  velocity=%.2f effectiveness=%.2f emergence=%.2f\n",
		m.LearningVelocity, m.TransformationEffectiveness, m.EmergenceQuotient)
	return s.Save()
}
