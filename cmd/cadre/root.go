package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/internal/tui"
)

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "cadre",
	Short: "Capability-based task delegation engine",
	Long: `Cadre routes natural-language task descriptions to the best fitting
agents from a catalog, assembling a team when a task needs more than one
perspective. Alongside delegation it keeps a learning log that can be
snapshotted and restored across sessions.

With no arguments, launches an interactive prompt where you can type tasks
and see which agents would take them.

Session state is resumed from the snapshot file at startup and written back
when a command changes it.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: XDG and .cadre.yaml lookup)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(delegateCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func runInteractive() error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := tui.NewProgram(s.engine).Run(); err != nil {
		return fmt.Errorf("run interactive prompt: %w", err)
	}
	return s.Save()
}
