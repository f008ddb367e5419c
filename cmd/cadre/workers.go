package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/pkg/models"
)

var (
	workerState string
	workerScore float64
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the worker roster",
	Args:  cobra.NoArgs,
	RunE:  runWorkers,
}

var workersSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Change a worker's state or capability score",
	Long: `Change a worker's active state or capability score.

Activating a worker stamps its last activation time.

Examples:
  cadre workers set w-meta --state active
  cadre workers set w-transform --score 0.9`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkersSet,
}

func init() {
	workersSetCmd.Flags().StringVar(&workerState, "state", "", "New state: active, dormant or archived")
	workersSetCmd.Flags().Float64Var(&workerScore, "score", 0, "New capability score in [0,1]")

	workersCmd.AddCommand(workersSetCmd)
}

func runWorkers(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	workers := s.engine.Workers()
	if jsonOutput {
		return printJSON(workers)
	}
	if len(workers) == 0 {
		fmt.Println("No workers in roster.")
		return nil
	}
	for _, w := range workers {
		printWorker(w)
	}
	return nil
}

func runWorkersSet(cmd *cobra.Command, args []string) error {
	scoreSet := cmd.Flags().Changed("score")
	if workerState == "" && !scoreSet {
		return fmt.Errorf("nothing to change: pass --state or --score")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var w models.WorkerState
	if scoreSet {
		if w, err = s.engine.SetWorkerScore(args[0], workerScore); err != nil {
			return err
		}
	}
	if workerState != "" {
		if w, err = s.engine.SetWorkerState(args[0], models.ActiveState(workerState)); err != nil {
			return err
		}
	}

	if jsonOutput {
		if err := printJSON(w); err != nil {
			return err
		}
	} else {
		printWorker(w)
	}
	return s.Save()
}
