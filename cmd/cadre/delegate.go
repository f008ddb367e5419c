package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var delegateMaxTeam int

var delegateCmd = &cobra.Command{
	Use:   "delegate <description>",
	Short: "Pick the agents for a task",
	Long: `Analyze a task description and assemble the team that should take it.

The description is classified into a complexity tier, domains, urgency and
whether it needs several perspectives. Agents are scored on domain fit,
complexity fit and collaboration style.

Examples:
  cadre delegate "design the consciousness architecture"
  cadre delegate --max-team 2 "collaborative review of the neural transformation pipeline"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelegate,
}

func init() {
	delegateCmd.Flags().IntVar(&delegateMaxTeam, "max-team", 0, "Cap the team size (default from engine.max_team_size)")
}

func runDelegate(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	limit := delegateMaxTeam
	if limit <= 0 {
		limit = s.engine.MaxTeamSize()
	}
	result, err := s.engine.DelegateTaskWithLimit(strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		printDelegation(result)
	}
	return s.Save()
}
