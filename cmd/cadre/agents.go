package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/internal/registry"
	"github.com/ShayCichocki/cadre/pkg/models"
)

var (
	agentsDomain string
	agentsExport bool
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the agent catalog",
	Long: `List the agents delegation chooses from.

The built-in catalog is used unless catalog.path points at a YAML file.

Examples:
  cadre agents
  cadre agents --domain consciousness
  cadre agents --export > agents.yaml`,
	Args: cobra.NoArgs,
	RunE: runAgents,
}

func init() {
	agentsCmd.Flags().StringVar(&agentsDomain, "domain", "", "Only show agents covering this domain")
	agentsCmd.Flags().BoolVar(&agentsExport, "export", false, "Print the catalog as YAML")
}

func runAgents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	if agentsExport {
		data, err := registry.MarshalCatalog(reg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	profiles := filterProfiles(reg.Profiles(), agentsDomain)
	if jsonOutput {
		return printJSON(profiles)
	}

	if len(profiles) == 0 {
		fmt.Println("No agents found.")
		return nil
	}
	fmt.Printf("%-26s %-8s %-12s %s\n", "ID", "TIER", "STYLE", "DOMAINS")
	for _, p := range profiles {
		fmt.Printf("%-26s %-8s %-12s %s\n", p.ID, p.Tier, p.Style, strings.Join(p.Domains, ", "))
	}
	return nil
}

func filterProfiles(profiles []models.AgentProfile, domain string) []models.AgentProfile {
	if domain == "" {
		return profiles
	}
	var out []models.AgentProfile
	for _, p := range profiles {
		if p.HasDomain(domain) {
			out = append(out, p)
		}
	}
	return out
}
