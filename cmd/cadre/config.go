package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/internal/config"
)

var configInitUser bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and initialize configuration",
	Long: `View cadre configuration.

Configuration is read from ~/.config/cadre/config.yaml and overridden by a
.cadre.yaml in the current directory or any parent. Every key can also be set
through the environment, e.g. CADRE_ENGINE_MAX_TEAM_SIZE=2.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		settings := config.Settings(cfg)
		if jsonOutput {
			return printJSON(settings)
		}
		for _, key := range config.Keys() {
			fmt.Printf("%-26s %-32v %s\n", key, settings[key],
				color.New(color.FgHiBlack).Sprint(config.EnvVar(key)))
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file locations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("user:    %s\n", config.GetUserConfigPath())
		project := config.GetProjectConfigPath()
		if project == "" {
			project = "(none)"
		}
		fmt.Printf("project: %s\n", project)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigName
		if configInitUser {
			path = config.GetUserConfigPath()
		}
		if _, err := os.Stat(path); err == nil {
			printStatus("⚠", path+" already exists", color.FgYellow)
			return nil
		}
		if err := config.Save(config.Default(), path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		printStatus("✓", "Created "+path, color.FgGreen)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitUser, "user", false, "Write the user config instead of .cadre.yaml")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}
