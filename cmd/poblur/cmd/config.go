package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/poblur/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd groups the configuration maintenance subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration files",
	Long: `Inspect the resolved configuration and manage configuration files.

Configuration values are merged from CLI flags, environment variables
(prefix POBLUR_), a YAML configuration file, and built-in defaults.

Examples:
  poblur config show
  poblur config init
  poblur config init /etc/poblur/poblur.yaml
  poblur config paths`,
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the resolved configuration as YAML",
	SilenceUsage: true,
	RunE:         runConfigShowCommand,
}

var configInitCmd = &cobra.Command{
	Use:          "init [path]",
	Short:        "Write a configuration file populated with defaults",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runConfigInitCommand,
}

var configPathsCmd = &cobra.Command{
	Use:          "paths",
	Short:        "Print the configuration file search paths",
	SilenceUsage: true,
	RunE:         runConfigPathsCommand,
}

func runConfigShowCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# loaded from %s\n", used)
	}
	fmt.Fprint(out, string(data))

	return nil
}

func runConfigInitCommand(cmd *cobra.Command, args []string) error {
	path := config.ConfigFileName + ".yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.GenerateDefaultConfigFile(path); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file written to %s\n", path)

	return nil
}

func runConfigPathsCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Configuration file name: %s.yaml\n", config.ConfigFileName)
	fmt.Fprintf(out, "Environment prefix: %s\n", config.EnvPrefix)
	if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Configuration file used: %s\n", used)
	}

	fmt.Fprintln(out, "Search paths:")
	for _, p := range config.GetConfigSearchPaths() {
		fmt.Fprintf(out, "  %s\n", p)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathsCmd)
}

// GetConfigCommand returns the config command for testing purposes.
func GetConfigCommand() *cobra.Command {
	return configCmd
}
