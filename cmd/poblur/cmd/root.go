package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/poblur/internal/config"
	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string

	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// SetVersionInfo records build metadata injected through ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion, buildCommit, buildDate = version, commit, date
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "poblur",
	Short: "Purchase-order redaction by selective blurring",
	Long: `poblur blurs the text-bearing regions of purchase-order images while
keeping the overall document structure recognizable.

This tool provides:
- Automatic text-region detection with a layout-catalog fallback
- A built-in purchase-order layout catalog plus custom YAML layouts
- Single-file, parallel batch, and PDF processing
- Both CLI and server modes

Examples:
  poblur run order.png
  poblur run order.png --strength 20 --output redacted.png
  poblur batch scans/ --recursive --workers 8
  poblur serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.PersistentFlags().GetBool("version")
		if v {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "poblur version %s\n", buildVersion)
			_, _ = fmt.Fprintf(out, "Commit: %s\n", buildCommit)
			_, _ = fmt.Fprintf(out, "Built: %s\n", buildDate)
			return nil
		}
		// If no version flag, show help
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	// Initialize configuration loader
	cobra.OnInitialize(initConfig)

	// Global flags that apply to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/poblur, /etc/poblur)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Set default layouts-dir from environment variable if available
	defaultLayoutsDir := ""
	if envDir := os.Getenv(layout.EnvLayoutsDir); envDir != "" {
		defaultLayoutsDir = envDir
	}
	rootCmd.PersistentFlags().String("layouts-dir", defaultLayoutsDir,
		"directory containing layout catalogs (can also be set via POBLUR_LAYOUTS_DIR environment variable)")

	// Version flag for tests and usability
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("layouts_dir", rootCmd.PersistentFlags().Lookup("layouts-dir"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Initialize configuration if not already done
		if globalConfig == nil {
			initConfig()
		}

		// Determine log level from config
		var logLevel slog.Level

		// Check verbose flag first for backward compatibility
		if globalConfig.Verbose {
			logLevel = slog.LevelDebug
		} else {
			// Parse log-level from config
			switch globalConfig.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "info":
				logLevel = slog.LevelInfo
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		// Set up structured logging
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		// Use config file from the flag
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		// Search for config in default locations
		globalConfig, err = configLoader.Load()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	// Reload configuration to ensure CLI flags are included
	// This is necessary because flag binding happens after initial config loading
	loader := GetConfigLoader()
	var cfg config.Config
	if err := loader.GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig // Return the original config if unmarshal fails
	}

	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}
