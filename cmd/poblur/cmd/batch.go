package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/MeKo-Tech/poblur/internal/batch"
	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/config"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
	"github.com/spf13/cobra"
)

// batchCmd represents the batch command for parallel image redaction.
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Redact multiple purchase-order images in parallel",
	Long: `Redact multiple image files in parallel. Directories are expanded to the
images they contain, optionally recursively, and the files are spread across
a pool of workers. Each file is redacted independently; with
--continue-on-error a failed file does not stop the rest of the batch.

Supported formats: PNG, JPEG, BMP

Examples:
  poblur batch *.png *.jpg
  poblur batch scans/ --recursive --workers 8
  poblur batch scans/ --output-dir redacted/ --continue-on-error
  poblur batch file1.png file2.jpg --format json --output results.json`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
// CLI flags will override config file values through explicit Changed checks.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	batchConfig := &batch.Config{}

	// Redaction settings - use centralized config with CLI flag overrides
	batchConfig.Strength = cfg.Redact.Strength
	if cmd.Flags().Changed("strength") {
		batchConfig.Strength, _ = cmd.Flags().GetInt("strength")
	}

	batchConfig.AutoDetect = cfg.Redact.AutoDetect
	if cmd.Flags().Changed("auto") {
		batchConfig.AutoDetect, _ = cmd.Flags().GetBool("auto")
	}

	batchConfig.Layout = cfg.Redact.Layout
	if cmd.Flags().Changed("layout") {
		batchConfig.Layout, _ = cmd.Flags().GetString("layout")
	}

	batchConfig.LayoutsDir = cfg.LayoutsDir

	batchConfig.Areas = cfg.Redact.Areas
	if cmd.Flags().Changed("areas") {
		batchConfig.Areas, _ = cmd.Flags().GetStringSlice("areas")
	}

	batchConfig.Detector = cfg.ToDetectorConfig()

	batchConfig.JPEGQuality = cfg.Redact.JPEGQuality
	if cmd.Flags().Changed("jpeg-quality") {
		batchConfig.JPEGQuality, _ = cmd.Flags().GetInt("jpeg-quality")
	}

	// Output settings
	batchConfig.OutputDir = cfg.Batch.OutputDir
	if cmd.Flags().Changed("output-dir") {
		batchConfig.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}

	batchConfig.Suffix = cfg.Batch.Suffix
	if cmd.Flags().Changed("suffix") {
		batchConfig.Suffix, _ = cmd.Flags().GetString("suffix")
	}

	batchConfig.OverlayDir = cfg.Output.OverlayDir
	if cmd.Flags().Changed("overlay-dir") {
		batchConfig.OverlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}

	batchConfig.Format = cfg.Output.Format
	if cmd.Flags().Changed("format") {
		batchConfig.Format, _ = cmd.Flags().GetString("format")
	}

	batchConfig.OutputFile = cfg.Output.File
	if cmd.Flags().Changed("output") {
		batchConfig.OutputFile, _ = cmd.Flags().GetString("output")
	}

	// Parallel processing settings
	batchConfig.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("workers")
	}

	// File discovery settings
	batchConfig.Recursive = cfg.Batch.Recursive
	if cmd.Flags().Changed("recursive") {
		batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	}

	if cfg.Batch.Pattern != "" {
		batchConfig.IncludePatterns = []string{cfg.Batch.Pattern}
	}
	if cmd.Flags().Changed("include") {
		batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	}
	batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")

	// Failure handling
	batchConfig.ContinueOnError = cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		batchConfig.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	// Progress settings - these are typically CLI-only
	batchConfig.ShowProgress, _ = cmd.Flags().GetBool("progress")
	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")
	batchConfig.ShowStats, _ = cmd.Flags().GetBool("stats")
	batchConfig.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")

	return batchConfig
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	// Get configuration from centralized system (includes CLI flags, config file, env vars, and defaults)
	cfg := GetConfig()

	// Map to batch configuration
	config := configToBatchConfig(cfg, cmd)

	if !config.Quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Processing %d path(s)...\n", len(args))
	}

	// Process batch
	result, err := batch.ProcessBatch(args, config)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	// Save results
	if err := result.SaveResults(config.Format, config.OutputFile, config.Quiet); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	// Print stats
	if config.ShowStats {
		result.PrintStats(config.Quiet)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Redaction flags (reuse from run command)
	batchCmd.Flags().IntP("strength", "s", int(blur.DefaultStrength), "blur strength, clamped to 5..30")
	batchCmd.Flags().Bool("auto", true, "detect text regions automatically, fall back to the layout catalog")
	batchCmd.Flags().String("layout", "", "layout catalog (name in the layouts dir or path to a YAML file)")
	batchCmd.Flags().StringSlice("areas", nil, "restrict the layout catalog to the given area labels")
	batchCmd.Flags().Int("jpeg-quality", utils.DefaultJPEGQuality, "JPEG output quality (0..100)")

	// Output flags
	batchCmd.Flags().String("output-dir", "", "directory for redacted images (default: next to each input)")
	batchCmd.Flags().String("suffix", redact.DefaultOutputSuffix, "suffix inserted before the output extension")
	batchCmd.Flags().String("overlay-dir", "", "directory to save overlay images")
	batchCmd.Flags().StringP("format", "f", "text", "output format: text, json, csv")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	// Parallel processing flags
	batchCmd.Flags().IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))

	// File discovery flags
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include",
		[]string{"*.png", "*.jpg", "*.jpeg", "*.bmp"}, "file patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")

	// Failure handling
	batchCmd.Flags().Bool("continue-on-error", false, "keep processing remaining files after a failure")

	// Progress and monitoring flags
	batchCmd.Flags().Bool("progress", true, "show progress output")
	batchCmd.Flags().Bool("quiet", false, "suppress progress output")
	batchCmd.Flags().Bool("stats", false, "show processing statistics")
	batchCmd.Flags().Duration("progress-interval", 100*time.Millisecond, "progress update interval")
}

// GetBatchCommand returns the batch command for testing purposes.
func GetBatchCommand() *cobra.Command {
	return batchCmd
}
