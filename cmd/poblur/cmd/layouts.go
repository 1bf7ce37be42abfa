package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/spf13/cobra"
)

// layoutsCmd groups the layout catalog management commands.
var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Inspect and manage layout catalogs",
	Long: `Inspect the built-in purchase-order layout catalog or custom YAML
catalogs, and create starter catalog files.

Named catalogs are resolved in the layouts directory (--layouts-dir or the
POBLUR_LAYOUTS_DIR environment variable).

Examples:
  poblur layouts list
  poblur layouts list --layout invoice --format json
  poblur layouts init
  poblur layouts init my-layout.yaml`,
}

// layoutsListCmd shows the areas of a layout catalog.
var layoutsListCmd = &cobra.Command{
	Use:          "list",
	Short:        "Show the areas of a layout catalog",
	SilenceUsage: true,
	RunE:         runLayoutsListCommand,
}

// layoutsInitCmd writes a commented starter layout file.
var layoutsInitCmd = &cobra.Command{
	Use:          "init [path]",
	Short:        "Write a starter layout catalog file",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runLayoutsInitCommand,
}

func runLayoutsListCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	ref := cfg.Redact.Layout
	if cmd.Flags().Changed("layout") {
		ref, _ = cmd.Flags().GetString("layout")
	}

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	validFormats := []string{outputFormatText, outputFormatJSON}
	isValidFormat := false
	for _, f := range validFormats {
		if format == f {
			isValidFormat = true
			break
		}
	}
	if !isValidFormat {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
	}

	catalog := layout.Default()
	if ref != "" {
		path := layout.ResolvePath(cfg.LayoutsDir, ref)
		var err error
		catalog, err = layout.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load layout %s: %w", ref, err)
		}
	}

	out := cmd.OutOrStdout()
	if format == outputFormatJSON {
		bts, err := json.MarshalIndent(catalog, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(bts))
		return err
	}

	name := catalog.Name
	if name == "" {
		name = "(unnamed)"
	}
	if _, err := fmt.Fprintf(out, "Layout: %s\n", name); err != nil {
		return err
	}
	for _, a := range catalog.Areas {
		if _, err := fmt.Fprintf(out, "  %-12s x=%.2f y=%.2f w=%.2f h=%.2f\n",
			a.Label, a.X, a.Y, a.Width, a.Height); err != nil {
			return err
		}
	}
	return nil
}

func runLayoutsInitCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		dir := layout.GetLayoutsDir(cfg.LayoutsDir)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create layouts directory: %w", err)
		}
		path = filepath.Join(dir, "custom.yaml")
	}

	if err := layout.WriteTemplate(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Layout template written to %s\n", path)
	return err
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
	layoutsCmd.AddCommand(layoutsListCmd)
	layoutsCmd.AddCommand(layoutsInitCmd)

	layoutsListCmd.Flags().String("layout", "", "layout catalog to inspect (name or YAML path, default: built-in)")
	layoutsListCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
}

// GetLayoutsCommand returns the layouts command for testing purposes.
func GetLayoutsCommand() *cobra.Command {
	return layoutsCmd
}
