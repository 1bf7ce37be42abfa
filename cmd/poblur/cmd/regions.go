package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
	"github.com/spf13/cobra"
)

// selectionReport describes, for a single image, the regions a redaction run
// would blur.
type selectionReport struct {
	File         string                `json:"file,omitempty"`
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	UsedFallback bool                  `json:"used_fallback,omitempty"`
	Regions      []redact.RegionResult `json:"regions"`
}

// regionsCmd represents the regions command.
var regionsCmd = &cobra.Command{
	Use:   "regions [images...]",
	Short: "Report the regions a redaction run would blur",
	Long: `Run only the selection stage on one or more purchase-order images and
report the resulting regions, including their source (detected, layout or
fallback) and whether they were clamped to the image bounds or dropped.
No redacted image is written.

Examples:
  poblur regions order.png
  poblur regions order.png --format csv --output regions.csv
  poblur regions order.png --auto=false --areas header,totals
  poblur regions order.png --overlay-dir overlays/`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runRegionsCommand,
}

func runRegionsCommand(cmd *cobra.Command, args []string) error {
	// Get configuration from centralized system (includes CLI flags, config file, env vars, and defaults)
	cfg := GetConfig()

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}

	overlayDir := cfg.Output.OverlayDir
	if cmd.Flags().Changed("overlay-dir") {
		overlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}

	// Validate output format
	validFormats := []string{outputFormatText, outputFormatJSON, outputFormatCSV}
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

	b := cfg.ToBuilder()
	if cmd.Flags().Changed("auto") {
		auto, _ := cmd.Flags().GetBool("auto")
		b = b.WithAutoDetection(auto)
	}
	if cmd.Flags().Changed("layout") {
		ref, _ := cmd.Flags().GetString("layout")
		b = b.WithLayoutPath(ref)
	}
	if cmd.Flags().Changed("areas") {
		areas, _ := cmd.Flags().GetStringSlice("areas")
		b = b.WithAreas(areas)
	}
	redactor, err := b.Build()
	if err != nil {
		return fmt.Errorf("failed to build redactor: %w", err)
	}

	out := cmd.OutOrStdout()
	sels := make([]selectionReport, 0, len(args))
	for _, pth := range args {
		img, meta, err := utils.LoadImage(pth)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", pth, err)
		}
		regions, fellBack, err := redactor.SelectRegions(img)
		if err != nil {
			return fmt.Errorf("region selection failed for %s: %w", pth, err)
		}
		sels = append(sels, selectionReport{
			File:         meta.Path,
			Width:        meta.Width,
			Height:       meta.Height,
			UsedFallback: fellBack,
			Regions:      regions,
		})

		if overlayDir != "" {
			if err := writeOverlay(meta.Path, img, regions, overlayDir, out); err != nil {
				return err
			}
		}
	}

	final, err := formatSelections(sels, format)
	if err != nil {
		return err
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(final), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if _, err := fmt.Fprintf(out, "Results written to %s\n", outputFile); err != nil {
			return err
		}
	} else if _, err := fmt.Fprint(out, final); err != nil {
		return fmt.Errorf("failed to write final output: %w", err)
	}
	return nil
}

// formatSelections renders one or more selection reports in the given format.
func formatSelections(sels []selectionReport, format string) (string, error) {
	switch format {
	case outputFormatJSON:
		var v interface{} = sels
		if len(sels) == 1 {
			v = sels[0]
		}
		bts, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(bts) + "\n", nil
	case outputFormatCSV:
		csvData := [][]string{{
			"file", "region_index", "label", "source", "x", "y", "width", "height", "dropped", "clamped",
		}}
		for _, sel := range sels {
			csvData = append(csvData, selectionCSVRows(sel)...)
		}
		var output strings.Builder
		writer := csv.NewWriter(&output)
		for _, row := range csvData {
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
		writer.Flush()
		return output.String(), nil
	default:
		var b strings.Builder
		for _, sel := range sels {
			b.WriteString(formatSelectionText(sel))
		}
		return b.String(), nil
	}
}

// formatSelection renders a single selection report. The dry-run path of the
// run command streams one report per input file.
func formatSelection(sel selectionReport, format string) (string, error) {
	return formatSelections([]selectionReport{sel}, format)
}

func selectionCSVRows(sel selectionReport) [][]string {
	rows := make([][]string, 0, len(sel.Regions))
	for i, region := range sel.Regions {
		rows = append(rows, []string{
			sel.File,
			strconv.Itoa(i),
			region.Region.Label,
			string(region.Source),
			strconv.Itoa(region.Region.X),
			strconv.Itoa(region.Region.Y),
			strconv.Itoa(region.Region.Width),
			strconv.Itoa(region.Region.Height),
			strconv.FormatBool(region.Dropped),
			strconv.FormatBool(region.Clamped),
		})
	}
	return rows
}

func formatSelectionText(sel selectionReport) string {
	var b strings.Builder
	if sel.File != "" {
		fmt.Fprintf(&b, "%s (%dx%d)\n", sel.File, sel.Width, sel.Height)
	} else {
		fmt.Fprintf(&b, "image %dx%d\n", sel.Width, sel.Height)
	}
	if sel.UsedFallback {
		b.WriteString("detection fell back to layout catalog\n")
	}

	selected := 0
	for _, reg := range sel.Regions {
		if !reg.Dropped {
			selected++
		}
	}
	fmt.Fprintf(&b, "%d region(s) selected\n", selected)

	for _, reg := range sel.Regions {
		fmt.Fprintf(&b, "  %s [%s]", reg.Region.String(), reg.Source)
		if reg.Clamped {
			b.WriteString(" clamped")
		}
		if reg.Dropped {
			b.WriteString(" dropped")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().StringP("format", "f", outputFormatText, "output format: text, json, csv")
	regionsCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	regionsCmd.Flags().Bool("auto", true, "detect text regions automatically, fall back to the layout catalog")
	regionsCmd.Flags().String("layout", "", "layout catalog (name in the layouts dir or path to a YAML file)")
	regionsCmd.Flags().StringSlice("areas", nil, "restrict the layout catalog to the given area labels")
	regionsCmd.Flags().String("overlay-dir", "", "directory to write overlay images (drawn region boxes)")
}

// GetRegionsCommand returns the regions command for testing purposes.
func GetRegionsCommand() *cobra.Command {
	return regionsCmd
}
