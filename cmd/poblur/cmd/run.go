package cmd

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Redact purchase-order images by blurring their text regions",
	Long: `Redact one or more purchase-order images. Each image is loaded, its
text-bearing regions are selected (automatic detection, falling back to the
layout catalog), every region is blurred against the untouched original, and
the result is saved next to the input with a "_blurred" suffix.

Supported formats: PNG, JPEG, BMP

Examples:
  poblur run order.png
  poblur run order.png --strength 20
  poblur run order.png --output redacted.png
  poblur run scan1.png scan2.jpg --format json
  poblur run order.png --dry-run`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Help handling for tests
		if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
			return cmd.Help()
		}
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		// Get configuration (includes CLI flags, config file, env vars, and defaults)
		cfg := GetConfig()

		format := cfg.Output.Format
		overlayDir := cfg.Output.OverlayDir

		outputPath, _ := cmd.Flags().GetString("output")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		// Validate output format
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

		if outputPath != "" && len(args) > 1 {
			return errors.New("--output requires a single input file")
		}

		redactor, err := cfg.ToBuilder().Build()
		if err != nil {
			return fmt.Errorf("failed to build redactor: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, pth := range args {
			if !utils.IsSupportedImage(pth) {
				return fmt.Errorf("unsupported image format: %s", pth)
			}

			if dryRun {
				if err := reportSelection(redactor, pth, format, overlayDir, out); err != nil {
					return err
				}
				continue
			}

			res, err := redactor.ProcessFile(pth, outputPath)
			if err != nil {
				return fmt.Errorf("redaction failed for %s: %w", pth, err)
			}

			// Overlay boxes are drawn on the untouched input, not the blurred copy
			if overlayDir != "" {
				img, _, err := utils.LoadImage(pth)
				if err != nil {
					return fmt.Errorf("failed to load %s for overlay: %w", pth, err)
				}
				if err := writeOverlay(pth, img, res.Regions, overlayDir, out); err != nil {
					return err
				}
			}

			switch format {
			case outputFormatJSON:
				s, err := redact.ToJSON(res)
				if err != nil {
					return fmt.Errorf("format json failed: %w", err)
				}
				if _, err := fmt.Fprintln(out, s); err != nil {
					return fmt.Errorf("failed to write to stdout: %w", err)
				}
			default:
				if _, err := fmt.Fprintln(out, res.OutputPath); err != nil {
					return fmt.Errorf("failed to write to stdout: %w", err)
				}
			}
		}
		return nil
	},
}

// reportSelection loads an image, runs only the selection stage and prints the
// regions a redaction run would blur.
func reportSelection(r *redact.Redactor, pth, format, overlayDir string, out io.Writer) error {
	img, meta, err := utils.LoadImage(pth)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", pth, err)
	}
	regions, fellBack, err := r.SelectRegions(img)
	if err != nil {
		return fmt.Errorf("region selection failed for %s: %w", pth, err)
	}
	sel := selectionReport{
		File:         meta.Path,
		Width:        meta.Width,
		Height:       meta.Height,
		UsedFallback: fellBack,
		Regions:      regions,
	}
	s, err := formatSelection(sel, format)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(out, s); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if overlayDir != "" {
		return writeOverlay(meta.Path, img, regions, overlayDir, out)
	}
	return nil
}

// writeOverlay draws region boxes onto the original image and saves the
// annotated copy as <name>_overlay.png inside overlayDir.
func writeOverlay(imagePath string, img image.Image, regions []redact.RegionResult, overlayDir string, out io.Writer) error {
	ov := redact.RenderOverlay(img, regions, redact.DefaultOverlayPalette())
	if ov == nil {
		return nil
	}
	if err := os.MkdirAll(overlayDir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	base := filepath.Base(imagePath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_overlay.png"
	outPath := filepath.Join(overlayDir, name)
	f, err := os.Create(outPath) //nolint:gosec // G304: Creating overlay output file with user-controlled path
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	if err := png.Encode(f, ov); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close overlay file: %w", err)
	}
	if _, err := fmt.Fprintf(out, "Saved overlay: %s\n", outPath); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output image path (single input only, default: <name>_blurred.<ext>)")
	cmd.Flags().IntP("strength", "s", int(blur.DefaultStrength), "blur strength, clamped to 5..30")
	cmd.Flags().Bool("auto", true, "detect text regions automatically, fall back to the layout catalog")
	cmd.Flags().String("layout", "", "layout catalog (name in the layouts dir or path to a YAML file)")
	cmd.Flags().StringSlice("areas", nil, "restrict the layout catalog to the given area labels (e.g. header,totals)")
	cmd.Flags().Int("jpeg-quality", utils.DefaultJPEGQuality, "JPEG output quality (0..100)")
	cmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
	cmd.Flags().String("overlay-dir", "", "directory to write overlay images (drawn region boxes)")
	cmd.Flags().Bool("dry-run", false, "report the selected regions without writing the redacted image")
}

// bindRunFlags binds all flags to viper configuration keys.
func bindRunFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"redact.strength", "strength"},
		{"redact.auto_detect", "auto"},
		{"redact.layout", "layout"},
		{"redact.areas", "areas"},
		{"redact.jpeg_quality", "jpeg-quality"},
		{"output.format", "format"},
		{"output.overlay_dir", "overlay-dir"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	addRunFlags(runCmd)
	bindRunFlags(runCmd)

	// Ensure subcommand help prints expected sections when executed directly in tests
	runCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintln(out, cmd.Short); err != nil {
			return
		}
		if _, err := fmt.Fprintln(out, "Usage:"); err != nil {
			return
		}
		_, _ = fmt.Fprintln(out, cmd.UseLine())
		_, _ = fmt.Fprintln(out, "Flags:")
		_, _ = fmt.Fprintln(out, cmd.Flags().FlagUsages())
	})
}

// GetRunCommand returns the run command for testing purposes.
func GetRunCommand() *cobra.Command {
	return runCmd
}
