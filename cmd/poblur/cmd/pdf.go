package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/config"
	"github.com/MeKo-Tech/poblur/internal/pdf"
	"github.com/spf13/cobra"
)

// pdfCmd represents the pdf command.
var pdfCmd = &cobra.Command{
	Use:   "pdf [file...]",
	Short: "Redact the embedded images of PDF files",
	Long: `Redact PDF files by blurring the text regions of their embedded images.

This command extracts images from PDF pages, redacts each one, and writes the
blurred pages as PNG files into an output directory. Works best with scanned
purchase orders where each page is one large image.

Examples:
  poblur pdf document.pdf
  poblur pdf scan.pdf --pages 1-5
  poblur pdf scan.pdf --output-dir redacted/
  poblur pdf locked.pdf --password secret`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         processPDFs,
}

func init() {
	rootCmd.AddCommand(pdfCmd)

	// PDF-specific flags
	pdfCmd.Flags().String("pages", "", "page range to process (e.g., '1-5', '1,3,5')")
	pdfCmd.Flags().String("output-dir", "",
		"directory for redacted page images (single input only, default: <name>_blurred/)")
	pdfCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	pdfCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	// Redaction flags (align with run/batch)
	pdfCmd.Flags().IntP("strength", "s", int(blur.DefaultStrength), "blur strength, clamped to 5..30")
	pdfCmd.Flags().Bool("auto", true, "detect text regions automatically, fall back to the layout catalog")
	pdfCmd.Flags().String("layout", "", "layout catalog (name in the layouts dir or path to a YAML file)")
	pdfCmd.Flags().StringSlice("areas", nil, "restrict the layout catalog to the given area labels")

	// Password-related flags
	pdfCmd.Flags().StringP("password", "p", "", "user password for encrypted PDFs")
	pdfCmd.Flags().String("owner-password", "", "owner password for encrypted PDFs")
}

// pdfConfig holds the resolved configuration for PDF processing.
type pdfConfig struct {
	pages         string
	outputDir     string
	format        string
	outputFile    string
	userPassword  string
	ownerPassword string
}

// configToPDFConfig maps centralized configuration to pdfConfig.
// CLI flags will override config file values through explicit Changed checks.
func configToPDFConfig(centralCfg *config.Config, cmd *cobra.Command) (*pdfConfig, error) {
	cfg := &pdfConfig{}

	cfg.format = centralCfg.Output.Format
	if cmd.Flags().Changed("format") {
		cfg.format, _ = cmd.Flags().GetString("format")
	}

	cfg.outputFile = centralCfg.Output.File
	if cmd.Flags().Changed("output") {
		cfg.outputFile, _ = cmd.Flags().GetString("output")
	}

	// PDF-specific flags (these don't have config file equivalents)
	cfg.pages, _ = cmd.Flags().GetString("pages")
	cfg.outputDir, _ = cmd.Flags().GetString("output-dir")
	cfg.userPassword, _ = cmd.Flags().GetString("password")
	cfg.ownerPassword, _ = cmd.Flags().GetString("owner-password")

	// Validate parameters
	if err := validatePDFConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validatePDFConfig validates the PDF configuration parameters.
func validatePDFConfig(cfg *pdfConfig) error {
	validFormats := []string{outputFormatText, outputFormatJSON}
	isValidFormat := false
	for _, f := range validFormats {
		if cfg.format == f {
			isValidFormat = true
			break
		}
	}
	if !isValidFormat {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			cfg.format, strings.Join(validFormats, ", "))
	}

	if cfg.pages != "" {
		if err := validatePageRange(cfg.pages); err != nil {
			return fmt.Errorf("invalid page range: %w", err)
		}
	}
	return nil
}

// processPDFs handles the main PDF redaction logic.
func processPDFs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	// Get configuration from centralized system (includes CLI flags, config file, env vars, and defaults)
	centralCfg := GetConfig()

	// Map to PDF configuration
	cfg, err := configToPDFConfig(centralCfg, cmd)
	if err != nil {
		return err
	}

	// Page images share fixed names, so one output directory cannot hold
	// several documents.
	if cfg.outputDir != "" && len(args) > 1 {
		return errors.New("--output-dir requires a single input file")
	}

	// Build the shared redactor with CLI overrides
	b := centralCfg.ToBuilder()
	if cmd.Flags().Changed("strength") {
		s, _ := cmd.Flags().GetInt("strength")
		b = b.WithStrength(blur.Strength(s))
	}
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

	processorConfig := &pdf.Config{
		PageRange: cfg.pages,
		OutputDir: cfg.outputDir,
	}
	if cfg.userPassword != "" || cfg.ownerPassword != "" {
		processorConfig.Credentials = &pdf.Credentials{
			UserPassword:  cfg.userPassword,
			OwnerPassword: cfg.ownerPassword,
		}
	}
	processor := pdf.NewProcessor(redactor, processorConfig)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Processing %d PDF(s)\n", len(args)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	// Process each PDF file
	results := make([]*pdf.DocumentResult, 0, len(args))
	for _, file := range args {
		doc, err := processor.ProcessFile(ctx, file)
		if err != nil {
			return err
		}
		results = append(results, doc)
	}

	return outputPDFResults(cmd, results, cfg.format, cfg.outputFile)
}

// outputPDFResults formats and writes the document results.
func outputPDFResults(cmd *cobra.Command, results []*pdf.DocumentResult, format, outputFile string) error {
	var output string

	switch format {
	case outputFormatJSON:
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		output = string(data) + "\n"
	default: // text
		var b strings.Builder
		for _, doc := range results {
			b.WriteString(doc.Summary())
		}
		output = b.String()
	}

	out := cmd.OutOrStdout()
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if _, err := fmt.Fprintf(out, "Results written to %s\n", outputFile); err != nil {
			return err
		}
	} else if _, err := fmt.Fprint(out, output); err != nil {
		return fmt.Errorf("failed to write final output: %w", err)
	}
	return nil
}

// validatePageRange validates a page range string.
func validatePageRange(pages string) error {
	// Simple validation for ranges like "1-5", "1,3,5"
	parts := strings.Split(pages, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if err := validatePagePart(part); err != nil {
			return err
		}
	}
	return nil
}

// validatePagePart validates a single page part (either a single number or a range).
func validatePagePart(part string) error {
	if strings.Contains(part, "-") {
		return validatePageRangePart(part)
	}
	return validateSinglePage(part)
}

// validatePageRangePart validates a range part like "1-5".
func validatePageRangePart(part string) error {
	rangeParts := strings.Split(part, "-")
	if len(rangeParts) != 2 {
		return fmt.Errorf("invalid range format: %s", part)
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
	if err1 != nil || err2 != nil {
		return fmt.Errorf("invalid page numbers in range: %s", part)
	}
	if start > end {
		return fmt.Errorf("invalid page range: start (%d) > end (%d)", start, end)
	}
	if start < 1 || end < 1 {
		return fmt.Errorf("page numbers must be positive: %s", part)
	}
	return nil
}

// validateSinglePage validates a single page number.
func validateSinglePage(part string) error {
	pageNum, err := strconv.Atoi(part)
	if err != nil {
		return fmt.Errorf("invalid page number: %s", part)
	}
	if pageNum < 1 {
		return fmt.Errorf("page number must be positive: %d", pageNum)
	}
	return nil
}

// GetPDFCommand returns the pdf command for testing purposes.
func GetPDFCommand() *cobra.Command {
	return pdfCmd
}
