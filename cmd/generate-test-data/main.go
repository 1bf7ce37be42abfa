package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/MeKo-Tech/poblur/internal/testutil"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generateImages   = flag.Bool("images", true, "Generate synthetic purchase-order images")
		generateFixtures = flag.Bool("fixtures", true, "Generate selection fixtures")
		verbose          = flag.Bool("v", false, "Verbose output")
		help             = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate test data for poblur testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                 # Generate all test data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -images         # Generate only images\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -fixtures       # Generate only fixtures\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	slog.Info("Starting test data generation...")

	if *verbose {
		slog.Info("Options", "images", *generateImages, "fixtures", *generateFixtures)
	}

	root, err := testutil.GetProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}

	if *verbose {
		slog.Info("Project root", "path", root)
	}

	if err := os.Chdir(root); err != nil {
		slog.Error("Failed to change to project root", "error", err)
		os.Exit(1)
	}

	if *generateImages {
		slog.Info("Generating synthetic purchase-order images...")

		if err := generateOrderImages(); err != nil {
			slog.Error("Failed to generate purchase-order images", "error", err)
			os.Exit(1)
		}

		slog.Info("✓ Generated synthetic purchase-order images")
	}

	if *generateFixtures {
		slog.Info("Generating selection fixtures...")

		if err := generateSelectionFixtures(); err != nil {
			slog.Error("Failed to generate selection fixtures", "error", err)
			os.Exit(1)
		}

		slog.Info("✓ Generated selection fixtures")
	}

	slog.Info("Test data generation completed successfully!")
}

// pageSizes are the document sizes the generated orders cover. The first one
// is the standard test page; the others exercise catalog scaling.
var pageSizes = []struct{ width, height int }{
	{1000, 1400},
	{800, 1120},
	{1240, 1754},
}

// generateOrderImages renders purchase orders at several page sizes, a page
// without a totals block, a JPEG scan and blank pages.
func generateOrderImages() error {
	ordersDir := filepath.Join("testdata", "images", "orders")
	if err := testutil.EnsureDir(ordersDir); err != nil {
		return fmt.Errorf("failed to create orders directory: %w", err)
	}

	for _, size := range pageSizes {
		cfg := testutil.DefaultPurchaseOrderConfig().ScaledTo(size.width, size.height)
		img := testutil.GeneratePurchaseOrder(cfg)
		path := filepath.Join(ordersDir, fmt.Sprintf("order_%dx%d.png", size.width, size.height))
		if err := utils.SaveImage(img, path, utils.SaveOptions{}); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
	}

	// A page with text lines but no totals block.
	clean := testutil.DefaultPurchaseOrderConfig()
	clean.TotalsBlock = utils.Region{}
	img := testutil.GeneratePurchaseOrder(clean)
	path := filepath.Join(ordersDir, "order_no_totals.png")
	if err := utils.SaveImage(img, path, utils.SaveOptions{}); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	// A JPEG variant for the lossy save path.
	img = testutil.GeneratePurchaseOrder(testutil.DefaultPurchaseOrderConfig())
	path = filepath.Join(ordersDir, "scan_1000x1400.jpg")
	if err := utils.SaveImage(img, path, utils.SaveOptions{JPEGQuality: 90}); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	blankDir := filepath.Join("testdata", "images", "blank")
	if err := testutil.EnsureDir(blankDir); err != nil {
		return fmt.Errorf("failed to create blank images directory: %w", err)
	}

	for _, size := range pageSizes[:2] {
		img := testutil.GenerateBlankPage(size.width, size.height)
		path := filepath.Join(blankDir, fmt.Sprintf("blank_%dx%d.png", size.width, size.height))
		if err := utils.SaveImage(img, path, utils.SaveOptions{}); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
	}

	return nil
}

// selectionFixture records the regions the built-in catalog selects for one
// generated image, for eyeballing and regression comparison.
type selectionFixture struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputFile   string         `json:"input_file"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Layout      string         `json:"layout"`
	Regions     []utils.Region `json:"regions"`
}

// generateSelectionFixtures writes one JSON fixture per generated order page
// with the catalog regions at that page size.
func generateSelectionFixtures() error {
	fixturesDir := filepath.Join("testdata", "fixtures")
	if err := testutil.EnsureDir(fixturesDir); err != nil {
		return fmt.Errorf("failed to create fixtures directory: %w", err)
	}

	catalog := layout.Default()
	for _, size := range pageSizes {
		fixture := selectionFixture{
			Name:        fmt.Sprintf("order_%dx%d", size.width, size.height),
			Description: fmt.Sprintf("Catalog selection for a %dx%d purchase order", size.width, size.height),
			InputFile:   fmt.Sprintf("images/orders/order_%dx%d.png", size.width, size.height),
			Width:       size.width,
			Height:      size.height,
			Layout:      catalog.Name,
			Regions:     catalog.RegionsFor(size.width, size.height),
		}
		if err := saveFixture(fixture, fixturesDir); err != nil {
			return fmt.Errorf("failed to save fixture '%s': %w", fixture.Name, err)
		}
	}

	return nil
}

func saveFixture(fixture selectionFixture, dir string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return err
	}

	filename := filepath.Join(dir, fixture.Name+".json")
	return os.WriteFile(filename, data, 0o600)
}
