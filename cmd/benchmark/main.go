package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MeKo-Tech/poblur/internal/benchmark"
	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/testutil"
)

func main() {
	var (
		iterations = flag.Int("iterations", 3, "Number of iterations per benchmark")
		stages     = flag.Bool("stages", true, "Run per-stage benchmarks first")
		outputFile = flag.String("output", "", "Output file for results (optional)")
		verbose    = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	fmt.Println("poblur Detection vs Catalog Performance Benchmark")
	fmt.Println("=================================================")

	if *stages {
		runStageBenchmarks(*iterations)
	}

	modeBench := benchmark.NewSelectionModeBenchmark()

	if *verbose {
		// A4 scan resolution, roughly 300 dpi
		modeBench.AddPage(2480, 3508, "A4 scan")
		fmt.Println("Added A4 scan page")
	}

	fmt.Printf("Running benchmarks with %d iterations per test...\n\n", *iterations)

	results, err := modeBench.RunBenchmark(*iterations)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	modeBench.PrintDetailedResults()

	if *outputFile != "" {
		if err := saveResultsToFile(*outputFile, results); err != nil {
			log.Printf("Failed to save results to file: %v", err)
		} else {
			fmt.Printf("Results saved to: %s\n", *outputFile)
		}
	}
}

// runStageBenchmarks times the selection, blur and full-pipeline stages in
// isolation on the standard synthetic purchase order.
func runStageBenchmarks(iterations int) {
	cfg := testutil.DefaultPurchaseOrderConfig()
	img := testutil.GeneratePurchaseOrder(cfg)
	regions := layout.Default().RegionsFor(cfg.Width, cfg.Height)

	redactor, err := redact.NewBuilder().
		WithAutoDetection(false).
		Build()
	if err != nil {
		log.Fatalf("Failed to build redactor: %v", err)
	}

	suite := benchmark.NewRedactionBenchmark()

	suite.AddSelectionBenchmark("catalog", func() error {
		_, _, err := redactor.SelectRegions(img)
		return err
	})

	suite.AddBlurBenchmark("default_strength", func() error {
		_, err := blur.BlurRegions(img, regions, blur.DefaultStrength)
		return err
	})

	suite.AddPipelineBenchmark("catalog_redaction", func() error {
		_, _, err := redactor.ProcessImage(img)
		return err
	})

	suite.RunAll(iterations)
	suite.PrintResults()
}

func saveResultsToFile(filename string, results []benchmark.SelectionModeResult) error {
	file, err := os.Create(filename) //nolint:gosec // G304: Benchmark output path comes from the CLI flag
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintln(file, "poblur Detection vs Catalog Benchmark Results")
	_, _ = fmt.Fprintln(file, "=============================================")
	_, _ = fmt.Fprintln(file)

	for _, result := range results {
		_, _ = fmt.Fprintf(file, "%s\n", result.String())
	}

	_, _ = fmt.Fprintln(file)
	_, _ = fmt.Fprintln(file, "CSV Format:")
	_, _ = fmt.Fprintln(file, "Page,Size,Detect_Duration_ms,Catalog_Duration_ms,Ratio,Memory_Diff_KB")

	for _, result := range results {
		detectMs := float64(result.DetectResult.Duration.Nanoseconds()) / 1e6
		catalogMs := float64(result.CatalogResult.Duration.Nanoseconds()) / 1e6

		_, _ = fmt.Fprintf(file, "%s,%s,%.2f,%.2f,%.2f,%d\n",
			result.Description,
			result.PageSize,
			detectMs,
			catalogMs,
			result.SlowdownRatio,
			result.MemoryDiffKB,
		)
	}

	return nil
}
