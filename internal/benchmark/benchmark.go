package benchmark

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/poblur/internal/common"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/testutil"
)

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64  // Currently allocated bytes
	TotalAllocBytes uint64  // Total allocated bytes (cumulative)
	SysBytes        uint64  // Total bytes from system
	NumGC           uint32  // Number of GC runs
	GCCPUFraction   float64 // Fraction of CPU time spent in GC
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		GCCPUFraction:   m.GCCPUFraction,
	}
}

// String returns a formatted string representation of memory stats.
func (m MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, Total: %d KB, Sys: %d KB, GC: %d (%.2f%% CPU)",
		m.AllocBytes/1024,
		m.TotalAllocBytes/1024,
		m.SysBytes/1024,
		m.NumGC,
		m.GCCPUFraction*100)
}

// BenchmarkResult holds the result of a benchmark run.
type BenchmarkResult struct {
	Name         string
	Duration     time.Duration
	MemoryBefore MemoryStats
	MemoryAfter  MemoryStats
	Iterations   int
	Error        error
}

// AllocDeltaKB returns the change in allocated bytes over the run in KB. The
// value can be negative when a GC ran between the snapshots.
func (br BenchmarkResult) AllocDeltaKB() int64 {
	return (int64(br.MemoryAfter.AllocBytes) - int64(br.MemoryBefore.AllocBytes)) / 1024 //nolint:gosec // G115: heap sizes fit in int64
}

// String returns a formatted string representation of the benchmark result.
func (br BenchmarkResult) String() string {
	if br.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", br.Name, br.Error)
	}

	avgDuration := br.Duration / time.Duration(br.Iterations)

	return fmt.Sprintf("%s: %d iterations, avg: %v, total: %v, mem: %+d KB",
		br.Name, br.Iterations, avgDuration, br.Duration, br.AllocDeltaKB())
}

// Benchmark represents a benchmark function.
type Benchmark struct {
	Name string
	Func func() error
}

// BenchmarkSuite manages multiple benchmarks.
type BenchmarkSuite struct {
	benchmarks []Benchmark
	results    []BenchmarkResult
	mu         sync.Mutex
}

// NewBenchmarkSuite creates a new benchmark suite.
func NewBenchmarkSuite() *BenchmarkSuite {
	return &BenchmarkSuite{
		benchmarks: make([]Benchmark, 0),
		results:    make([]BenchmarkResult, 0),
	}
}

// Add adds a benchmark to the suite.
func (bs *BenchmarkSuite) Add(name string, fn func() error) {
	bs.benchmarks = append(bs.benchmarks, Benchmark{
		Name: name,
		Func: fn,
	})
}

// Run runs a single benchmark with the specified number of iterations.
func (bs *BenchmarkSuite) Run(name string, iterations int) BenchmarkResult {
	var benchmark Benchmark
	found := false
	for _, b := range bs.benchmarks {
		if b.Name == name {
			benchmark = b
			found = true
			break
		}
	}

	if !found {
		return BenchmarkResult{
			Name:  name,
			Error: fmt.Errorf("benchmark '%s' not found", name),
		}
	}

	return bs.runBenchmark(benchmark, iterations)
}

// RunAll runs all benchmarks in the suite.
func (bs *BenchmarkSuite) RunAll(iterations int) []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.results = make([]BenchmarkResult, 0, len(bs.benchmarks))

	for _, benchmark := range bs.benchmarks {
		result := bs.runBenchmark(benchmark, iterations)
		bs.results = append(bs.results, result)
	}

	return bs.results
}

// runBenchmark executes a single benchmark.
func (bs *BenchmarkSuite) runBenchmark(benchmark Benchmark, iterations int) BenchmarkResult {
	// Force garbage collection before measuring
	runtime.GC()
	memBefore := GetMemoryStats()

	timer := common.NewNamedTimer(benchmark.Name)
	var err error

	for range iterations {
		if e := benchmark.Func(); e != nil {
			err = e
			break
		}
	}

	duration := timer.Stop()
	memAfter := GetMemoryStats()

	return BenchmarkResult{
		Name:         benchmark.Name,
		Duration:     duration,
		MemoryBefore: memBefore,
		MemoryAfter:  memAfter,
		Iterations:   iterations,
		Error:        err,
	}
}

// Results returns the last run results.
func (bs *BenchmarkSuite) Results() []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.results
}

// PrintResults prints formatted benchmark results.
func (bs *BenchmarkSuite) PrintResults() {
	results := bs.Results()
	fmt.Println("\nBenchmark Results:")
	fmt.Println("==================")
	for _, result := range results {
		fmt.Println(result.String())
	}
	fmt.Println()
}

// RedactionBenchmark provides specialized benchmarking for redaction stages.
type RedactionBenchmark struct {
	*BenchmarkSuite
}

// NewRedactionBenchmark creates a new redaction-specific benchmark suite.
func NewRedactionBenchmark() *RedactionBenchmark {
	return &RedactionBenchmark{
		BenchmarkSuite: NewBenchmarkSuite(),
	}
}

// AddLoadBenchmark adds an image loading benchmark.
func (rb *RedactionBenchmark) AddLoadBenchmark(name string, fn func() error) {
	rb.Add("Load_"+name, fn)
}

// AddSelectionBenchmark adds a region selection benchmark.
func (rb *RedactionBenchmark) AddSelectionBenchmark(name string, fn func() error) {
	rb.Add("Selection_"+name, fn)
}

// AddBlurBenchmark adds a region blur benchmark.
func (rb *RedactionBenchmark) AddBlurBenchmark(name string, fn func() error) {
	rb.Add("Blur_"+name, fn)
}

// AddPipelineBenchmark adds an end-to-end redaction benchmark.
func (rb *RedactionBenchmark) AddPipelineBenchmark(name string, fn func() error) {
	rb.Add("Pipeline_"+name, fn)
}

// SelectionModeResult compares automatic detection against catalog-only
// selection for one page size.
type SelectionModeResult struct {
	PageSize      string
	Description   string
	DetectResult  BenchmarkResult
	CatalogResult BenchmarkResult
	SlowdownRatio float64 // detect time / catalog time
	MemoryDiffKB  int64   // detect allocations - catalog allocations
}

// String returns a formatted representation of the mode comparison.
func (r SelectionModeResult) String() string {
	ratioStr := fmt.Sprintf("%.1fx slower", r.SlowdownRatio)
	if r.SlowdownRatio < 1.0 {
		ratioStr = fmt.Sprintf("%.1fx faster", 1.0/r.SlowdownRatio)
	}

	return fmt.Sprintf("%s (%s): detect: %v, catalog: %v (detect %s), mem diff: %+d KB",
		r.Description, r.PageSize, r.DetectResult.Duration, r.CatalogResult.Duration,
		ratioStr, r.MemoryDiffKB)
}

// PageSpec is one synthetic purchase-order page size to benchmark.
type PageSpec struct {
	Width       int
	Height      int
	Description string
}

// SelectionModeBenchmark runs full redactions over synthetic purchase orders
// with detection on and off, across several page sizes.
type SelectionModeBenchmark struct {
	pages   []PageSpec
	results []SelectionModeResult
}

// NewSelectionModeBenchmark creates a benchmark over the standard page sizes.
func NewSelectionModeBenchmark() *SelectionModeBenchmark {
	return &SelectionModeBenchmark{
		pages: []PageSpec{
			{800, 1120, "Small order"},
			{1000, 1400, "Standard order"},
			{1240, 1754, "Large order"},
		},
		results: make([]SelectionModeResult, 0),
	}
}

// AddPage adds a custom page size to the benchmark.
func (b *SelectionModeBenchmark) AddPage(width, height int, description string) {
	b.pages = append(b.pages, PageSpec{Width: width, Height: height, Description: description})
}

// RunBenchmark executes the complete detection vs catalog comparison.
func (b *SelectionModeBenchmark) RunBenchmark(iterations int) ([]SelectionModeResult, error) {
	b.results = make([]SelectionModeResult, 0, len(b.pages))

	for _, page := range b.pages {
		fmt.Printf("Benchmarking: %s (%dx%d)\n", page.Description, page.Width, page.Height)

		result, err := b.benchmarkPage(page, iterations)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		b.results = append(b.results, result)
		fmt.Printf("  %s\n", result.String())
	}

	return b.results, nil
}

// benchmarkPage runs both selection modes for a single page size.
func (b *SelectionModeBenchmark) benchmarkPage(page PageSpec, iterations int) (SelectionModeResult, error) {
	cfg := testutil.DefaultPurchaseOrderConfig().ScaledTo(page.Width, page.Height)
	img := testutil.GeneratePurchaseOrder(cfg)

	result := SelectionModeResult{
		PageSize:    fmt.Sprintf("%dx%d", page.Width, page.Height),
		Description: page.Description,
	}

	detectResult, err := benchmarkRedaction("Detect_Redaction", img, true, iterations)
	if err != nil {
		return result, fmt.Errorf("detection benchmark failed: %w", err)
	}
	result.DetectResult = detectResult

	catalogResult, err := benchmarkRedaction("Catalog_Redaction", img, false, iterations)
	if err != nil {
		return result, fmt.Errorf("catalog benchmark failed: %w", err)
	}
	result.CatalogResult = catalogResult

	result.SlowdownRatio = float64(detectResult.Duration.Nanoseconds()) /
		float64(catalogResult.Duration.Nanoseconds())
	result.MemoryDiffKB = detectResult.AllocDeltaKB() - catalogResult.AllocDeltaKB()

	return result, nil
}

// benchmarkRedaction runs a full in-memory redaction with the given selection
// mode for the requested number of iterations.
func benchmarkRedaction(name string, img image.Image, autoDetect bool, iterations int) (BenchmarkResult, error) {
	redactor, err := redact.NewBuilder().
		WithAutoDetection(autoDetect).
		Build()
	if err != nil {
		return BenchmarkResult{}, fmt.Errorf("failed to build redactor: %w", err)
	}

	// Warmup
	_, _, _ = redactor.ProcessImage(img)

	benchmarkFunc := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, _, err := redactor.ProcessImageContext(ctx, img)
		return err
	}

	suite := NewBenchmarkSuite()
	suite.Add(name, benchmarkFunc)

	return suite.Run(name, iterations), nil
}

// PrintDetailedResults prints comprehensive benchmark results.
func (b *SelectionModeBenchmark) PrintDetailedResults() {
	if len(b.results) == 0 {
		fmt.Println("No benchmark results available")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("Detection vs Catalog Selection Benchmark Results")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf("System Information:\n")
	fmt.Printf("  GOOS: %s\n", runtime.GOOS)
	fmt.Printf("  GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("  NumCPU: %d\n", runtime.NumCPU())
	fmt.Printf("  Go Version: %s\n", runtime.Version())
	fmt.Println()

	fmt.Println("Individual Page Results:")
	fmt.Println(strings.Repeat("-", 50))
	for _, result := range b.results {
		fmt.Printf("• %s\n", result.String())
	}
	fmt.Println()

	b.printSummaryStatistics()
}

// printSummaryStatistics calculates and prints summary stats.
func (b *SelectionModeBenchmark) printSummaryStatistics() {
	var detectTotalTime, catalogTotalTime time.Duration
	avgRatio := 0.0

	for _, result := range b.results {
		detectTotalTime += result.DetectResult.Duration
		catalogTotalTime += result.CatalogResult.Duration
		avgRatio += result.SlowdownRatio
	}
	avgRatio /= float64(len(b.results))

	fmt.Println("Summary Statistics:")
	fmt.Println(strings.Repeat("-", 25))
	fmt.Printf("  Total Detect Time: %v\n", detectTotalTime)
	fmt.Printf("  Total Catalog Time: %v\n", catalogTotalTime)
	fmt.Printf("  Average Detect/Catalog Ratio: %.2fx\n", avgRatio)

	if avgRatio > 1.0 {
		fmt.Println("  Catalog-only selection (--auto=false) is faster for documents")
		fmt.Println("  with a known layout; detection earns its cost on unknown ones.")
	}
	fmt.Println()
}

// GetResults returns the benchmark results.
func (b *SelectionModeBenchmark) GetResults() []SelectionModeResult {
	return b.results
}
