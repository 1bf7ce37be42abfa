// Package detect finds text-bearing regions in document images using a
// pure-Go heuristic: a luminance ink map is thresholded, closed horizontally
// so characters merge into line blobs, and connected components become
// candidate regions filtered by purchase-order text geometry.
package detect

// VariantHeuristic is the default detector implementation.
const VariantHeuristic = "heuristic"

// Config selects and configures a detector implementation.
type Config struct {
	Variant   string          `mapstructure:"variant" yaml:"variant" json:"variant"`
	Heuristic HeuristicConfig `mapstructure:"heuristic" yaml:"heuristic" json:"heuristic"`
}

// HeuristicConfig tunes the heuristic detector. The defaults mirror the
// geometry of printed text lines on a purchase order.
type HeuristicConfig struct {
	// MinContrast is the minimum ink-map dynamic range for a page to be
	// considered non-blank. Below it, no regions are reported.
	MinContrast float32 `mapstructure:"min_contrast" yaml:"min_contrast" json:"min_contrast"`

	// Closing kernel merging adjacent glyphs into line blobs. Width spans
	// inter-character gaps; height stays below line spacing.
	CloseKernelWidth  int `mapstructure:"close_kernel_width" yaml:"close_kernel_width" json:"close_kernel_width"`
	CloseKernelHeight int `mapstructure:"close_kernel_height" yaml:"close_kernel_height" json:"close_kernel_height"`

	// Candidate box filters.
	MinWidth      int     `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	MinHeight     int     `mapstructure:"min_height" yaml:"min_height" json:"min_height"`
	MaxWidthFrac  float64 `mapstructure:"max_width_frac" yaml:"max_width_frac" json:"max_width_frac"`
	MaxHeightFrac float64 `mapstructure:"max_height_frac" yaml:"max_height_frac" json:"max_height_frac"`
	MinArea       int     `mapstructure:"min_area" yaml:"min_area" json:"min_area"`
}

// DefaultConfig returns the heuristic detector with its standard tuning.
func DefaultConfig() Config {
	return Config{
		Variant:   VariantHeuristic,
		Heuristic: DefaultHeuristicConfig(),
	}
}

// DefaultHeuristicConfig returns the standard heuristic tuning.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		MinContrast:       0.15,
		CloseKernelWidth:  21,
		CloseKernelHeight: 3,
		MinWidth:          30,
		MinHeight:         10,
		MaxWidthFrac:      0.8,
		MaxHeightFrac:     0.1,
		MinArea:           300,
	}
}
