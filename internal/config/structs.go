//nolint:lll
package config

// Config represents the complete configuration for the poblur application.
// It includes settings for all commands (run, regions, batch, serve) and
// supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LayoutsDir string `mapstructure:"layouts_dir" yaml:"layouts_dir" json:"layouts_dir"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Redaction pipeline configuration
	Redact RedactConfig `mapstructure:"redact" yaml:"redact" json:"redact"`

	// Automatic detection configuration
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector" json:"detector"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// RedactConfig contains the core redaction settings.
type RedactConfig struct {
	Strength    int      `mapstructure:"strength" yaml:"strength" json:"strength"`
	AutoDetect  bool     `mapstructure:"auto_detect" yaml:"auto_detect" json:"auto_detect"`
	Layout      string   `mapstructure:"layout" yaml:"layout" json:"layout"`
	Areas       []string `mapstructure:"areas" yaml:"areas" json:"areas"`
	JPEGQuality int      `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
}

// DetectorConfig contains automatic region detection settings.
type DetectorConfig struct {
	Variant           string  `mapstructure:"variant" yaml:"variant" json:"variant"`
	MinContrast       float64 `mapstructure:"min_contrast" yaml:"min_contrast" json:"min_contrast"`
	CloseKernelWidth  int     `mapstructure:"close_kernel_width" yaml:"close_kernel_width" json:"close_kernel_width"`
	CloseKernelHeight int     `mapstructure:"close_kernel_height" yaml:"close_kernel_height" json:"close_kernel_height"`
	MinWidth          int     `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	MinHeight         int     `mapstructure:"min_height" yaml:"min_height" json:"min_height"`
	MaxWidthFrac      float64 `mapstructure:"max_width_frac" yaml:"max_width_frac" json:"max_width_frac"`
	MaxHeightFrac     float64 `mapstructure:"max_height_frac" yaml:"max_height_frac" json:"max_height_frac"`
	MinArea           int     `mapstructure:"min_area" yaml:"min_area" json:"min_area"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayEnabled  bool   `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`

	// Rate limiting, all zero means disabled.
	RateLimitEnabled  bool  `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Suffix          string `mapstructure:"suffix" yaml:"suffix" json:"suffix"`
	Recursive       bool   `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Pattern         string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
