package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the redaction API",
	Long: `Start an HTTP server that provides REST API endpoints for purchase-order
redaction.

The server provides the following endpoints:
  POST /redact/image - Redact uploaded images
  POST /redact/pdf   - Redact the embedded images of uploaded PDFs
  POST /redact/batch - Redact a JSON batch of base64 images
  GET  /ws/redact    - WebSocket stream with progress updates
  GET  /health       - Health check endpoint
  GET  /layouts      - Show the active layout catalog
  GET  /metrics      - Prometheus metrics

Examples:
  poblur serve
  poblur serve --port 8080
  poblur serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get configuration from centralized system (includes CLI flags, config file, env vars, and defaults)
		cfg := GetConfig()

		// Extract server configuration with CLI flag overrides
		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		corsOrigin := cfg.Server.CORSOrigin
		if cmd.Flags().Changed("cors-origin") {
			corsOrigin, _ = cmd.Flags().GetString("cors-origin")
		}

		maxUploadSize := cfg.Server.MaxUploadMB
		if cmd.Flags().Changed("max-upload-size") {
			maxUploadSize, _ = cmd.Flags().GetInt("max-upload-size")
		}

		timeout := cfg.Server.TimeoutSec
		if cmd.Flags().Changed("timeout") {
			timeout, _ = cmd.Flags().GetInt("timeout")
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if cmd.Flags().Changed("shutdown-timeout") {
			shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
		}

		overlayEnable := cfg.Server.OverlayEnabled
		if cmd.Flags().Changed("overlay-enable") {
			overlayEnable, _ = cmd.Flags().GetBool("overlay-enable")
		}

		// Extract rate limiting configuration
		rateLimitEnabled := cfg.Server.RateLimitEnabled
		if cmd.Flags().Changed("rate-limit-enabled") {
			rateLimitEnabled, _ = cmd.Flags().GetBool("rate-limit-enabled")
		}

		requestsPerMinute := cfg.Server.RequestsPerMinute
		if cmd.Flags().Changed("requests-per-minute") {
			requestsPerMinute, _ = cmd.Flags().GetInt("requests-per-minute")
		}

		requestsPerHour := cfg.Server.RequestsPerHour
		if cmd.Flags().Changed("requests-per-hour") {
			requestsPerHour, _ = cmd.Flags().GetInt("requests-per-hour")
		}

		maxRequestsPerDay := cfg.Server.MaxRequestsPerDay
		if cmd.Flags().Changed("max-requests-per-day") {
			maxRequestsPerDay, _ = cmd.Flags().GetInt("max-requests-per-day")
		}

		maxDataPerDay := cfg.Server.MaxDataPerDay
		if cmd.Flags().Changed("max-data-per-day") {
			maxDataPerDay, _ = cmd.Flags().GetInt64("max-data-per-day")
		}

		// Extract redaction configuration with CLI flag overrides
		strength := cfg.Redact.Strength
		if cmd.Flags().Changed("strength") {
			strength, _ = cmd.Flags().GetInt("strength")
		}

		autoDetect := cfg.Redact.AutoDetect
		if cmd.Flags().Changed("auto") {
			autoDetect, _ = cmd.Flags().GetBool("auto")
		}

		layoutRef := cfg.Redact.Layout
		if cmd.Flags().Changed("layout") {
			layoutRef, _ = cmd.Flags().GetString("layout")
		}

		areas := cfg.Redact.Areas
		if cmd.Flags().Changed("areas") {
			areas, _ = cmd.Flags().GetStringSlice("areas")
		}

		// Validate port number
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Create server configuration
		serverConfig := server.Config{
			Host:        host,
			Port:        port,
			CORSOrigin:  corsOrigin,
			MaxUploadMB: int64(maxUploadSize),
			TimeoutSec:  timeout,
			Redact: redact.Config{
				Strength:    blur.Strength(strength),
				AutoDetect:  autoDetect,
				Detector:    cfg.ToDetectorConfig(),
				LayoutsDir:  cfg.LayoutsDir,
				Layout:      layoutRef,
				Areas:       areas,
				JPEGQuality: cfg.Redact.JPEGQuality,
			},
			OverlayEnabled: overlayEnable,
			RateLimit: server.RateLimitConfig{
				Enabled:           rateLimitEnabled,
				RequestsPerMinute: requestsPerMinute,
				RequestsPerHour:   requestsPerHour,
				MaxRequestsPerDay: maxRequestsPerDay,
				MaxDataPerDay:     maxDataPerDay,
			},
			Version: buildVersion,
		}

		// Initialize server
		redactServer, err := server.NewServer(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		mux := http.NewServeMux()
		redactServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(timeout) * time.Second,
			WriteTimeout:      time.Duration(timeout) * time.Second,
		}

		go func() {
			slog.Info("Starting redaction server", "host", host, "port", port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(shutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server shutdown completed")
		}

		slog.Info("Graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	// Redaction customization flags
	serveCmd.Flags().IntP("strength", "s", int(blur.DefaultStrength), "blur strength, clamped to 5..30")
	serveCmd.Flags().Bool("auto", true, "detect text regions automatically, fall back to the layout catalog")
	serveCmd.Flags().String("layout", "", "layout catalog (name in the layouts dir or path to a YAML file)")
	serveCmd.Flags().StringSlice("areas", nil, "restrict the layout catalog to the given area labels")
	serveCmd.Flags().Bool("overlay-enable", true, "enable overlay image responses")
	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", 5000, "maximum requests per day per client")
	serveCmd.Flags().Int64("max-data-per-day", 100*1024*1024, "maximum data processed per day per client (bytes)")
}

// GetServeCommand returns the serve command for testing purposes.
func GetServeCommand() *cobra.Command {
	return serveCmd
}
