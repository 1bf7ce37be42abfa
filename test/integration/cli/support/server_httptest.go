package support

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"

	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/server"
)

// createTestHTTPServer starts an in-process redaction server backed by
// httptest. API scenarios run against it without spawning the binary.
func (tc *TestContext) createTestHTTPServer() error {
	if tc.HTTPTestServer != nil {
		return nil
	}

	srv, err := server.NewServer(server.Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		TimeoutSec:     30,
		Redact:         redact.DefaultConfig(),
		OverlayEnabled: true,
		Version:        "test",
	})
	if err != nil {
		return fmt.Errorf("failed to create test server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)

	u, err := url.Parse(ts.URL)
	if err != nil {
		ts.Close()
		return fmt.Errorf("failed to parse test server URL: %w", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		ts.Close()
		return fmt.Errorf("failed to parse test server port: %w", err)
	}

	tc.HTTPTestServer = ts
	tc.ServerHost = u.Hostname()
	tc.ServerPort = port
	return nil
}

// stopTestHTTPServer shuts the in-process server down.
func (tc *TestContext) stopTestHTTPServer() {
	if tc.HTTPTestServer != nil {
		tc.HTTPTestServer.Close()
		tc.HTTPTestServer = nil
	}
}
