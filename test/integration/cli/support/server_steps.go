package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/MeKo-Tech/poblur/internal/testutil"
	"github.com/cucumber/godog"
)

// --- Server lifecycle steps ---

func (tc *TestContext) theAPIServerIsRunning() error {
	return tc.createTestHTTPServer()
}

func (tc *TestContext) thePortIsAvailable(port int) error {
	if isPortInUse(port) {
		return fmt.Errorf("port %d is already in use", port)
	}
	return nil
}

func (tc *TestContext) iStartTheServerWith(command string) error {
	return tc.StartServer(command)
}

func (tc *TestContext) theServerShouldStartOnPort(port int) error {
	if tc.ServerPort != port {
		return fmt.Errorf("expected server on port %d, got %d", port, tc.ServerPort)
	}
	if !tc.isServerHealthy() {
		return fmt.Errorf("server on port %d is not responding", port)
	}
	return nil
}

func (tc *TestContext) theHealthEndpointShouldRespondWithStatus(expected int) error {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(tc.GetServerURL() + "/health")
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != expected {
		return fmt.Errorf("expected health status %d, got %d", expected, resp.StatusCode)
	}
	return nil
}

func (tc *TestContext) iSendSIGTERMToTheServer() error {
	if tc.ServerProcess == nil || tc.ServerProcess.Process == nil {
		return fmt.Errorf("no server process is running")
	}
	return tc.ServerProcess.Process.Signal(syscall.SIGTERM)
}

// theServerShouldShutDownGracefully waits for the signalled process to exit
// cleanly and verifies that the port stopped answering.
func (tc *TestContext) theServerShouldShutDownGracefully() error {
	if tc.ServerProcess == nil {
		return fmt.Errorf("no server process is running")
	}
	proc := tc.ServerProcess
	tc.ServerProcess = nil

	done := make(chan error, 1)
	go func() { done <- proc.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("server exited with error: %w", err)
		}
	case <-time.After(15 * time.Second):
		_ = proc.Process.Kill()
		<-done
		return fmt.Errorf("server did not exit within 15s of SIGTERM")
	}

	if tc.isServerHealthy() {
		return fmt.Errorf("server still responding after shutdown")
	}
	return nil
}

// --- HTTP request steps ---

func (tc *TestContext) iPOSTAPurchaseOrderImageTo(endpoint string) error {
	return tc.uploadPurchaseOrder(endpoint, nil)
}

func (tc *TestContext) iPOSTAPurchaseOrderImageWithFormat(endpoint, format string) error {
	return tc.uploadPurchaseOrder(endpoint, map[string]string{"format": format})
}

func (tc *TestContext) iPOSTAPurchaseOrderImageWithStrength(endpoint, strength string) error {
	return tc.uploadPurchaseOrder(endpoint, map[string]string{"strength": strength})
}

func (tc *TestContext) uploadPurchaseOrder(endpoint string, fields map[string]string) error {
	img := testutil.GeneratePurchaseOrder(testutil.DefaultPurchaseOrderConfig())
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode fixture image: %w", err)
	}
	return tc.uploadToEndpoint(endpoint, "order.png", buf.Bytes(), fields)
}

func (tc *TestContext) iPOSTTheFileTo(path, endpoint string) error {
	data, err := os.ReadFile(tc.ResolvePath(path)) //nolint:gosec // G304: test fixture path
	if err != nil {
		return fmt.Errorf("failed to read upload file: %w", err)
	}
	return tc.uploadToEndpoint(endpoint, filepath.Base(path), data, nil)
}

func (tc *TestContext) iPOSTAnInvalidFileTo(endpoint string) error {
	return tc.uploadToEndpoint(endpoint, "invalid.png", []byte("this is not an image"), nil)
}

func (tc *TestContext) iPOSTAnEmptyFormTo(endpoint string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.Close(); err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tc.GetServerURL()+endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return tc.doRequest(req)
}

// uploadToEndpoint POSTs data as the "image" multipart field plus any extra
// form fields.
func (tc *TestContext) uploadToEndpoint(endpoint, filename string, data []byte, fields map[string]string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, tc.GetServerURL()+endpoint, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return tc.doRequest(req)
}

func (tc *TestContext) iGET(endpoint string) error {
	req, err := http.NewRequest(http.MethodGet, tc.GetServerURL()+endpoint, nil)
	if err != nil {
		return err
	}
	return tc.doRequest(req)
}

func (tc *TestContext) iMakeAnOPTIONSRequestTo(endpoint string) error {
	req, err := http.NewRequest(http.MethodOptions, tc.GetServerURL()+endpoint, nil)
	if err != nil {
		return err
	}
	return tc.doRequest(req)
}

// doRequest executes the request and records status, headers and body for
// later assertions.
func (tc *TestContext) doRequest(req *http.Request) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	tc.LastHTTPStatusCode = resp.StatusCode
	tc.LastHTTPResponse = body
	tc.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		tc.LastHTTPHeaders[name] = resp.Header.Get(name)
	}

	tc.LastOutput = string(body)
	if resp.StatusCode >= http.StatusBadRequest {
		tc.LastError = fmt.Errorf("HTTP %d", resp.StatusCode)
		tc.LastExitCode = 1
	} else {
		tc.LastError = nil
		tc.LastExitCode = 0
	}
	return nil
}

// --- Response assertion steps ---

func (tc *TestContext) theResponseStatusShouldBe(expected int) error {
	if tc.LastHTTPStatusCode != expected {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			expected, tc.LastHTTPStatusCode, tc.LastHTTPResponse)
	}
	return nil
}

func (tc *TestContext) theResponseShouldContain(expected string) error {
	if !strings.Contains(string(tc.LastHTTPResponse), expected) {
		return fmt.Errorf("response does not contain %q\nBody: %s", expected, tc.LastHTTPResponse)
	}
	return nil
}

func (tc *TestContext) theResponseShouldBeAPNGImage() error {
	if ct := tc.LastHTTPHeaders["Content-Type"]; ct != "image/png" {
		return fmt.Errorf("expected Content-Type image/png, got %q", ct)
	}
	magic := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	if len(tc.LastHTTPResponse) < len(magic) || !bytes.Equal(tc.LastHTTPResponse[:len(magic)], magic) {
		return fmt.Errorf("response body is not a PNG image")
	}
	return nil
}

func (tc *TestContext) theResponseShouldBeValidJSON() error {
	var raw json.RawMessage
	if err := json.Unmarshal(tc.LastHTTPResponse, &raw); err != nil {
		return fmt.Errorf("response is not valid JSON: %w\nBody: %s", err, tc.LastHTTPResponse)
	}
	return nil
}

func (tc *TestContext) theCORSHeadersShouldAllowAnyOrigin() error {
	if origin := tc.LastHTTPHeaders["Access-Control-Allow-Origin"]; origin != "*" {
		return fmt.Errorf("expected Access-Control-Allow-Origin *, got %q", origin)
	}
	if tc.LastHTTPHeaders["Access-Control-Allow-Methods"] == "" {
		return fmt.Errorf("Access-Control-Allow-Methods header is missing")
	}
	return nil
}

func (tc *TestContext) theResponseHeaderShouldBe(name, expected string) error {
	if got := tc.LastHTTPHeaders[name]; got != expected {
		return fmt.Errorf("expected header %s=%q, got %q", name, expected, got)
	}
	return nil
}

// RegisterServerSteps wires the server lifecycle and HTTP API steps.
func RegisterServerSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^the API server is running$`, tc.theAPIServerIsRunning)
	sc.Step(`^the port (\d+) is available$`, tc.thePortIsAvailable)
	sc.Step(`^I start the server with "([^"]*)"$`, tc.iStartTheServerWith)
	sc.Step(`^the server should start on port (\d+)$`, tc.theServerShouldStartOnPort)
	sc.Step(`^the health endpoint should respond with status (\d+)$`, tc.theHealthEndpointShouldRespondWithStatus)
	sc.Step(`^I send SIGTERM to the server$`, tc.iSendSIGTERMToTheServer)
	sc.Step(`^the server should shut down gracefully$`, tc.theServerShouldShutDownGracefully)

	sc.Step(`^I POST a purchase order image to "([^"]*)"$`, tc.iPOSTAPurchaseOrderImageTo)
	sc.Step(`^I POST a purchase order image to "([^"]*)" with format "([^"]*)"$`, tc.iPOSTAPurchaseOrderImageWithFormat)
	sc.Step(`^I POST a purchase order image to "([^"]*)" with strength "([^"]*)"$`, tc.iPOSTAPurchaseOrderImageWithStrength)
	sc.Step(`^I POST the file "([^"]*)" to "([^"]*)"$`, tc.iPOSTTheFileTo)
	sc.Step(`^I POST an invalid file to "([^"]*)"$`, tc.iPOSTAnInvalidFileTo)
	sc.Step(`^I POST an empty form to "([^"]*)"$`, tc.iPOSTAnEmptyFormTo)
	sc.Step(`^I GET "([^"]*)"$`, tc.iGET)
	sc.Step(`^I make an OPTIONS request to "([^"]*)"$`, tc.iMakeAnOPTIONSRequestTo)

	sc.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	sc.Step(`^the response should be a PNG image$`, tc.theResponseShouldBeAPNGImage)
	sc.Step(`^the response should be valid JSON$`, tc.theResponseShouldBeValidJSON)
	sc.Step(`^the CORS headers should allow any origin$`, tc.theCORSHeadersShouldAllowAnyOrigin)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, tc.theResponseHeaderShouldBe)
}
