package support

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// StartServer launches the server binary and waits for it to become healthy.
func (tc *TestContext) StartServer(command string) error {
	command = tc.substituteCommandVariables(command)
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("empty server command")
	}

	host, port := parseServerCommand(parts)
	tc.ServerHost = host
	tc.ServerPort = port

	if isPortInUse(port) {
		return fmt.Errorf("port %d is already in use", port)
	}

	binary := parts[0]
	if binary == "poblur" {
		binary = filepath.Join(tc.ProjectRoot, "bin", "poblur")
	}

	cmd := exec.Command(binary, parts[1:]...) //nolint:gosec // G204: test commands come from feature files
	cmd.Dir = tc.WorkingDir
	cmd.Env = append(os.Environ(), tc.EnvVars...)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	tc.ServerProcess = cmd

	if err := tc.waitForServerReady(10 * time.Second); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		tc.ServerProcess = nil
		return err
	}
	return nil
}

// parseServerCommand extracts host and port from the command arguments.
func parseServerCommand(parts []string) (string, int) {
	host := "localhost"
	port := 8080
	for i, part := range parts {
		switch {
		case part == "--port" || part == "-p":
			if i+1 < len(parts) {
				if p, err := strconv.Atoi(parts[i+1]); err == nil {
					port = p
				}
			}
		case strings.HasPrefix(part, "--port="):
			if p, err := strconv.Atoi(strings.TrimPrefix(part, "--port=")); err == nil {
				port = p
			}
		case part == "--host" || part == "-H":
			if i+1 < len(parts) {
				host = parts[i+1]
			}
		case strings.HasPrefix(part, "--host="):
			host = strings.TrimPrefix(part, "--host=")
		}
	}
	return host, port
}

// isPortInUse reports whether something already listens on the port.
func isPortInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// GetServerURL returns the base URL for API requests, preferring an
// in-process test server when one is running.
func (tc *TestContext) GetServerURL() string {
	if tc.HTTPTestServer != nil {
		return tc.HTTPTestServer.URL
	}
	host := tc.ServerHost
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, tc.ServerPort)
}

// isServerHealthy checks the health endpoint of the current server.
func (tc *TestContext) isServerHealthy() bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(tc.GetServerURL() + "/health")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// waitForServerReady polls the health endpoint until the server responds.
func (tc *TestContext) waitForServerReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if tc.isServerHealthy() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not become ready within %v", timeout)
}

// StopServerProcess terminates the running server process, first gracefully
// and then forcefully.
func (tc *TestContext) StopServerProcess() error {
	if tc.ServerProcess == nil || tc.ServerProcess.Process == nil {
		tc.ServerProcess = nil
		return nil
	}
	proc := tc.ServerProcess
	tc.ServerProcess = nil

	if err := proc.Process.Signal(syscall.SIGTERM); err != nil {
		_ = proc.Process.Kill()
		_ = proc.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = proc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = proc.Process.Kill()
		<-done
	}
	return nil
}
