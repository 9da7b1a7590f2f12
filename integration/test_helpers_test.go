package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/exec"
	"regexp"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCSRFSecret = "integration-csrf-secret-0123456789"

// writeTestConfig writes a config map to a temporary JSON file and returns its path
func writeTestConfig(t *testing.T, cfg map[string]any) string {
	t.Helper()
	data, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// buildTestConfig builds a complete openid-selector config map
func buildTestConfig(addr, basePath string, picker map[string]any, providers map[string]any) map[string]any {
	cfg := map[string]any{
		"version": "v0.0.1-DEV_EDITION",
		"server": map[string]any{
			"addr":       addr,
			"basePath":   basePath,
			"name":       "integration",
			"verifyURL":  "https://rp.example.com/verify",
			"csrfSecret": map[string]string{"$env": "CSRF_SECRET"},
		},
	}
	if picker != nil {
		cfg["picker"] = picker
	}
	if providers != nil {
		cfg["providers"] = providers
	}
	return cfg
}

// freeAddr reserves a loopback port for one server
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// startSelector starts the binary with the given config and stops it when
// the test ends
func startSelector(t *testing.T, configPath string, extraEnv ...string) {
	t.Helper()
	cmd := exec.Command(binaryPath, "serve", "--config", configPath)
	cmd.Env = append(os.Environ(),
		"CSRF_SECRET="+testCSRFSecret,
		// plain HTTP in tests; cookies must not be Secure
		"OPENID_SELECTOR_ENV=development",
	)
	cmd.Env = append(cmd.Env, extraEnv...)

	if logFile := os.Getenv("SELECTOR_LOG_FILE"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			cmd.Stderr = f
			cmd.Stdout = f
			t.Cleanup(func() { f.Close() })
		}
	}

	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		stopSelector(cmd)
	})
}

// stopSelector stops the server gracefully, killing it after 5 seconds
func stopSelector(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
}

// waitForSelector waits for the health endpoint to answer
func waitForSelector(t *testing.T, addr string) {
	t.Helper()
	for range 50 {
		resp, err := http.Get("http://" + addr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("openid-selector failed to become ready after 5 seconds")
}

// newBrowser returns a client that keeps cookies and does not follow
// redirects, so tests can inspect the hand-off to the verify URL
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 5 * time.Second,
	}
}

var csrfInputRE = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// getPage fetches a page and returns its body and the embedded CSRF token
func getPage(t *testing.T, client *http.Client, url string) (int, string, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var token string
	if m := csrfInputRE.FindSubmatch(body); m != nil {
		token = string(m[1])
	}
	return resp.StatusCode, string(body), token
}

func pageURL(addr, path string) string {
	return fmt.Sprintf("http://%s%s", addr, path)
}
