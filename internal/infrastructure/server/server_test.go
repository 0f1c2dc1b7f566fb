package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "apps.yaml")
	cfg.GRPC.Enabled = false
	cfg.RateLimit.Enabled = false
	cfg.Logging.Level = "error"
	return cfg
}

func start(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func shutdown(t *testing.T, s *Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}

func request(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestRegistrySurvivesRestart(t *testing.T) {
	cfg := testConfig(t)

	s := start(t, cfg)
	w := request(s, "POST", "/apps", `{"absolute_path": "/usr/bin/editor"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	shutdown(t, s)

	_, err := os.Stat(cfg.Store.Path)
	require.NoError(t, err)

	s = start(t, cfg)
	defer shutdown(t, s)

	apps, err := s.Controller().GetAllManagedApps(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "editor", apps[0].Name)
	assert.Equal(t, uint32(1), apps[0].ReferenceCount)
}

func TestCancelledRunContextKeepsControllerUntilClose(t *testing.T) {
	s, err := New(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	w := request(s, "POST", "/apps", `{"absolute_path": "/usr/bin/editor"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A signal cancels the run context while requests are still draining
	cancel()

	w = request(s, "POST", "/apps", `{"absolute_path": "/usr/bin/viewer"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = request(s, "GET", "/apps", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"count":2`)

	shutdown(t, s)

	select {
	case <-s.Controller().Done():
	default:
		t.Fatal("controller still running after Close")
	}
	w = request(s, "GET", "/apps", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := start(t, testConfig(t))
	defer shutdown(t, s)

	request(s, "GET", "/apps", "")
	w := request(s, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "launcher_commands_total")
	assert.Contains(t, w.Body.String(), "launcher_http_requests_total")
}

func TestWebhookRegisteredFromConfig(t *testing.T) {
	received := make(chan string, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("X-Launcher-Event")
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	cfg := testConfig(t)
	cfg.Webhooks.Targets = []string{"added=" + hook.URL}
	s := start(t, cfg)
	defer shutdown(t, s)

	_, err := s.Controller().Add(context.Background(), types.AppDetail{AbsolutePath: "/bin/foo"})
	require.NoError(t, err)

	select {
	case category := <-received:
		assert.Equal(t, "added", category)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not called")
	}
}

func TestDirectoryAliasesFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Directory.Aliases = []string{"nvim=app-editor"}
	s := start(t, cfg)
	defer shutdown(t, s)

	app, err := s.Controller().Add(context.Background(), types.AppDetail{AbsolutePath: "/usr/local/bin/nvim"})
	require.NoError(t, err)
	assert.Equal(t, types.AppIdentity("app-editor"), app.ID)
}

func TestGlobalRateLimitFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, Enabled: true, Global: true}
	s := start(t, cfg)
	defer shutdown(t, s)

	get := func(remote string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1:1234"))
	// A different client shares the same budget
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.2:1234"))
}

func TestLaunchEnvFromConfig(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	script := filepath.Join(dir, "marker")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$LAUNCH_MARK\" > "+out+"\n"), 0o755))

	cfg := testConfig(t)
	cfg.Handler.LaunchEnv = []string{"LAUNCH_MARK=from-config"}
	s := start(t, cfg)
	defer shutdown(t, s)

	ctx := context.Background()
	app, err := s.Controller().Add(ctx, types.AppDetail{AbsolutePath: script})
	require.NoError(t, err)
	_, err = s.Controller().Activate(ctx, app.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && strings.TrimSpace(string(data)) == "from-config"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Path = filepath.Join(t.TempDir(), "apps.ini")
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Directory.HashAlgorithm = "md5"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Directory.Aliases = []string{"nvim=bad id!"}
	_, err = New(cfg)
	assert.Error(t, err)
}
