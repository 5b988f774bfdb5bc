package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/vecagent/internal/cli"
	"github.com/hyperjump/vecagent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  dimension: 8\n"), 0600))

	cfg, resolved, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, 8, cfg.Index.Dimension)
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, resolved, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Equal(t, 784, cfg.Index.Dimension)
}

func TestLoadConfig_MissingExplicitPath(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Metrics.Host = "127.0.0.1"
	cfg.Metrics.Port = freePort(t)
	cfg.Index.Dimension = 2
	cfg.Index.Path = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, zaptest.NewLogger(t)) }()

	base := fmt.Sprintf("http://%s", cfg.Server.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/ready")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	client := cli.NewClient(base)
	_, err := client.Insert(ctx, "a", []float32{1, 0})
	require.NoError(t, err)
	require.NoError(t, client.CreateIndex(ctx, 2))
	resp, err := client.Search(ctx, []float32{1, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a", resp.Results[0].ID)

	m, err := http.Get(fmt.Sprintf("http://%s/metrics", cfg.Metrics.Addr()))
	require.NoError(t, err)
	m.Body.Close()
	assert.Equal(t, http.StatusOK, m.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
