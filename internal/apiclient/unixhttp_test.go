//go:build unix

package apiclient

import (
	"context"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitessce/vitcat/internal/config"
	"github.com/vitessce/vitcat/internal/daemon"
)

// startDaemonHandler serves the daemon API on a unix socket in a temp dir.
func startDaemonHandler(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "vitcat")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	sock := filepath.Join(dir, "d.sock")

	d, err := daemon.New(&config.Config{SocketPath: sock, PIDFile: filepath.Join(dir, "d.pid")}, nil)
	require.NoError(t, err)

	l, err := net.Listen("unix", sock)
	require.NoError(t, err)
	srv := httptest.NewUnstartedServer(d.Handler())
	srv.Listener.Close()
	srv.Listener = l
	srv.Start()
	t.Cleanup(srv.Close)
	return sock
}

func TestClient_ListAndGet(t *testing.T) {
	c := New(startDaemonHandler(t))
	ctx := context.Background()

	list, err := c.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "linnarsson-2018", list[0].ID)

	cfg, err := c.GetDataset(ctx, list[0].ID)
	require.NoError(t, err)
	assert.True(t, cfg.Public)
	require.NotNil(t, cfg.ResponsiveLayout)
	assert.Equal(t, []int{1400, 1200, 1000, 800, 600}, cfg.ResponsiveLayout.Breakpoints())

	hidden, err := c.GetDataset(ctx, "higlass-wrapped-component-demo")
	require.NoError(t, err)
	assert.Equal(t, "HiGlass wrapped component demo", hidden.Name)
}

func TestClient_NotFound(t *testing.T) {
	c := New(startDaemonHandler(t))

	_, err := c.GetDataset(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "dataset not found", apiErr.Message)
}

func TestClient_DaemonNotRunning(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent.sock"))

	_, err := c.ListDatasets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is it running?")
	assert.False(t, IsNotFound(err))
}
