package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/agahlya1812/memoboost/internal/server/config"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func testConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Storage = config.StorageMemory
	c.HTTPAddr = freeAddress(t)
	c.HealthAddrGRPC = freeAddress(t)
	c.ShutdownTimeout = time.Second
	c.LogLevel = "error"
	return c
}

func TestNewApp_UnknownStorage(t *testing.T) {
	c := testConfig(t)
	c.Storage = "tape"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "storage init error")
}

func TestNewApp_StorageError(t *testing.T) {
	orig := openStorage
	t.Cleanup(func() { openStorage = orig })
	openStorage = func(context.Context, string, string, string) (repomanager.RepositoryManager, error) {
		return nil, errors.New("boom")
	}

	_, err := NewApp(context.Background(), testConfig(t))
	assert.ErrorContains(t, err, "boom")
}

func TestApp_RunServesAndStops(t *testing.T) {
	c := testConfig(t)
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + c.HTTPAddr + "/api/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
