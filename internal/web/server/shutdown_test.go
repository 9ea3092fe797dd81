package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(&Config{Address: "127.0.0.1:0", Handler: okHandler()})
	require.NoError(t, err)
	return srv
}

func TestDefaultShutdownConfig(t *testing.T) {
	config := DefaultShutdownConfig()

	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.ElementsMatch(t, []os.Signal{syscall.SIGINT, syscall.SIGTERM}, config.Signals)
}

func TestNewGracefulShutdownDefaults(t *testing.T) {
	gs := NewGracefulShutdown(newTestServer(t), &ShutdownConfig{Timeout: time.Second})

	assert.Len(t, gs.signals, 2)
	assert.NotNil(t, gs.logger)
}

func TestRunStopsOnContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gs := NewGracefulShutdown(newTestServer(t), &ShutdownConfig{
		Timeout: time.Second,
		Signals: []os.Signal{syscall.SIGUSR1},
		Logger:  zap.New(core),
	})

	var mu sync.Mutex
	var order []string
	gs.RegisterHook(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "first")
		return errors.New("cache close failed")
	})
	gs.RegisterHook(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "second")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + gs.server.Addr() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	mu.Lock()
	assert.Equal(t, []string{"first", "second"}, order, "a failing hook does not stop the rest")
	mu.Unlock()

	assert.Equal(t, 1, logs.FilterMessage("shutdown hook failed").Len())
	assert.NoError(t, gs.Wait())
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.Listen())
	go srv.Serve()

	gs := NewGracefulShutdown(srv, &ShutdownConfig{Timeout: time.Second})

	calls := 0
	gs.RegisterHook(func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, gs.Shutdown())
	require.NoError(t, gs.Shutdown())
	assert.Equal(t, 1, calls)
}

func TestRunListenFailure(t *testing.T) {
	srv, err := New(&Config{Address: "256.0.0.1:http", Handler: okHandler()})
	require.NoError(t, err)

	gs := NewGracefulShutdown(srv, nil)
	assert.Error(t, gs.Run(context.Background()))
}
