package testutil

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/pawchat-ai/pawchat/internal/chat"
	"github.com/pawchat-ai/pawchat/internal/event"
	"github.com/pawchat-ai/pawchat/internal/prompt"
	"github.com/pawchat-ai/pawchat/internal/provider"
	"github.com/pawchat-ai/pawchat/internal/server"
	"github.com/pawchat-ai/pawchat/internal/storage"
)

// TestServer wraps a server instance for testing
type TestServer struct {
	Server  *server.Server
	BaseURL string
	Engine  *chat.Engine
	Store   chat.Store
	Bus     *event.Bus
	TempDir string
	port    int
}

// TestServerOption configures TestServer
type TestServerOption func(*testServerConfig)

type testServerConfig struct {
	generator provider.Generator
	prompts   *prompt.Library
}

// WithGenerator sets the generator backing the engine. Defaults to a fresh
// ScriptedGenerator; pass nil explicitly for fallback-only behavior.
func WithGenerator(g provider.Generator) TestServerOption {
	return func(c *testServerConfig) {
		c.generator = g
	}
}

// WithPrompts sets the prompt library.
func WithPrompts(l *prompt.Library) TestServerOption {
	return func(c *testServerConfig) {
		c.prompts = l
	}
}

// StartTestServer creates and starts a test server backed by a temp-dir
// document store.
func StartTestServer(opts ...TestServerOption) (*TestServer, error) {
	cfg := &testServerConfig{
		generator: NewScriptedGenerator(),
		prompts:   prompt.NewLibrary(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tempDir, err := os.MkdirTemp("", "pawchat-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	port, err := findAvailablePort()
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to find available port: %w", err)
	}

	store := chat.NewStore(storage.New(filepath.Join(tempDir, "storage")))
	bus := event.NewBus()
	engine := chat.NewEngine(store, cfg.generator, cfg.prompts, bus)

	serverConfig := server.DefaultConfig()
	serverConfig.Port = port
	srv := server.New(serverConfig, engine, bus)

	go func() {
		_ = srv.Start()
	}()

	baseURL := fmt.Sprintf("http://localhost:%d", port)
	if err := waitForServer(baseURL, 10*time.Second); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		bus.Close()
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("server failed to start: %w", err)
	}

	return &TestServer{
		Server:  srv,
		BaseURL: baseURL,
		Engine:  engine,
		Store:   store,
		Bus:     bus,
		TempDir: tempDir,
		port:    port,
	}, nil
}

// Stop shuts down the test server and cleans up
func (ts *TestServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if ts.Server != nil {
		if err := ts.Server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if ts.Bus != nil {
		ts.Bus.Close()
	}
	if ts.TempDir != "" {
		os.RemoveAll(ts.TempDir)
	}
	return nil
}

// Client returns a new test client for this server
func (ts *TestServer) Client() *TestClient {
	return NewTestClient(ts.BaseURL)
}

// SSEClient returns a new SSE client for this server
func (ts *TestServer) SSEClient() *SSEClient {
	return NewSSEClient(ts.BaseURL)
}

// findAvailablePort finds an available TCP port
func findAvailablePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// waitForServer waits for the server to be ready
func waitForServer(baseURL string, timeout time.Duration) error {
	client := NewTestClient(baseURL)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(context.Background(), "/health")
		if err == nil && resp.IsSuccess() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}
