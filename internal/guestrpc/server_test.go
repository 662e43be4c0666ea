package guestrpc_test

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/seantiz/bashlet/internal/guestrpc"
)

// stubHandler is an in-memory Handler for protocol tests.
type stubHandler struct {
	files map[string]string
}

func newStubHandler() *stubHandler { return &stubHandler{files: make(map[string]string)} }

func (h *stubHandler) Execute(command, _ string) (int, string, string, error) {
	if command == "echo hello" {
		return 0, "hello\n", "", nil
	}
	return 1, "", "boom", nil
}

func (h *stubHandler) ReadFile(path string) (string, error) {
	content, ok := h.files[path]
	if !ok {
		return "", &notFoundError{path}
	}
	return content, nil
}

func (h *stubHandler) WriteFile(path, content string) error {
	h.files[path] = content
	return nil
}

type notFoundError struct{ path string }

func (e *notFoundError) Error() string { return "no such file: " + e.path }

func startServer(t *testing.T, h guestrpc.Handler) (dial func() (net.Conn, error), stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := guestrpc.NewServer(ln, h)
	go srv.Serve()

	addr := ln.Addr().String()
	return func() (net.Conn, error) {
			return net.DialTimeout("tcp", addr, time.Second)
		}, func() {
			ln.Close()
		}
}

func TestClientServerPingPong(t *testing.T) {
	dial, stop := startServer(t, newStubHandler())
	defer stop()

	client := guestrpc.NewClient(dial)
	if err := client.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestClientServerExecute(t *testing.T) {
	dial, stop := startServer(t, newStubHandler())
	defer stop()

	client := guestrpc.NewClient(dial)
	resp, err := client.Execute("echo hello", "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", resp.ExitCode)
	}
	if strings.TrimSpace(resp.Stdout) != "hello" {
		t.Errorf("Stdout = %q, want %q", resp.Stdout, "hello")
	}
}

func TestClientServerWriteThenReadFile(t *testing.T) {
	dial, stop := startServer(t, newStubHandler())
	defer stop()

	client := guestrpc.NewClient(dial)
	if err := client.WriteFile("/tmp/f", "payload"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := client.ReadFile("/tmp/f")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got != "payload" {
		t.Errorf("ReadFile() = %q, want %q", got, "payload")
	}
}

func TestClientReadFileMissingReturnsGuestError(t *testing.T) {
	dial, stop := startServer(t, newStubHandler())
	defer stop()

	client := guestrpc.NewClient(dial)
	_, err := client.ReadFile("/tmp/missing")
	if err == nil {
		t.Fatal("ReadFile() error = nil, want error for missing path")
	}
}

func TestServerRejectsMalformedRequest(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	srv := guestrpc.NewServer(ln, newStubHandler())
	go srv.Serve()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(`{"invalid":"json"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp, err := guestrpc.NewReader(conn).ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if resp.Type != guestrpc.TypeError {
		t.Errorf("Type = %q, want %q", resp.Type, guestrpc.TypeError)
	}
	if !strings.HasPrefix(resp.Message, "Invalid request") {
		t.Errorf("Message = %q, want prefix %q", resp.Message, "Invalid request")
	}
}

func TestServerRejectsUnparsableJSONAndKeepsConnectionOpen(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	srv := guestrpc.NewServer(ln, newStubHandler())
	go srv.Serve()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(`not json at all` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	reader := guestrpc.NewReader(conn)
	resp, err := reader.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if resp.Type != guestrpc.TypeError {
		t.Errorf("Type = %q, want %q", resp.Type, guestrpc.TypeError)
	}
	if !strings.HasPrefix(resp.Message, "Invalid request") {
		t.Errorf("Message = %q, want prefix %q", resp.Message, "Invalid request")
	}

	// The connection must stay open after a malformed line.
	if err := guestrpc.WriteMessage(conn, guestrpc.Request{Type: guestrpc.TypePing}); err != nil {
		t.Fatalf("write ping after malformed request: %v", err)
	}
	pong, err := reader.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse() for ping: %v", err)
	}
	if pong.Type != guestrpc.TypePong {
		t.Errorf("Type = %q, want %q", pong.Type, guestrpc.TypePong)
	}
}
