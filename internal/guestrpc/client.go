package guestrpc

import (
	"fmt"
	"net"
)

// Client issues one RPC per underlying connection: open, write one line,
// read one line, close. Connections are not pooled — this matches the
// host-transport contract exactly (§4.3): "For each RPC: open Unix-socket
// connection, write <json>\n, flush, read one line, parse, close."
type Client struct {
	dial func() (net.Conn, error)
}

// NewClient creates a Client that opens a fresh connection via dial for
// every RPC.
func NewClient(dial func() (net.Conn, error)) *Client {
	return &Client{dial: dial}
}

// call performs one request/response round trip over a fresh connection.
func (c *Client) call(req Request) (Response, error) {
	conn, err := c.dial()
	if err != nil {
		return Response{}, fmt.Errorf("dial guest: %w", err)
	}
	defer conn.Close()

	if err := WriteMessage(conn, &req); err != nil {
		return Response{}, fmt.Errorf("write request: %w", err)
	}

	resp, err := NewReader(conn).ReadResponse()
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}

// Ping sends {"type":"ping"} and expects {"type":"pong"}.
func (c *Client) Ping() error {
	resp, err := c.call(Request{Type: TypePing})
	if err != nil {
		return err
	}
	if resp.Type != TypePong {
		return fmt.Errorf("unexpected response type %q to ping", resp.Type)
	}
	return nil
}

// Execute sends an execute request and returns exit_code/stdout/stderr.
func (c *Client) Execute(command, workdir string) (Response, error) {
	resp, err := c.call(Request{Type: TypeExecute, Command: command, Workdir: workdir})
	if err != nil {
		return Response{}, err
	}
	if resp.Type == TypeError {
		return Response{}, fmt.Errorf("guest error: %s", resp.Message)
	}
	if resp.Type != TypeExecute {
		return Response{}, fmt.Errorf("unexpected response type %q to execute", resp.Type)
	}
	return resp, nil
}

// ReadFile sends a read_file request and returns its content.
func (c *Client) ReadFile(path string) (string, error) {
	resp, err := c.call(Request{Type: TypeReadFile, Path: path})
	if err != nil {
		return "", err
	}
	if resp.Type == TypeError {
		return "", fmt.Errorf("guest error: %s", resp.Message)
	}
	if resp.Type != TypeReadFile {
		return "", fmt.Errorf("unexpected response type %q to read_file", resp.Type)
	}
	return resp.Content, nil
}

// WriteFile sends a write_file request.
func (c *Client) WriteFile(path, content string) error {
	resp, err := c.call(Request{Type: TypeWriteFile, Path: path, Content: content})
	if err != nil {
		return err
	}
	if resp.Type == TypeError {
		return fmt.Errorf("guest error: %s", resp.Message)
	}
	if resp.Type != TypeWriteFile || !resp.Success {
		return fmt.Errorf("write_file did not report success")
	}
	return nil
}
