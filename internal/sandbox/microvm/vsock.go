package microvm

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// dialGuestVsock opens one connection to the guest agent through
// Firecracker's vsock UDS bridge. Per host-transport semantics, this is a
// one-shot connection: CONNECT handshake, then the raw socket is handed to
// the RPC layer for a single write-then-read-then-close round trip.
func dialGuestVsock(udsPath string, port uint32) (net.Conn, error) {
	conn, err := net.Dial("unix", udsPath)
	if err != nil {
		return nil, sandbox.NewVMCommunication("dial vsock UDS", err)
	}

	if _, err := fmt.Fprintf(conn, "CONNECT %d\n", port); err != nil {
		conn.Close()
		return nil, sandbox.NewVMCommunication("send CONNECT", err)
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		conn.Close()
		return nil, sandbox.NewVMCommunication("read CONNECT response", err)
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "OK ") {
		conn.Close()
		return nil, sandbox.NewVMCommunication("vsock CONNECT rejected: "+line, nil)
	}

	return &bufferedConn{Conn: conn, reader: reader}, nil
}

// bufferedConn preserves bytes the handshake's bufio.Reader may have
// buffered ahead of the guest agent's JSON response line.
type bufferedConn struct {
	net.Conn
	reader *bufio.Reader
}

func (b *bufferedConn) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}
