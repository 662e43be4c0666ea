// Command bashlet-guestd is the guest agent that runs inside a Firecracker
// microVM. It listens on vsock (or a Unix-domain socket, for test harnesses
// without real vsock support) and serves the guestrpc line protocol:
// execute, read_file, write_file.
//
// Build with: CGO_ENABLED=0 GOOS=linux GOARCH=amd64 go build -o bashlet-guestd ./cmd/bashlet-guestd
package main

import (
	"flag"
	"net"
	"os"

	"github.com/mdlayher/vsock"
	"github.com/sirupsen/logrus"

	"github.com/seantiz/bashlet/internal/guestexec"
	"github.com/seantiz/bashlet/internal/guestinit"
	"github.com/seantiz/bashlet/internal/guestrpc"
)

// guestVsockPort is the well-known port the host dials per spec §4.3.
const guestVsockPort = 5000

func main() {
	udsPath := flag.String("uds", "", "listen on this Unix-domain socket instead of vsock (test harnesses without vsock)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{})

	guestinit.SetupInit()

	listener, err := newListener(*udsPath)
	if err != nil {
		log.WithError(err).Fatal("failed to start listener")
	}
	defer listener.Close()

	log.WithField("addr", listener.Addr()).Info("bashlet-guestd listening")

	server := guestrpc.NewServer(listener, guestexec.Handler{})
	if err := server.Serve(); err != nil {
		log.WithError(err).Fatal("serve failed")
	}
}

func newListener(udsPath string) (net.Listener, error) {
	if udsPath != "" {
		os.Remove(udsPath)
		return net.Listen("unix", udsPath)
	}
	return vsock.Listen(guestVsockPort, nil)
}
