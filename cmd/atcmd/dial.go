package main

import (
	"context"
	"errors"
	"strings"

	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/transport"
)

var errNoPort = errors.New("no modem given: use --port, --tcp, " + envPort + " or --dry-run")

// dial opens the modem connection selected by the flags.
func (o *options) dial(ctx context.Context) (transport.Closer, error) {
	streamOpts := []transport.StreamOption{transport.WithStreamLogger(logger.GetLogger())}

	switch {
	case o.dryRun:
		mem := transport.NewMemory()
		mem.SetResponder(dryRunReply)

		return mem, nil

	case o.tcp != "":
		s, err := transport.TCPDialer{Addr: o.tcp, Options: streamOpts}.Dial(ctx)
		if err != nil {
			return nil, err
		}

		return s, nil

	case o.port != "":
		s, err := transport.SerialDialer{
			PortName: o.port,
			Mode:     transport.DefaultMode(o.baud),
			Options:  streamOpts,
		}.Dial(ctx)
		if err != nil {
			return nil, err
		}

		return s, nil
	}

	return nil, errNoPort
}

// dryRunReply answers like a ready modem with an unlocked SIM.
func dryRunReply(cmd []byte) []byte {
	switch strings.TrimSpace(string(cmd)) {
	case "AT+CPIN?":
		return []byte("\r\n+CPIN: READY\r\n\r\nOK\r\n")
	case "AT+CFUN?":
		return []byte("\r\n+CFUN: 1\r\n\r\nOK\r\n")
	case "AT+CGREG?":
		return []byte("\r\n+CGREG: 0,1\r\n\r\nOK\r\n")
	default:
		return []byte("\r\nOK\r\n")
	}
}
