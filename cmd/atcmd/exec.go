package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/session"
)

var errCommandsFailed = errors.New("one or more commands failed")

func newExecCmd(opts *options) *cobra.Command {
	var listen time.Duration

	cmd := &cobra.Command{
		Use:   "exec <command>...",
		Short: "Send AT commands and print the replies",
		Long: `Send each argument as one AT command, in order, and print the reply.
CRLF is appended to every command.

With --listen the modem is watched for unsolicited events after the last
command, e.g. incoming DTMF tones.`,
		Example: `  atcmd exec -p /dev/ttyUSB0 AT AT+CPIN?
  atcmd exec --tcp localhost:2000 --listen 30s AT+DDET=1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runExec(ctx, opts, cmd.OutOrStdout(), args, listen)
		},
	}
	cmd.Flags().DurationVar(&listen, "listen", 0, "Keep printing unsolicited events for this long")

	return cmd
}

// lockedWriter serializes writes from the session loop and the caller.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

func runExec(ctx context.Context, opts *options, w io.Writer, cmds []string, listen time.Duration) error {
	out := &lockedWriter{w: w}

	t, err := opts.dial(ctx)
	if err != nil {
		return err
	}
	defer t.Close()

	s, err := session.New(ctx, t,
		session.WithLogger(logger.GetLogger()),
		session.WithEngineOptions(atcmd.WithTimeout(opts.timeout)),
	)
	if err != nil {
		return err
	}
	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()

	cancel := s.Subscribe(func(ev atcmd.Event) {
		fmt.Fprintf(out, "%s %s\n", ev.Code, eventText(ev))
	})
	defer cancel()

	failed := false
	for _, c := range cmds {
		fmt.Fprintf(out, "> %s\n", c)

		reply, err := s.Exec(ctx, c+"\r\n")
		if err != nil {
			return err
		}
		printReply(out, reply)
		if reply.Result != atcmd.ResultOK {
			failed = true
		}
	}

	if listen > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(listen):
		}
	}

	if failed {
		return errCommandsFailed
	}

	return nil
}

func printReply(out io.Writer, reply *session.Reply) {
	for _, ev := range reply.Events {
		fmt.Fprintf(out, "%s %s\n", ev.Code, eventText(ev))
	}
	if reply.Response != "" {
		for _, line := range strings.Split(reply.Response, "\r\n") {
			if line = strings.TrimSpace(line); line != "" {
				fmt.Fprintln(out, line)
			}
		}
	}
	fmt.Fprintln(out, reply.Result)
}

func eventText(ev atcmd.Event) string {
	if ev.Value == nil {
		return fmt.Sprintf("%q", ev.Payload)
	}
	return fmt.Sprint(ev.Value)
}
