package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arloliu/go-atcmd/executor"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/ringbuf"
)

const (
	consolePrompt       = "AT> "
	consoleHistoryFile  = ".atcmd_history"
	consoleHistoryLimit = 500
	consoleTick         = 2 * time.Millisecond
)

func newConsoleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive AT command console",
		Long: `Read AT commands from the terminal, send them one at a time and print
the replies. Unsolicited modem output is printed as it arrives.
Type "quit" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			t, err := opts.dial(ctx)
			if err != nil {
				return err
			}
			defer t.Close()

			out := &lockedWriter{w: cmd.OutOrStdout()}
			in := newLineReader(cmd.InOrStdin(), out)
			defer in.Close()

			c := &console{out: out}
			c.exec, err = executor.New(t, c.callbacks(),
				executor.WithTimeout(opts.timeout),
				executor.WithLogger(logger.GetLogger()),
			)
			if err != nil {
				return err
			}

			return c.run(ctx, in)
		},
	}
}

// console drives an executor from a ticker goroutine while the main
// goroutine reads input.
type console struct {
	mu   sync.Mutex // protects exec
	exec *executor.Executor
	out  io.Writer
}

func (c *console) callbacks() executor.Callbacks {
	return executor.CallbackFuncs{
		ExecutingFunc: func(buf *ringbuf.Line) bool {
			if !replyComplete(buf) {
				return true
			}
			c.print(buf.String())
			buf.Clear()

			return false
		},
		TimeoutFunc: func(buf *ringbuf.Line) {
			c.print(buf.String())
			fmt.Fprintln(c.out, "TIMEOUT")
			buf.Clear()
		},
		OverflowFunc: func(buf *ringbuf.Line) {
			c.printLines(buf)
		},
		EventFunc: func(buf *ringbuf.Line) {
			c.printLines(buf)
		},
	}
}

func (c *console) run(ctx context.Context, in lineReader) error {
	go c.tick(ctx)

	for {
		line, err := in.ReadLine(consolePrompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		c.mu.Lock()
		err = c.exec.Exec([]byte(line + "\r\n"))
		c.mu.Unlock()
		if err != nil {
			fmt.Fprintln(c.out, err)
			continue
		}

		if !c.wait(ctx) {
			return ctx.Err()
		}
	}
}

func (c *console) tick(ctx context.Context) {
	ticker := time.NewTicker(consoleTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.exec.Tick()
			c.mu.Unlock()
		}
	}
}

// wait blocks until the command in flight has completed.
func (c *console) wait(ctx context.Context) bool {
	for {
		c.mu.Lock()
		busy := c.exec.IsExecuting()
		c.mu.Unlock()
		if !busy {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(consoleTick):
		}
	}
}

func (c *console) print(text string) {
	for _, line := range strings.Split(text, "\r\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintln(c.out, line)
		}
	}
}

// printLines prints and consumes every complete line in buf.
func (c *console) printLines(buf *ringbuf.Line) {
	last := -1
	for pos, ok := buf.IndexOf("\r\n", 0); ok; pos, ok = buf.IndexOf("\r\n", pos+1) {
		last = pos
	}
	if last < 0 {
		if buf.Full() {
			c.print(buf.String())
			buf.Clear()
		}

		return
	}

	c.print(buf.Text(0, last))
	buf.PopFirsts(last + 2)
}

// replyComplete reports whether buf holds a final result line.
func replyComplete(buf *ringbuf.Line) bool {
	if buf.Contains("OK\r\n") || buf.Contains("ERROR\r\n") {
		return true
	}
	for _, prefix := range []string{"+CME ERROR:", "+CMS ERROR:"} {
		if pos, ok := buf.IndexOf(prefix, 0); ok {
			if _, ok := buf.IndexOf("\r\n", pos); ok {
				return true
			}
		}
	}

	return false
}

type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close()
}

// newLineReader uses readline on a terminal and a plain scanner otherwise.
func newLineReader(in io.Reader, out io.Writer) lineReader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		home, _ := os.UserHomeDir()
		rl, err := readline.NewFromConfig(&readline.Config{
			HistoryFile:  filepath.Join(home, consoleHistoryFile),
			HistoryLimit: consoleHistoryLimit,
		})
		if err == nil {
			return &readlineReader{rl: rl}
		}
		logger.Warn("readline unavailable, using plain input", "error", err)
	}

	return &scanReader{scanner: bufio.NewScanner(in), out: out}
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)

	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}

	return line, err
}

func (r *readlineReader) Close() { r.rl.Close() }

type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scanReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return r.scanner.Text(), nil
}

func (r *scanReader) Close() {}
