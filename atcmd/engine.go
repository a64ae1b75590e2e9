package atcmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/go-atcmd/clock"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/ringbuf"
	"github.com/arloliu/go-atcmd/transport"
)

const crlf = "\r\n"

type terminal struct {
	token  string
	result Result
	// line is true for prefixes whose line runs on to the next CRLF
	line bool
}

var terminals = []terminal{
	{token: "OK\r\n", result: ResultOK},
	{token: "ERROR\r\n", result: ResultError},
	{token: "+CME ERROR:", result: ResultError, line: true},
	{token: "+CMS ERROR:", result: ResultError, line: true},
}

// Engine is the AT command/event engine. See the package documentation.
type Engine struct {
	cfg       *Config
	transport transport.Transport
	buf       *ringbuf.Line
	clock     clock.Clock
	logger    logger.Logger
	events    []EventSpec
	metrics   Metrics

	executing    bool
	execStart    uint32
	lastResponse string
}

// New creates an Engine bound to t. t is borrowed, never closed.
func New(t transport.Transport, opts ...Option) (*Engine, error) {
	if t == nil {
		return nil, errors.New("atcmd: transport must not be nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		transport: t,
		buf:       ringbuf.NewLine(cfg.bufferSize),
		clock:     cfg.clock,
		logger:    cfg.logger,
		events:    cfg.events,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.cfg }

// Buffer returns the receive buffer. Callers that consume bytes from it
// directly take over the classification of what they removed.
func (e *Engine) Buffer() *ringbuf.Line { return e.buf }

// IsExecuting reports whether a command is in flight.
func (e *Engine) IsExecuting() bool { return e.executing }

// LastResponse returns the information text of the last completed command:
// everything received before its terminal line, trimmed of surrounding
// whitespace. For +CME ERROR and +CMS ERROR the error line is included.
func (e *Engine) LastResponse() string { return e.lastResponse }

// Metrics returns the engine counters.
func (e *Engine) Metrics() *Metrics { return &e.metrics }

// Exec clears the buffer and sends cmd. It fails with ErrAlreadyRunning while
// a command is in flight and with ErrWriting when the transport does not
// accept all of cmd; in both cases the engine stays as it was.
func (e *Engine) Exec(cmd []byte) error {
	if e.executing {
		return ErrAlreadyRunning
	}
	if len(cmd) > e.cfg.maxCommandLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrCommandTooLong, len(cmd), e.cfg.maxCommandLength)
	}

	e.buf.Clear()
	e.lastResponse = ""

	n, err := e.transport.Write(cmd)
	if err != nil {
		e.metrics.incWriteErrCount()
		return fmt.Errorf("%w: %w", ErrWriting, err)
	}
	if n != len(cmd) {
		e.metrics.incWriteErrCount()
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrWriting, n, len(cmd))
	}

	e.executing = true
	e.execStart = e.clock.Millis()
	e.metrics.incCommandCount()
	e.logger.Debug("command sent", "cmd", strings.TrimSpace(string(cmd)))

	return nil
}

// ExecString is Exec for a string command.
func (e *Engine) ExecString(cmd string) error {
	return e.Exec([]byte(cmd))
}

// Execf formats a command with fmt.Sprintf and executes it.
func (e *Engine) Execf(format string, args ...any) error {
	return e.ExecString(fmt.Sprintf(format, args...))
}

// Poll is CheckStatus with the configured timeout.
func (e *Engine) Poll() Result {
	return e.CheckStatus(e.cfg.timeout)
}

// CheckStatus drains the transport and classifies the buffer.
//
// With no new bytes and before the deadline, repeated calls return the same
// Result.
func (e *Engine) CheckStatus(timeout time.Duration) Result {
	e.drain()

	if e.executing && clock.Reached(e.clock.Millis(), e.execStart, timeout) {
		e.executing = false
		e.metrics.incResult(ResultTimeout)
		e.logger.Warn("command timed out", "timeout", timeout, "buffered", e.buf.Len())

		return ResultTimeout
	}

	if res, found := e.scanEvents(); found {
		return res
	}

	if !e.executing {
		return ResultNoEvent
	}

	return e.scanTerminal()
}

// ParseEvent consumes the first line of the event identified by code and
// returns its decoded payload.
//
// Only the event line, from its token through the line terminator, is
// removed; bytes received before it stay buffered in order. When the parser
// rejects the payload, the line is still consumed and the returned error
// wraps ErrUnknownFormat; the returned Event then carries the raw payload.
func (e *Engine) ParseEvent(code Result) (Event, error) {
	spec, ok := e.lookup(code)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, code)
	}

	pos, ok := e.buf.IndexOf(spec.Token, 0)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, spec.Token)
	}

	start := pos + len(spec.Token)
	end, ok := e.buf.IndexOf(crlf, start)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrEventIncomplete, spec.Token)
	}

	ev := Event{
		Code:    code,
		Payload: strings.TrimLeft(e.buf.Text(start, end), " "),
	}
	e.buf.Cut(pos, end+len(crlf))

	if spec.Parser == nil {
		e.metrics.incEventCount()
		return ev, nil
	}

	v, err := spec.Parser(ev.Payload)
	if err != nil {
		e.metrics.incEventErrCount()
		e.logger.Warn("unrecognized event payload", "token", spec.Token, "payload", ev.Payload)
		if !errors.Is(err, ErrUnknownFormat) {
			err = fmt.Errorf("%w: %w", ErrUnknownFormat, err)
		}

		return ev, err
	}
	ev.Value = v
	e.metrics.incEventCount()

	return ev, nil
}

// Reset abandons the command in flight and clears the buffer.
func (e *Engine) Reset() {
	e.executing = false
	e.buf.Clear()
}

func (e *Engine) lookup(code Result) (EventSpec, bool) {
	for _, ev := range e.events {
		if ev.Code == code {
			return ev, true
		}
	}

	return EventSpec{}, false
}

// drain moves every available byte into the buffer, evicting the oldest
// byte when it is full.
func (e *Engine) drain() {
	n := e.transport.Available()
	if n <= 0 {
		return
	}

	read, evicted := 0, 0
	for ; read < n; read++ {
		b, err := e.transport.ReadByte()
		if err != nil {
			break
		}
		if e.buf.Full() {
			_, _ = e.buf.PopFirst()
			evicted++
		}
		e.buf.Append(b)
	}

	e.metrics.addRecvBytes(read)
	if evicted > 0 {
		e.metrics.addEvictedBytes(evicted)
		e.logger.Warn("receive buffer full, oldest bytes dropped", "evicted", evicted)
	}
}

func (e *Engine) scanEvents() (Result, bool) {
	for _, ev := range e.events {
		pos, ok := e.buf.IndexOf(ev.Token, 0)
		if !ok {
			continue
		}
		if _, ok := e.buf.IndexOf(crlf, pos+len(ev.Token)); !ok {
			return ResultPending, true
		}

		return ev.Code, true
	}

	return 0, false
}

func (e *Engine) scanTerminal() Result {
	bestPos, bestEnd := -1, 0
	var best terminal

	for _, term := range terminals {
		pos, ok := e.buf.IndexOf(term.token, 0)
		if !ok || (bestPos >= 0 && pos >= bestPos) {
			continue
		}

		end := pos + len(term.token)
		if term.line {
			eol, ok := e.buf.IndexOf(crlf, end)
			if !ok {
				continue
			}
			end = eol + len(crlf)
		}
		bestPos, bestEnd, best = pos, end, term
	}

	if bestPos < 0 {
		return ResultPending
	}

	respEnd := bestPos
	if best.line {
		respEnd = bestEnd
	}
	e.lastResponse = strings.TrimSpace(e.buf.Text(0, respEnd))
	e.buf.PopFirsts(bestEnd)

	e.executing = false
	e.metrics.incResult(best.result)
	e.logger.Debug("command done", "result", best.result, "elapsed_ms", clock.Elapsed(e.clock.Millis(), e.execStart))

	return best.result
}
