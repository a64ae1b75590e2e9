// Package session puts a goroutine-safe front end on top of atcmd.Engine.
//
// A Session owns one engine and runs it on a single loop goroutine. Callers
// submit commands with Exec from any goroutine; the loop executes them one
// at a time, in submission order, and polls the engine in between so that
// unsolicited events are delivered to subscribers even when nobody is
// waiting for a reply.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/internal/pool"
	"github.com/arloliu/go-atcmd/internal/task"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/transport"
)

var (
	// ErrNotOpened is returned by Exec before Open or after Close.
	ErrNotOpened = errors.New("session: not opened")
	// ErrClosed is returned to commands still queued or running at Close.
	ErrClosed = errors.New("session: closed")
	// ErrBusy is returned when the command queue stayed full for the
	// submit timeout.
	ErrBusy = errors.New("session: command queue full")
	// ErrCommandFailed is returned by Reply.Err for ResultError.
	ErrCommandFailed = errors.New("session: command failed")
	// ErrTimeout is returned by Reply.Err for ResultTimeout.
	ErrTimeout = errors.New("session: command timed out")
)

// maxIdleEvents bounds how many events one idle poll consumes so that a
// chatty modem cannot starve queued commands.
const maxIdleEvents = 16

// Reply is the outcome of a command.
type Reply struct {
	Result atcmd.Result
	// Response is the information text received before the terminal line.
	Response string
	// Events are the event lines consumed while the command was in flight,
	// such as the +CPIN line answering AT+CPIN?.
	Events []atcmd.Event
}

// Err converts a non-OK Result into an error.
func (r *Reply) Err() error {
	switch r.Result {
	case atcmd.ResultOK:
		return nil
	case atcmd.ResultTimeout:
		return ErrTimeout
	case atcmd.ResultError:
		if r.Response != "" {
			return fmt.Errorf("%w: %s", ErrCommandFailed, r.Response)
		}
		return ErrCommandFailed
	default:
		return fmt.Errorf("%w: unexpected result %s", ErrCommandFailed, r.Result)
	}
}

// Event returns the first event with the given code.
func (r *Reply) Event(code atcmd.Result) (atcmd.Event, bool) {
	for _, ev := range r.Events {
		if ev.Code == code {
			return ev, true
		}
	}

	return atcmd.Event{}, false
}

// EventHandler receives events that arrived while no command was in flight.
// Handlers run on the session loop and must not block or call Exec.
type EventHandler func(ev atcmd.Event)

type execResult struct {
	reply *Reply
	err   error
}

type request struct {
	ctx  context.Context //nolint:containedctx
	cmd  string
	done chan execResult
}

// Session serializes access to one modem.
type Session struct {
	id        uuid.UUID
	cfg       config
	engine    *atcmd.Engine
	logger    logger.Logger
	tasks     *task.Manager
	state     atomicState
	// submitMu orders Exec enqueues before Close leaves the opened state
	submitMu  sync.RWMutex
	requests  chan *request
	handlers  *xsync.MapOf[uint64, EventHandler]
	handlerID atomic.Uint64
}

// New creates a closed Session on t. t is borrowed; Close does not close it.
func New(ctx context.Context, t transport.Transport, opts ...Option) (*Session, error) {
	cfg := config{
		pollInterval:  DefaultPollInterval,
		queueSize:     DefaultQueueSize,
		submitTimeout: DefaultSubmitTimeout,
		logger:        logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(&cfg); err != nil {
			return nil, err
		}
	}

	id := uuid.New()
	l := cfg.logger.With("session", id.String())

	engineOpts := append([]atcmd.Option{atcmd.WithLogger(l)}, cfg.engineOpts...)
	eng, err := atcmd.New(t, engineOpts...)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:       id,
		cfg:      cfg,
		engine:   eng,
		logger:   l,
		tasks:    task.NewManager(ctx, l),
		requests: make(chan *request, cfg.queueSize),
		handlers: xsync.NewMapOf[uint64, EventHandler](),
	}, nil
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string { return s.id.String() }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state.Get() }

// Metrics returns the engine counters. They are safe to read at any time.
func (s *Session) Metrics() *atcmd.Metrics { return s.engine.Metrics() }

// Open starts the session loop.
func (s *Session) Open() error {
	if !s.state.ToOpening() {
		return fmt.Errorf("session: cannot open in state %s", s.state.Get())
	}

	if err := s.tasks.Go("session-loop", s.loop); err != nil {
		s.state.Reset()
		return err
	}
	s.state.ToOpened()
	s.logger.Info("session opened")

	return nil
}

// Close stops the loop. Commands still queued or running fail with ErrClosed.
func (s *Session) Close() error {
	s.submitMu.Lock()
	closing := s.state.ToClosing()
	s.submitMu.Unlock()

	if !closing {
		if s.state.Get() == StateClosed {
			return nil
		}
		return fmt.Errorf("session: cannot close in state %s", s.state.Get())
	}

	s.tasks.Stop()
	s.tasks.Wait()
	s.failQueued()
	s.state.ToClosed()
	s.logger.Info("session closed")

	return nil
}

// Subscribe registers h for idle-time events and returns a function that
// removes it.
func (s *Session) Subscribe(h EventHandler) (cancel func()) {
	id := s.handlerID.Add(1)
	s.handlers.Store(id, h)

	return func() { s.handlers.Delete(id) }
}

// Exec queues cmd and waits for its outcome. cmd must carry its own line
// terminator, see the atcmd.Cmd* formatters.
//
// A modem answering ERROR or not answering in time is not an error here;
// check Reply.Result or Reply.Err. Cancelling ctx abandons the command.
func (s *Session) Exec(ctx context.Context, cmd string) (*Reply, error) {
	req := &request{ctx: ctx, cmd: cmd, done: make(chan execResult, 1)}
	if err := s.submit(ctx, req); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-req.done:
		return res.reply, res.err
	}
}

// submit enqueues req while the session is opened. Close cannot leave the
// opened state until submit returns, so an accepted request is always either
// run by the loop or failed by failQueued.
func (s *Session) submit(ctx context.Context, req *request) error {
	s.submitMu.RLock()
	defer s.submitMu.RUnlock()

	if !s.state.IsOpened() {
		return ErrNotOpened
	}

	timer := pool.GetTimer(s.cfg.submitTimeout)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrBusy
	case s.requests <- req:
		return nil
	}
}

func (s *Session) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.requests:
			s.run(ctx, req, ticker)
		case <-ticker.C:
			s.pollIdle()
		}
	}
}

func (s *Session) run(ctx context.Context, req *request, ticker *time.Ticker) {
	if err := req.ctx.Err(); err != nil {
		req.done <- execResult{err: err}
		return
	}

	// deliver what arrived since the last tick; Exec clears the buffer
	s.pollIdle()

	if err := s.engine.ExecString(req.cmd); err != nil {
		req.done <- execResult{err: err}
		return
	}

	reply := &Reply{}
	for {
		res := s.engine.Poll()
		switch {
		case res.IsEvent():
			ev, err := s.engine.ParseEvent(res)
			if err != nil && !errors.Is(err, atcmd.ErrUnknownFormat) {
				s.logger.Warn("event not consumed", "result", res, "error", err)
				continue
			}
			reply.Events = append(reply.Events, ev)

			continue

		case res.IsTerminal():
			reply.Result = res
			reply.Response = s.engine.LastResponse()
			req.done <- execResult{reply: reply}

			return
		}

		select {
		case <-ctx.Done():
			s.engine.Reset()
			req.done <- execResult{err: ErrClosed}

			return
		case <-req.ctx.Done():
			s.engine.Reset()
			s.logger.Debug("command abandoned", "error", req.ctx.Err())
			req.done <- execResult{err: req.ctx.Err()}

			return
		case <-ticker.C:
		}
	}
}

// pollIdle delivers complete event lines to subscribers and drops any other
// complete line.
func (s *Session) pollIdle() {
	for i := 0; i < maxIdleEvents; i++ {
		res := s.engine.Poll()
		if !res.IsEvent() {
			if res == atcmd.ResultNoEvent {
				s.discardLines()
			}

			return
		}

		ev, err := s.engine.ParseEvent(res)
		if err != nil {
			s.logger.Warn("dropped event", "result", res, "error", err)
			continue
		}
		s.broadcast(ev)
	}
}

func (s *Session) discardLines() {
	buf := s.engine.Buffer()

	last := -1
	for pos, ok := buf.IndexOf("\r\n", 0); ok; pos, ok = buf.IndexOf("\r\n", pos+1) {
		last = pos
	}
	if last < 0 {
		return
	}

	if text := buf.Text(0, last); len(text) > 0 {
		s.logger.Debug("discarded unsolicited text", "text", text)
	}
	buf.PopFirsts(last + 2)
}

func (s *Session) broadcast(ev atcmd.Event) {
	s.handlers.Range(func(_ uint64, h EventHandler) bool {
		s.callHandler(h, ev)
		return true
	})
}

func (s *Session) callHandler(h EventHandler, ev atcmd.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in event handler", "event", ev.Code, "panic", r)
		}
	}()

	h(ev)
}

func (s *Session) failQueued() {
	for {
		select {
		case req := <-s.requests:
			req.done <- execResult{err: ErrClosed}
		default:
			return
		}
	}
}
