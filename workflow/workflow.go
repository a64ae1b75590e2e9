// Package workflow composes AT commands into cooperative tasks.
//
// A Task is a small state machine over an atcmd.Engine. Each call to Poll
// does a bounded amount of non-blocking work and reports whether the task
// has finished. Several tasks may share one engine: a task that finds
// another command in flight simply waits its turn.
//
//	m := &workflow.Modem{Engine: eng, Sink: onEvent}
//	sched := workflow.NewScheduler(m.SerialCheck(), m.PINUnlock("1234"))
//	if err := sched.Run(ctx, 10*time.Millisecond); err != nil {
//	    return err
//	}
package workflow

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/logger"
)

var (
	// ErrNoResponse is returned when the serial check runs out of attempts.
	ErrNoResponse = errors.New("workflow: modem not responding")
	// ErrCommandFailed is returned when a command ends with ERROR or times out.
	ErrCommandFailed = errors.New("workflow: command failed")
	// ErrMissingStatus is returned when a query completes without the
	// status line it asked for.
	ErrMissingStatus = errors.New("workflow: status line missing")
	// ErrPUKRequired is returned when the SIM is blocked and needs its PUK.
	ErrPUKRequired = errors.New("workflow: SIM requires PUK")
)

// Task is a cooperative unit of modem work.
type Task interface {
	// Poll advances the task. It returns true once the task has finished,
	// successfully or with an error; a finished task must not be polled again.
	Poll() (done bool, err error)
}

// EventSink receives events that show up while a task waits for a reply
// but that the task did not ask for.
type EventSink func(ev atcmd.Event)

// Modem is the shared context of the tasks created from it.
type Modem struct {
	Engine *atcmd.Engine
	// Sink is optional.
	Sink EventSink
	// Logger defaults to logger.GetLogger().
	Logger logger.Logger
}

func (m *Modem) log() logger.Logger {
	if m.Logger == nil {
		return logger.GetLogger()
	}
	return m.Logger
}

func (m *Modem) forward(res atcmd.Result) {
	ev, err := m.Engine.ParseEvent(res)
	if err != nil {
		m.log().Warn("workflow: foreign event dropped", "result", res, "error", err)
		return
	}
	if m.Sink != nil {
		m.Sink(ev)
	}
}

// call drives one command through the engine.
type call struct {
	m    *Modem
	cmd  string
	sent bool
}

// poll sends the command on first use and then polls for its outcome. It
// returns ResultPending while waiting, one of want when such an event shows
// up, or the terminal result. Other events go to the sink.
func (c *call) poll(want ...atcmd.Result) (atcmd.Result, error) {
	if !c.sent {
		err := c.m.Engine.ExecString(c.cmd)
		if errors.Is(err, atcmd.ErrAlreadyRunning) {
			return atcmd.ResultPending, nil
		}
		if err != nil {
			return atcmd.ResultError, err
		}
		c.sent = true
		c.m.log().Debug("workflow: command sent", "cmd", c.name())
	}

	res := c.m.Engine.Poll()
	switch {
	case res.IsEvent():
		if slices.Contains(want, res) {
			return res, nil
		}
		c.m.forward(res)

		return atcmd.ResultPending, nil

	case res.IsTerminal():
		c.sent = false
	}

	return res, nil
}

func (c *call) name() string {
	return strings.TrimRight(c.cmd, "\r\n")
}

func (c *call) failed(res atcmd.Result) error {
	if resp := c.m.Engine.LastResponse(); resp != "" {
		return fmt.Errorf("%w: %s: %s (%s)", ErrCommandFailed, c.name(), res, resp)
	}
	return fmt.Errorf("%w: %s: %s", ErrCommandFailed, c.name(), res)
}
