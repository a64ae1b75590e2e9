package workflow

import (
	"fmt"

	"github.com/arloliu/go-atcmd/atcmd"
)

// SerialCheckAttempts is how many times SerialCheck sends AT before giving up.
const SerialCheckAttempts = 3

// SerialCheck sends AT until the modem answers OK.
type SerialCheck struct {
	call     call
	attempts int
	done     bool
}

// SerialCheck returns a task that verifies the serial link.
func (m *Modem) SerialCheck() *SerialCheck {
	return &SerialCheck{call: call{m: m, cmd: atcmd.CmdAT()}}
}

// Attempts returns the number of AT commands that completed without OK.
func (t *SerialCheck) Attempts() int { return t.attempts }

func (t *SerialCheck) Poll() (bool, error) {
	if t.done {
		return true, nil
	}

	res, err := t.call.poll()
	if err == nil && res == atcmd.ResultPending {
		return false, nil
	}
	if err == nil && res == atcmd.ResultOK {
		t.done = true
		return true, nil
	}

	t.attempts++
	t.call.m.log().Debug("workflow: serial check failed", "attempt", t.attempts, "result", res, "error", err)
	if t.attempts < SerialCheckAttempts {
		return false, nil
	}

	if err != nil {
		return true, fmt.Errorf("%w after %d attempts: %w", ErrNoResponse, t.attempts, err)
	}
	return true, fmt.Errorf("%w after %d attempts: last result %s", ErrNoResponse, t.attempts, res)
}

// CommandTask checks the serial link and then runs one command that must
// answer OK.
type CommandTask struct {
	check   *SerialCheck
	call    call
	checked bool
}

// Command returns a task running cmd after a serial check.
func (m *Modem) Command(cmd string) *CommandTask {
	return &CommandTask{check: m.SerialCheck(), call: call{m: m, cmd: cmd}}
}

// EchoMode switches command echo on or off.
func (m *Modem) EchoMode(on bool) *CommandTask {
	return m.Command(atcmd.CmdEcho(on))
}

// SetFunctionality changes the phone functionality level without a reset.
func (m *Modem) SetFunctionality(level atcmd.FunctionLevel) *CommandTask {
	return m.Command(atcmd.CmdCFUNWrite(level, false))
}

func (t *CommandTask) Poll() (bool, error) {
	if !t.checked {
		done, err := t.check.Poll()
		if !done || err != nil {
			return done, err
		}
		t.checked = true

		return false, nil
	}

	res, err := t.call.poll()
	switch {
	case err != nil:
		return true, err
	case res == atcmd.ResultPending:
		return false, nil
	case res == atcmd.ResultOK:
		return true, nil
	default:
		return true, t.call.failed(res)
	}
}

type pinState uint8

const (
	pinCheckSerial pinState = iota
	pinQuery
	pinQueryEnd
	pinEnter
	pinDone
)

// PINUnlock brings the SIM to READY, entering the PIN when asked for one.
type PINUnlock struct {
	m      *Modem
	state  pinState
	check  *SerialCheck
	query  call
	enter  call
	status atcmd.SIMStatus
	seen   bool
	// parseErr is reported once the query has completed
	parseErr error
}

// PINUnlock returns a task that unlocks the SIM with pin if needed.
func (m *Modem) PINUnlock(pin string) *PINUnlock {
	return &PINUnlock{
		m:     m,
		check: m.SerialCheck(),
		query: call{m: m, cmd: atcmd.CmdCPINRead()},
		enter: call{m: m, cmd: atcmd.CmdCPINWrite(pin)},
	}
}

func (t *PINUnlock) Poll() (bool, error) {
	switch t.state {
	case pinCheckSerial:
		done, err := t.check.Poll()
		if !done || err != nil {
			return done, err
		}
		t.state = pinQuery

	case pinQuery:
		res, err := t.query.poll(atcmd.EventCPIN)
		switch {
		case err != nil:
			return true, err
		case res == atcmd.ResultPending:
		case res == atcmd.EventCPIN:
			ev, err := t.m.Engine.ParseEvent(res)
			if err == nil {
				t.status, t.seen = ev.Value.(atcmd.SIMStatus)
			}
			t.parseErr = err
			t.state = pinQueryEnd
		case res == atcmd.ResultOK:
			return true, fmt.Errorf("%w: %s", ErrMissingStatus, t.query.name())
		default:
			return true, t.query.failed(res)
		}

	case pinQueryEnd:
		res, err := t.query.poll()
		switch {
		case err != nil:
			return true, err
		case res == atcmd.ResultPending:
			return false, nil
		case res != atcmd.ResultOK:
			return true, t.query.failed(res)
		}

		switch {
		case t.parseErr != nil:
			return true, t.parseErr
		case !t.seen:
			return true, fmt.Errorf("%w: %s", ErrMissingStatus, t.query.name())
		case t.status == atcmd.SIMReady:
			t.state = pinDone
			return true, nil
		case t.status == atcmd.SIMPUK:
			return true, ErrPUKRequired
		}
		t.state = pinEnter

	case pinEnter:
		res, err := t.enter.poll()
		if err == nil && res == atcmd.ResultPending {
			return false, nil
		}
		if err != nil {
			return true, err
		}
		if res != atcmd.ResultOK {
			return true, t.enter.failed(res)
		}
		t.state = pinDone

		return true, nil

	case pinDone:
		return true, nil
	}

	return false, nil
}
