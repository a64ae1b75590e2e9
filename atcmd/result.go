package atcmd

import "strconv"

// Result is the classification returned by Engine.CheckStatus.
//
// Protocol outcomes are Results rather than errors: a modem answering ERROR
// is a normal outcome the caller acts on. Codes from 20 upwards identify
// unsolicited events.
type Result int8

const (
	// ResultPending means more bytes are needed.
	ResultPending Result = iota + 10
	// ResultOK means the command in flight completed with OK.
	ResultOK
	// ResultError means the command in flight completed with ERROR,
	// +CME ERROR or +CMS ERROR.
	ResultError
	// ResultNoEvent means no command is in flight and nothing was recognized.
	ResultNoEvent
	// ResultTimeout means the command in flight got no terminal line in time.
	ResultTimeout
)

const (
	// EventCFUN is a "+CFUN:" functionality level line.
	EventCFUN Result = iota + 20
	// EventCPIN is a "+CPIN:" SIM status line.
	EventCPIN
	// EventDTMF is a "+DTMF:" detected tone line.
	EventDTMF
	// EventCGREG is a "+CGREG:" packet network registration line.
	EventCGREG
)

// IsEvent reports whether r identifies an event.
func (r Result) IsEvent() bool {
	return r >= EventCFUN
}

// IsTerminal reports whether r ends the command in flight.
func (r Result) IsTerminal() bool {
	return r == ResultOK || r == ResultError || r == ResultTimeout
}

func (r Result) String() string {
	switch r {
	case ResultPending:
		return "PENDING"
	case ResultOK:
		return "OK"
	case ResultError:
		return "ERROR"
	case ResultNoEvent:
		return "NO_EVENT"
	case ResultTimeout:
		return "TIMEOUT"
	case EventCFUN:
		return "EVT_CFUN"
	case EventCPIN:
		return "EVT_CPIN"
	case EventDTMF:
		return "EVT_DTMF"
	case EventCGREG:
		return "EVT_CGREG"
	}
	if r.IsEvent() {
		return "EVT_" + strconv.Itoa(int(r))
	}

	return "Result(" + strconv.Itoa(int(r)) + ")"
}
