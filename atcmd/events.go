package atcmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Event tokens of the default table.
const (
	TokenCFUN  = "+CFUN:"
	TokenCPIN  = "+CPIN:"
	TokenDTMF  = "+DTMF:"
	TokenCGREG = "+CGREG:"
)

// Parser decodes the payload of an event line. payload is the text after
// the token and any leading spaces, without the line terminator.
//
// A parser must not keep payload beyond the call. It returns an error when
// it does not recognize the payload shape.
type Parser func(payload string) (any, error)

// EventSpec is one entry of the event table.
type EventSpec struct {
	// Token is the literal prefix that identifies the event, e.g. "+CPIN:".
	Token string
	// Code is the Result reported by CheckStatus. It must be an event code.
	Code Result
	// Parser decodes the payload. nil leaves Event.Value empty.
	Parser Parser
}

// Event is a consumed event line.
type Event struct {
	Code Result
	// Payload is the raw payload text.
	Payload string
	// Value is the parser result: FunctionLevel, SIMStatus, DTMFTone,
	// RegistrationStatus, or whatever a custom parser returns.
	Value any
}

// DefaultEvents returns a fresh copy of the built-in event table, in
// priority order.
func DefaultEvents() []EventSpec {
	return []EventSpec{
		{Token: TokenCFUN, Code: EventCFUN, Parser: ParseFunctionLevel},
		{Token: TokenCPIN, Code: EventCPIN, Parser: ParseSIMStatus},
		{Token: TokenDTMF, Code: EventDTMF, Parser: ParseDTMFTone},
		{Token: TokenCGREG, Code: EventCGREG, Parser: ParseRegistrationStatus},
	}
}

func validateEvents(events []EventSpec) error {
	if len(events) == 0 {
		return errors.New("atcmd: event table must not be empty")
	}

	seen := make(map[Result]struct{}, len(events))
	for _, ev := range events {
		if ev.Token == "" {
			return errors.New("atcmd: event token must not be empty")
		}
		if !ev.Code.IsEvent() {
			return fmt.Errorf("atcmd: event %q has non-event code %d", ev.Token, ev.Code)
		}
		if _, dup := seen[ev.Code]; dup {
			return fmt.Errorf("atcmd: duplicate event code %s", ev.Code)
		}
		seen[ev.Code] = struct{}{}
	}

	return nil
}

// FunctionLevel is the phone functionality reported by +CFUN.
type FunctionLevel int8

const (
	FunctionMinimal  FunctionLevel = 0
	FunctionFull     FunctionLevel = 1
	FunctionDisabled FunctionLevel = 4 // flight mode
)

func (f FunctionLevel) String() string {
	switch f {
	case FunctionMinimal:
		return "minimal"
	case FunctionFull:
		return "full"
	case FunctionDisabled:
		return "disabled"
	default:
		return "FunctionLevel(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseFunctionLevel parses "1" or "1,0" style +CFUN payloads.
func ParseFunctionLevel(payload string) (any, error) {
	field, _, _ := strings.Cut(payload, ",")
	switch strings.TrimSpace(field) {
	case "0":
		return FunctionMinimal, nil
	case "1":
		return FunctionFull, nil
	case "4":
		return FunctionDisabled, nil
	}

	return nil, fmt.Errorf("%w: functionality level %q", ErrUnknownFormat, payload)
}

// SIMStatus is the SIM state reported by +CPIN.
type SIMStatus int8

const (
	SIMReady SIMStatus = iota
	SIMPIN
	SIMPUK
)

func (s SIMStatus) String() string {
	switch s {
	case SIMReady:
		return "READY"
	case SIMPIN:
		return "SIM PIN"
	case SIMPUK:
		return "SIM PUK"
	default:
		return "SIMStatus(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSIMStatus parses +CPIN payloads by prefix.
func ParseSIMStatus(payload string) (any, error) {
	switch {
	case strings.HasPrefix(payload, "READY"):
		return SIMReady, nil
	case strings.HasPrefix(payload, "SIM PIN"):
		return SIMPIN, nil
	case strings.HasPrefix(payload, "SIM PUK"):
		return SIMPUK, nil
	}

	return nil, fmt.Errorf("%w: SIM status %q", ErrUnknownFormat, payload)
}

// DTMFTone is one detected DTMF key: 0-9, *, # or A-D.
type DTMFTone byte

func (t DTMFTone) String() string { return string(rune(t)) }

// ParseDTMFTone parses a single-key +DTMF payload.
func ParseDTMFTone(payload string) (any, error) {
	if payload == "" || !strings.ContainsRune("0123456789*#ABCD", rune(payload[0])) {
		return nil, fmt.Errorf("%w: DTMF tone %q", ErrUnknownFormat, payload)
	}

	return DTMFTone(payload[0]), nil
}

// RegistrationStatus is the packet domain registration state from +CGREG.
type RegistrationStatus int8

const (
	RegNotRegistered RegistrationStatus = iota
	RegHome
	RegSearching
	RegDenied
	RegUnknown
	RegRoaming
)

func (r RegistrationStatus) String() string {
	switch r {
	case RegNotRegistered:
		return "not registered"
	case RegHome:
		return "registered, home"
	case RegSearching:
		return "searching"
	case RegDenied:
		return "denied"
	case RegUnknown:
		return "unknown"
	case RegRoaming:
		return "registered, roaming"
	default:
		return "RegistrationStatus(" + strconv.Itoa(int(r)) + ")"
	}
}

// Registered reports whether the module is attached, home or roaming.
func (r RegistrationStatus) Registered() bool {
	return r == RegHome || r == RegRoaming
}

// ParseRegistrationStatus parses both +CGREG shapes: the read response
// "<n>,<stat>[,<lac>,<ci>]" and the unsolicited "<stat>[,<lac>,<ci>]".
// Location fields are quoted, which tells the two apart.
func ParseRegistrationStatus(payload string) (any, error) {
	fields := strings.Split(payload, ",")

	stat := fields[0]
	if len(fields) > 1 && !strings.HasPrefix(strings.TrimSpace(fields[1]), `"`) {
		stat = fields[1]
	}

	v, err := strconv.Atoi(strings.TrimSpace(stat))
	if err != nil || v < int(RegNotRegistered) || v > int(RegRoaming) {
		return nil, fmt.Errorf("%w: registration status %q", ErrUnknownFormat, payload)
	}

	return RegistrationStatus(v), nil
}
