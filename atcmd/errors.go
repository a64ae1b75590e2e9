package atcmd

import "errors"

var (
	// ErrAlreadyRunning is returned by Exec while a command is in flight.
	ErrAlreadyRunning = errors.New("atcmd: command already running")

	// ErrWriting is returned by Exec when the transport failed or accepted
	// fewer bytes than the command holds.
	ErrWriting = errors.New("atcmd: transport write failed")

	// ErrCommandTooLong is returned by Exec when the command exceeds the
	// configured maximum command length.
	ErrCommandTooLong = errors.New("atcmd: command too long")

	// ErrUnknownEvent is returned by ParseEvent for a code that is not in
	// the event table.
	ErrUnknownEvent = errors.New("atcmd: unknown event")

	// ErrEventNotFound is returned by ParseEvent when the event's token is
	// not in the buffer.
	ErrEventNotFound = errors.New("atcmd: event not found in buffer")

	// ErrEventIncomplete is returned by ParseEvent when the event line has
	// no terminator yet. Nothing is consumed.
	ErrEventIncomplete = errors.New("atcmd: event line incomplete")

	// ErrUnknownFormat is returned by ParseEvent when the parser did not
	// recognize the payload. The line is consumed anyway.
	ErrUnknownFormat = errors.New("atcmd: unknown event format")
)
