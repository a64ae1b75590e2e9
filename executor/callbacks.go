package executor

import "github.com/arloliu/go-atcmd/ringbuf"

// Callbacks receives the outcome of every Tick. All methods run on the
// goroutine calling Tick and may consume bytes from the buffer.
type Callbacks interface {
	// Executing is called while a command is in flight. It returns false
	// once the command completed; it is expected to consume the reply.
	Executing(buf *ringbuf.Line) bool
	// OnTimeout is called once when the command in flight timed out.
	OnTimeout(buf *ringbuf.Line)
	// OnBufferOverflow is called while a command is in flight and the
	// buffer is full. If the buffer is still full afterwards the oldest
	// byte is dropped.
	OnBufferOverflow(buf *ringbuf.Line)
	// OnEvent is called with data that arrived while no command was in
	// flight.
	OnEvent(buf *ringbuf.Line)
}

// CallbackFuncs adapts plain functions to Callbacks. Nil fields are no-ops;
// a nil ExecutingFunc keeps the command in flight until it times out.
type CallbackFuncs struct {
	ExecutingFunc func(buf *ringbuf.Line) bool
	TimeoutFunc   func(buf *ringbuf.Line)
	OverflowFunc  func(buf *ringbuf.Line)
	EventFunc     func(buf *ringbuf.Line)
}

var _ Callbacks = CallbackFuncs{}

func (c CallbackFuncs) Executing(buf *ringbuf.Line) bool {
	if c.ExecutingFunc == nil {
		return true
	}
	return c.ExecutingFunc(buf)
}

func (c CallbackFuncs) OnTimeout(buf *ringbuf.Line) {
	if c.TimeoutFunc != nil {
		c.TimeoutFunc(buf)
	}
}

func (c CallbackFuncs) OnBufferOverflow(buf *ringbuf.Line) {
	if c.OverflowFunc != nil {
		c.OverflowFunc(buf)
	}
}

func (c CallbackFuncs) OnEvent(buf *ringbuf.Line) {
	if c.EventFunc != nil {
		c.EventFunc(buf)
	}
}
