package session

import "sync/atomic"

// State is the lifecycle state of a Session.
type State uint32

const (
	StateClosed State = iota
	StateOpening
	StateOpened
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpening:
		return "Opening"
	case StateOpened:
		return "Opened"
	case StateClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

type atomicState struct {
	state atomic.Uint32
}

func (st *atomicState) Get() State {
	return State(st.state.Load())
}

func (st *atomicState) IsOpened() bool {
	return st.Get() == StateOpened
}

func (st *atomicState) transit(from, to State) bool {
	return st.state.CompareAndSwap(uint32(from), uint32(to))
}

func (st *atomicState) ToOpening() bool { return st.transit(StateClosed, StateOpening) }
func (st *atomicState) ToOpened() bool  { return st.transit(StateOpening, StateOpened) }
func (st *atomicState) ToClosing() bool { return st.transit(StateOpened, StateClosing) }
func (st *atomicState) ToClosed() bool  { return st.transit(StateClosing, StateClosed) }

// Reset forces the closed state after a failed open.
func (st *atomicState) Reset() { st.state.Store(uint32(StateClosed)) }
