package atcmd

import "sync/atomic"

// Metrics contains atomic counters for an Engine.
// Each counter can be used as the value of a prometheus CounterFunc.
type Metrics struct {
	// CommandCount indicates the number of commands written.
	CommandCount atomic.Uint64
	// WriteErrCount indicates the number of rejected writes.
	WriteErrCount atomic.Uint64
	// OKCount indicates the number of commands completed with OK.
	OKCount atomic.Uint64
	// ErrorCount indicates the number of commands completed with an error line.
	ErrorCount atomic.Uint64
	// TimeoutCount indicates the number of commands that timed out.
	TimeoutCount atomic.Uint64
	// EventCount indicates the number of event lines consumed.
	EventCount atomic.Uint64
	// EventErrCount indicates the number of event lines with an unknown format.
	EventErrCount atomic.Uint64
	// RecvBytes indicates the number of bytes drained from the transport.
	RecvBytes atomic.Uint64
	// EvictedBytes indicates the number of bytes dropped because the buffer was full.
	EvictedBytes atomic.Uint64
}

func (m *Metrics) incCommandCount()  { m.CommandCount.Add(1) }
func (m *Metrics) incWriteErrCount() { m.WriteErrCount.Add(1) }
func (m *Metrics) incEventCount()    { m.EventCount.Add(1) }
func (m *Metrics) incEventErrCount() { m.EventErrCount.Add(1) }

func (m *Metrics) addRecvBytes(n int)    { m.RecvBytes.Add(uint64(n)) }
func (m *Metrics) addEvictedBytes(n int) { m.EvictedBytes.Add(uint64(n)) }

func (m *Metrics) incResult(r Result) {
	switch r {
	case ResultOK:
		m.OKCount.Add(1)
	case ResultError:
		m.ErrorCount.Add(1)
	case ResultTimeout:
		m.TimeoutCount.Add(1)
	default:
	}
}
