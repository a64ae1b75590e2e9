package scenario

import (
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/clock"
	"github.com/arloliu/go-atcmd/transport"
)

// Entry is one line of a trace.
type Entry struct {
	Seq     int
	Op      string
	Arg     string
	Outcome string
	Detail  string
	// Failed is set when the step's expectation did not hold.
	Failed bool
}

func (e Entry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%03d %s", e.Seq, e.Op)
	if e.Arg != "" {
		sb.WriteString(" " + e.Arg)
	}
	sb.WriteString(" -> " + e.Outcome)
	if e.Detail != "" {
		sb.WriteString(" (" + e.Detail + ")")
	}
	if e.Failed {
		sb.WriteString(" FAILED")
	}

	return sb.String()
}

// Result is the outcome of a replay.
type Result struct {
	Name     string
	Trace    []Entry
	Failures []string
	Metrics  string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// Text renders the trace as stored in golden files.
func (r *Result) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario %s\n", r.Name)
	for _, e := range r.Trace {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	sb.WriteString(r.Metrics)
	sb.WriteByte('\n')

	return sb.String()
}

// Runner replays scenarios.
type Runner struct {
	// EngineOptions are applied after the scenario's own settings.
	EngineOptions []atcmd.Option
	// OnStep, if set, is called after every step.
	OnStep func(e Entry)
}

// Run replays sc with a default Runner.
func Run(sc *Scenario) (*Result, error) {
	return (&Runner{}).Run(sc)
}

type replay struct {
	eng *atcmd.Engine
	mem *transport.Memory
	clk *clock.Manual
}

// Run replays sc. Failed expectations are reported in the Result; the
// returned error is reserved for scenarios that cannot be replayed.
func (r *Runner) Run(sc *Scenario) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	rp := &replay{mem: transport.NewMemory(), clk: clock.NewManual(sc.Engine.ClockStart)}
	if sc.Engine.WriteLimit > 0 {
		rp.mem.SetWriteLimit(sc.Engine.WriteLimit)
	}

	opts := []atcmd.Option{atcmd.WithClock(rp.clk)}
	if sc.Engine.TimeoutMS > 0 {
		opts = append(opts, atcmd.WithTimeout(time.Duration(sc.Engine.TimeoutMS)*time.Millisecond))
	}
	if sc.Engine.BufferSize > 0 {
		opts = append(opts, atcmd.WithBufferSize(sc.Engine.BufferSize))
	}
	opts = append(opts, r.EngineOptions...)

	eng, err := atcmd.New(rp.mem, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, sc.Name, err)
	}
	rp.eng = eng

	res := &Result{Name: sc.Name}
	for i := range sc.Steps {
		step := &sc.Steps[i]
		e := rp.step(step)
		e.Seq = i + 1

		if step.Expect != nil && *step.Expect != e.Outcome {
			e.Failed = true
			res.Failures = append(res.Failures,
				fmt.Sprintf("step %d: %s: expected %q, got %q", e.Seq, e.Op, *step.Expect, e.Outcome))
		}

		res.Trace = append(res.Trace, e)
		if r.OnStep != nil {
			r.OnStep(e)
		}
	}
	res.Metrics = formatMetrics(eng.Metrics())

	return res, nil
}

func (rp *replay) step(s *Step) Entry {
	switch {
	case s.Exec != nil:
		e := Entry{Op: opExec, Arg: fmt.Sprintf("%q", *s.Exec), Outcome: "sent"}
		if err := rp.eng.ExecString(*s.Exec + "\r\n"); err != nil {
			e.Outcome, e.Detail = "error", err.Error()
		}

		return e

	case s.Feed != nil:
		rp.mem.Feed(*s.Feed)
		return Entry{Op: opFeed, Arg: fmt.Sprintf("%q", *s.Feed), Outcome: fmt.Sprintf("%d bytes", len(*s.Feed))}

	case s.AdvanceMS != nil:
		rp.clk.Advance(time.Duration(*s.AdvanceMS) * time.Millisecond)
		return Entry{
			Op:      opAdvance,
			Arg:     fmt.Sprintf("%dms", *s.AdvanceMS),
			Outcome: fmt.Sprintf("clock %d", rp.clk.Millis()),
		}

	case s.Poll:
		res := rp.eng.Poll()
		e := Entry{Op: opPoll, Outcome: res.String()}
		if res == atcmd.ResultOK || res == atcmd.ResultError {
			if resp := rp.eng.LastResponse(); resp != "" {
				e.Detail = fmt.Sprintf("response %q", resp)
			}
		}

		return e

	default:
		code, _ := eventByName(*s.Parse)
		e := Entry{Op: opParse, Arg: *s.Parse}
		ev, err := rp.eng.ParseEvent(code)
		if err != nil {
			e.Outcome, e.Detail = "error", err.Error()
			return e
		}
		e.Outcome = fmt.Sprint(ev.Value)
		e.Detail = fmt.Sprintf("payload %q", ev.Payload)

		return e
	}
}

func eventByName(name string) (atcmd.Result, bool) {
	for _, spec := range atcmd.DefaultEvents() {
		if spec.Code.String() == name {
			return spec.Code, true
		}
	}

	return 0, false
}

func formatMetrics(m *atcmd.Metrics) string {
	return fmt.Sprintf("metrics commands=%d write_errors=%d ok=%d error=%d timeout=%d events=%d event_errors=%d recv=%d evicted=%d",
		m.CommandCount.Load(), m.WriteErrCount.Load(), m.OKCount.Load(), m.ErrorCount.Load(),
		m.TimeoutCount.Load(), m.EventCount.Load(), m.EventErrCount.Load(),
		m.RecvBytes.Load(), m.EvictedBytes.Load())
}
