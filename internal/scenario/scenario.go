// Package scenario replays scripted modem conversations against an
// atcmd.Engine and records a deterministic trace.
//
// A scenario is a YAML file. The engine runs on an in-memory transport and a
// manual clock, so a replay never touches hardware and never sleeps:
//
//	name: cpin_ready
//	steps:
//	  - exec: AT+CPIN?
//	  - feed: "\r\n+CPIN: READY\r\n\r\nOK\r\n"
//	  - poll: true
//	    expect: EVT_CPIN
//	  - parse: EVT_CPIN
//	    expect: READY
//	  - poll: true
//	    expect: OK
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario is returned for scenarios that cannot be replayed.
var ErrInvalidScenario = errors.New("scenario: invalid scenario")

// Scenario is one scripted conversation.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description is free text.
	Description string `yaml:"description,omitempty"`

	// Engine overrides the engine defaults for this scenario.
	Engine EngineConfig `yaml:"engine,omitempty"`

	Steps []Step `yaml:"steps"`
}

// EngineConfig holds the engine settings a scenario may override. Zero
// values keep the defaults.
type EngineConfig struct {
	TimeoutMS  int `yaml:"timeout_ms,omitempty"`
	BufferSize int `yaml:"buffer_size,omitempty"`
	// ClockStart is the initial counter value; set it near 2^32 to
	// exercise the overflow.
	ClockStart uint32 `yaml:"clock_start,omitempty"`
	// WriteLimit caps how many bytes one write accepts; zero means no limit.
	WriteLimit int `yaml:"write_limit,omitempty"`
}

// Step performs exactly one action. Expect, when set, is compared with the
// outcome of that action.
type Step struct {
	// Exec sends a command; CRLF is appended.
	Exec *string `yaml:"exec,omitempty"`
	// Feed queues raw bytes on the modem side of the transport.
	Feed *string `yaml:"feed,omitempty"`
	// AdvanceMS moves the clock forward.
	AdvanceMS *int `yaml:"advance_ms,omitempty"`
	// Poll runs one Engine.Poll.
	Poll bool `yaml:"poll,omitempty"`
	// Parse consumes an event by result name, such as EVT_CPIN.
	Parse *string `yaml:"parse,omitempty"`

	Expect *string `yaml:"expect,omitempty"`
}

func (s *Step) op() (string, error) {
	var ops []string
	if s.Exec != nil {
		ops = append(ops, opExec)
	}
	if s.Feed != nil {
		ops = append(ops, opFeed)
	}
	if s.AdvanceMS != nil {
		ops = append(ops, opAdvance)
	}
	if s.Poll {
		ops = append(ops, opPoll)
	}
	if s.Parse != nil {
		ops = append(ops, opParse)
	}

	if len(ops) != 1 {
		return "", fmt.Errorf("%w: step needs exactly one action, got %v", ErrInvalidScenario, ops)
	}

	return ops[0], nil
}

// Step actions as they appear in traces.
const (
	opExec    = "exec"
	opFeed    = "feed"
	opAdvance = "advance"
	opPoll    = "poll"
	opParse   = "parse"
)

// Load reads and validates a scenario file. Unknown keys are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return &sc, nil
}

// Validate checks the scenario without running it.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrInvalidScenario, sc.Name)
	}

	for i := range sc.Steps {
		step := &sc.Steps[i]
		op, err := step.op()
		if err != nil {
			return fmt.Errorf("%s step %d: %w", sc.Name, i+1, err)
		}
		if op == opAdvance && *step.AdvanceMS < 0 {
			return fmt.Errorf("%w: %s step %d: negative advance_ms", ErrInvalidScenario, sc.Name, i+1)
		}
		if op == opParse {
			if _, ok := eventByName(*step.Parse); !ok {
				return fmt.Errorf("%w: %s step %d: unknown event %q", ErrInvalidScenario, sc.Name, i+1, *step.Parse)
			}
		}
	}

	if sc.Engine.WriteLimit < 0 {
		return fmt.Errorf("%w: %s: negative write_limit", ErrInvalidScenario, sc.Name)
	}

	return nil
}
