package harness

import (
	"fmt"

	"github.com/roach88/chronicle/internal/codec"
	"github.com/roach88/chronicle/internal/document"
	"github.com/roach88/chronicle/internal/schema"
	"github.com/roach88/chronicle/internal/store"
	"github.com/roach88/chronicle/internal/vcs"
)

// TraceEvent records the deterministic outcome of one scenario step.
// Revision hashes and timestamps are deliberately excluded so traces
// compare stably across runs.
type TraceEvent struct {
	Seq     int
	Op      string
	Table   string
	Record  string // empty for list
	Outcome string // CodeOK or an error code
	// Committed is true when the step appended a revision.
	Committed bool
	// Value is the document a successful read returned.
	Value document.Value
	// IDs is the listing a successful list returned (never nil then).
	IDs []string
}

// Result holds a scenario run's trace and its labeled revisions.
type Result struct {
	Trace     []TraceEvent
	Revisions map[string]string // label -> revision ID
}

// Run executes a scenario against a fresh in-memory store. It returns
// an error as soon as a step's outcome deviates from its expectation.
func Run(scenario *Scenario) (*Result, error) {
	if err := scenario.validate(); err != nil {
		return nil, err
	}

	s, err := buildStore(scenario)
	if err != nil {
		return nil, err
	}

	result := &Result{Revisions: map[string]string{}}
	for i, step := range scenario.Steps {
		event, err := runStep(s, result, i+1, step)
		if err != nil {
			return nil, err
		}
		result.Trace = append(result.Trace, event)
	}
	return result, nil
}

func buildStore(scenario *Scenario) (*store.Store, error) {
	backend, err := vcs.OpenMemory()
	if err != nil {
		return nil, err
	}

	opts := []store.Option{}
	switch scenario.Codec {
	case "", "json":
		opts = append(opts, store.WithCodec(codec.JSON{}))
	case "yaml":
		opts = append(opts, store.WithCodec(codec.YAML{}))
	default:
		return nil, fmt.Errorf("unknown codec %q", scenario.Codec)
	}

	if len(scenario.Schemas) > 0 {
		reg := schema.NewRegistry()
		for table, source := range scenario.Schemas {
			sch, err := schema.Compile(table, source)
			if err != nil {
				return nil, err
			}
			reg.Register(table, sch)
		}
		opts = append(opts, store.WithSchemas(reg))
	}

	return store.New(backend, opts...), nil
}

func runStep(s *store.Store, result *Result, seq int, step Step) (TraceEvent, error) {
	event := TraceEvent{
		Seq:    seq,
		Op:     step.Op,
		Table:  step.Table,
		Record: step.ID,
	}

	var opErr error
	switch step.Op {
	case "create", "update":
		doc, err := document.FromGo(step.Value)
		if err != nil {
			return event, fmt.Errorf("step %d: bad value: %w", seq, err)
		}

		var rev string
		if step.Op == "create" {
			rev, opErr = s.CreateRecord(step.Table, step.ID, doc)
		} else {
			rev, opErr = s.UpdateRecord(step.Table, step.ID, doc)
		}
		if opErr == nil {
			event.Committed = true
			if step.As != "" {
				result.Revisions[step.As] = rev
			}
		}

	case "delete":
		var rev string
		rev, opErr = s.DeleteRecord(step.Table, step.ID)
		if opErr == nil {
			event.Committed = true
			if step.As != "" {
				result.Revisions[step.As] = rev
			}
		}

	case "read":
		var value document.Value
		value, opErr = s.ReadRecordAt(step.Table, step.ID, result.Revisions[step.At])
		if opErr == nil {
			event.Value = value
		}

	case "list":
		var ids []string
		ids, opErr = s.ListRecordsAt(step.Table, result.Revisions[step.At])
		if opErr == nil {
			if ids == nil {
				ids = []string{}
			}
			event.IDs = ids
		}
	}

	event.Outcome = outcomeCode(opErr)
	if err := checkExpectations(seq, step, event); err != nil {
		return event, err
	}
	return event, nil
}

func checkExpectations(seq int, step Step, event TraceEvent) error {
	want := step.ExpectError
	if want == "" {
		want = CodeOK
	}
	if event.Outcome != want {
		return fmt.Errorf("step %d (%s %s/%s): outcome %q, want %q",
			seq, step.Op, step.Table, step.ID, event.Outcome, want)
	}

	if step.ExpectValue != nil {
		wantValue, err := document.FromGo(step.ExpectValue)
		if err != nil {
			return fmt.Errorf("step %d: bad expect_value: %w", seq, err)
		}
		if !document.Equal(wantValue, event.Value) {
			return fmt.Errorf("step %d: read %v, want %v",
				seq, document.Interface(event.Value), step.ExpectValue)
		}
	}

	if step.ExpectIDs != nil {
		if len(step.ExpectIDs) != len(event.IDs) {
			return fmt.Errorf("step %d: listed %v, want %v", seq, event.IDs, step.ExpectIDs)
		}
		for i := range step.ExpectIDs {
			if step.ExpectIDs[i] != event.IDs[i] {
				return fmt.Errorf("step %d: listed %v, want %v", seq, event.IDs, step.ExpectIDs)
			}
		}
	}
	return nil
}
