package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/chronicle/internal/document"
)

// RunWithGolden executes a scenario and compares its trace against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	traceJSON, err := document.MarshalCanonical(traceDocument(scenario, result))
	if err != nil {
		t.Fatalf("scenario %s: marshal trace: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return result
}

// traceDocument builds the canonical trace form. Only set fields are
// emitted so golden files stay small and stable.
func traceDocument(scenario *Scenario, result *Result) document.Value {
	events := make(document.Array, len(result.Trace))
	for i, e := range result.Trace {
		obj := document.Object{
			"seq":     document.Int(e.Seq),
			"op":      document.String(e.Op),
			"table":   document.String(e.Table),
			"outcome": document.String(e.Outcome),
		}
		if e.Record != "" {
			obj["record"] = document.String(e.Record)
		}
		if e.Committed {
			obj["committed"] = document.Bool(true)
		}
		if e.Value != nil {
			obj["value"] = e.Value
		}
		if e.IDs != nil {
			ids := make(document.Array, len(e.IDs))
			for j, id := range e.IDs {
				ids[j] = document.String(id)
			}
			obj["ids"] = ids
		}
		events[i] = obj
	}

	return document.Object{
		"scenario_name": document.String(scenario.Name),
		"trace":         events,
	}
}
