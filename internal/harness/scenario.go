package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a named sequence of
// record-store operations with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Codec selects the table codec: "json" (default) or "yaml".
	Codec string `yaml:"codec,omitempty"`

	// Schemas maps table names to CUE schema sources. Tables listed
	// here validate documents on create and update.
	Schemas map[string]string `yaml:"schemas,omitempty"`

	// Steps is the operation sequence to execute, in order.
	Steps []Step `yaml:"steps"`
}

// Step is one store operation and its expected outcome.
type Step struct {
	// Op is one of "create", "read", "update", "delete", "list".
	Op string `yaml:"op"`

	// Table names the target table.
	Table string `yaml:"table"`

	// ID names the target record (unused for list).
	ID string `yaml:"id,omitempty"`

	// Value is the document for create/update.
	Value map[string]any `yaml:"value,omitempty"`

	// As labels the revision produced by a mutating step so later
	// steps can read at it.
	As string `yaml:"as,omitempty"`

	// At reads or lists at a previously labeled revision instead of
	// the working copy.
	At string `yaml:"at,omitempty"`

	// ExpectError is the error code this step must fail with
	// (see codes.go). Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`

	// ExpectValue asserts the document returned by a read.
	ExpectValue map[string]any `yaml:"expect_value,omitempty"`

	// ExpectIDs asserts the exact id set returned by a list.
	// Nil skips the assertion; an explicit empty list asserts emptiness.
	ExpectIDs []string `yaml:"expect_ids,omitempty"`
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	labels := map[string]bool{}
	for i, step := range s.Steps {
		switch step.Op {
		case "create", "read", "update", "delete", "list":
		default:
			return fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
		if step.Table == "" {
			return fmt.Errorf("step %d: table is required", i+1)
		}
		if step.Op != "list" && step.ID == "" {
			return fmt.Errorf("step %d: id is required for %s", i+1, step.Op)
		}
		if step.At != "" && !labels[step.At] {
			return fmt.Errorf("step %d: revision label %q not defined by an earlier step", i+1, step.At)
		}
		if step.As != "" {
			if step.Op == "read" || step.Op == "list" {
				return fmt.Errorf("step %d: only mutating steps produce revisions", i+1)
			}
			labels[step.As] = true
		}
	}
	return nil
}
