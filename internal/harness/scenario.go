package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hush/internal/schema"
)

// Scenario defines a conformance scenario for the suppression system.
// Scenarios execute a sequence of steps on a dedicated goroutine and
// assert on the resulting report routing decisions.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is an optional fixed run identifier for deterministic
	// journal contents. If empty, a fresh UUIDv7 is generated per run.
	RunID string `yaml:"run_id,omitempty"`

	// Steps is the sequence of operations to execute.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and journal after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is a single scenario operation.
type Step struct {
	// Op is one of acquire, release, panic.
	Op string `yaml:"op"`

	// Scope is the 1-based acquire index targeted by a release step.
	// Zero means the most recently acquired live scope.
	Scope int `yaml:"scope,omitempty"`

	// Value is the panic value for panic steps.
	Value string `yaml:"value,omitempty"`

	// Expect states the required routing decision for a panic step:
	// "silent" (suppressed) or "printed" (forwarded).
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the trace or journal.
type Assertion struct {
	// Type specifies the assertion type:
	// - "emitted_count": number of forwarded reports in the trace
	// - "suppressed_count": number of discarded reports in the trace
	// - "emitted_order": forwarded panic values, in order
	// - "journal_count": journaled decisions with the given outcome
	Type string `yaml:"type"`

	// Count is the expected number of occurrences
	// (emitted_count, suppressed_count, journal_count).
	Count int `yaml:"count,omitempty"`

	// Outcome selects the journal outcome for journal_count:
	// "emitted" or "suppressed".
	Outcome string `yaml:"outcome,omitempty"`

	// Values is the expected forwarding order (emitted_order).
	Values []string `yaml:"values,omitempty"`
}

// Step operations.
const (
	OpAcquire = "acquire"
	OpRelease = "release"
	OpPanic   = "panic"
)

// Expect values for panic steps.
const (
	ExpectSilent  = "silent"
	ExpectPrinted = "printed"
)

// Assertion type constants.
const (
	AssertEmittedCount    = "emitted_count"
	AssertSuppressedCount = "suppressed_count"
	AssertEmittedOrder    = "emitted_order"
	AssertJournalCount    = "journal_count"
)

// LoadScenario reads and parses a scenario YAML file.
// The data is validated against the embedded CUE schema first, then
// decoded strictly (unknown fields are typos), then checked for the
// semantic constraints the schema cannot express.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if err := schema.ValidateScenario(path, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks the constraints the CUE schema cannot express:
// release indexes must reference an acquire that exists by that point,
// panic steps need a value and an expect clause.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	acquires := 0
	live := 0
	for i, step := range s.Steps {
		switch step.Op {
		case OpAcquire:
			acquires++
			live++
		case OpRelease:
			if step.Scope < 0 {
				return fmt.Errorf("steps[%d]: scope must be positive (1-based acquire index)", i)
			}
			if step.Scope > acquires {
				return fmt.Errorf("steps[%d]: scope %d references an acquire that has not happened (only %d so far)", i, step.Scope, acquires)
			}
			if live == 0 {
				return fmt.Errorf("steps[%d]: release without a live scope", i)
			}
			live--
		case OpPanic:
			if step.Value == "" {
				return fmt.Errorf("steps[%d]: value is required for panic steps", i)
			}
			switch step.Expect {
			case ExpectSilent, ExpectPrinted:
			case "":
				return fmt.Errorf("steps[%d]: expect is required for panic steps", i)
			default:
				return fmt.Errorf("steps[%d]: unknown expect %q (must be silent or printed)", i, step.Expect)
			}
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEmittedCount, AssertSuppressedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertEmittedOrder:
		if a.Values == nil {
			return fmt.Errorf("assertions[%d]: values list is required for emitted_order", index)
		}
	case AssertJournalCount:
		if a.Outcome != "emitted" && a.Outcome != "suppressed" {
			return fmt.Errorf("assertions[%d]: outcome must be emitted or suppressed for journal_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
