package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"golang.org/x/text/unicode/norm"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// Everything in it is deterministic: seqs come from the logical clock,
// goroutine IDs are excluded, and string values are NFC-normalized so
// the same logical scenario serializes to identical bytes regardless of
// how its YAML encoded the text.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunID        string       `json:"run_id,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// NewTraceSnapshot builds a snapshot from a scenario execution.
// The run ID is included only when the scenario pinned one; generated
// UUIDs would break byte-for-byte comparison.
func NewTraceSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	events := make([]TraceEvent, len(result.Trace))
	for i, event := range result.Trace {
		event.Value = norm.NFC.String(event.Value)
		events[i] = event
	}
	return TraceSnapshot{
		ScenarioName: norm.NFC.String(scenario.Name),
		RunID:        scenario.RunID,
		Trace:        events,
	}
}

// MarshalIndent serializes the snapshot for golden comparison.
func (s TraceSnapshot) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// RunWithGolden executes a scenario and compares the trace against a
// golden file in testdata/golden/<name>.golden. Regenerate with
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails; trace mismatches fail the
// test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	traceJSON, err := NewTraceSnapshot(scenario, result).MarshalIndent()
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
