package store

import (
	"encoding/json"
	"time"
)

// StageTrace records how one pipeline stage handled a proposed write. Traces
// are collected on the Outcome when the store is built WithTracing, giving
// devtools provenance for the effective value: which stage transformed it,
// which stage vetoed, how long each took.
type StageTrace struct {
	Stage    string        `json:"stage"`
	Action   string        `json:"action"` // "unchanged", "replace", "veto", "fault"
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration"`
}

// TraceToJSON serialises a stage trace list for logging or transport.
func TraceToJSON(trace []StageTrace) ([]byte, error) {
	return json.Marshal(trace)
}

// TraceFromJSON deserialises a payload previously produced by TraceToJSON.
func TraceFromJSON(payload []byte) ([]StageTrace, error) {
	var trace []StageTrace
	if err := json.Unmarshal(payload, &trace); err != nil {
		return nil, err
	}
	return trace, nil
}
