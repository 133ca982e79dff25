package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/peerline/internal/codec"
)

// TraceSnapshot is what golden files hold: the trace and the final state.
type TraceSnapshot struct {
	Scenario  string                     `json:"scenario"`
	Trace     []TraceEvent               `json:"trace"`
	Timelines map[string][]TimelineEntry `json:"timelines"`
}

// toCanonicalMap converts the snapshot into the value types
// codec.MarshalCanonical accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"step":    ev.Step,
			"target":  ev.Target,
			"author":  ev.Author,
			"post":    ev.Post,
			"outcome": string(ev.Outcome),
		}
		if ev.Timestamp != "" {
			m["timestamp"] = ev.Timestamp
		}
		trace[i] = m
	}

	timelines := make(map[string]any, len(s.Timelines))
	for peer, entries := range s.Timelines {
		list := make([]any, len(entries))
		for i, e := range entries {
			list[i] = map[string]any{
				"post":      e.Post,
				"author":    e.Author,
				"content":   e.Content,
				"timestamp": e.Timestamp,
			}
		}
		timelines[peer] = list
	}

	return map[string]any{
		"scenario":  s.Scenario,
		"trace":     trace,
		"timelines": timelines,
	}
}

// CanonicalTrace returns the canonical JSON golden files compare against.
func CanonicalTrace(name string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		Scenario:  name,
		Trace:     result.Trace,
		Timelines: result.Timelines,
	}
	return codec.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden runs scenario and compares its trace with
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	traceJSON, err := CanonicalTrace(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
