package harness

import (
	"context"
	"fmt"
)

// SuiteResult summarises a directory of scenarios.
type SuiteResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure is one scenario that did not pass.
type ScenarioFailure struct {
	Path     string   `json:"path"`
	Scenario string   `json:"scenario,omitempty"`
	Errors   []string `json:"errors"`
}

// OK reports whether every scenario passed.
func (r *SuiteResult) OK() bool {
	return r.Failed == 0
}

// RunDir loads and runs every scenario file in dir. A scenario that fails
// to load counts as a failure rather than aborting the suite.
func RunDir(ctx context.Context, dir string, opts ...Option) (*SuiteResult, error) {
	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}

	suite := &SuiteResult{}
	for _, path := range paths {
		suite.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			suite.fail(ScenarioFailure{Path: path, Errors: []string{err.Error()}})
			continue
		}

		result, err := RunContext(ctx, scenario, opts...)
		if err != nil {
			suite.fail(ScenarioFailure{Path: path, Scenario: scenario.Name, Errors: []string{err.Error()}})
			continue
		}
		if !result.Pass {
			suite.fail(ScenarioFailure{Path: path, Scenario: scenario.Name, Errors: result.Errors})
			continue
		}
		suite.Passed++
	}
	return suite, nil
}

func (r *SuiteResult) fail(f ScenarioFailure) {
	r.Failed++
	r.Failures = append(r.Failures, f)
}
