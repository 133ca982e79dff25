package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Peers lists the participant names steps and assertions may use.
	Peers []string `yaml:"peers"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step submits one post and states the expected outcome.
type Step struct {
	Submit Submit  `yaml:"submit"`
	Expect Outcome `yaml:"expect"`
}

// Submit describes the post a step submits.
type Submit struct {
	Target  string `yaml:"target"`
	Author  string `yaml:"author"`
	Content string `yaml:"content"`

	// ID picks the post id. Zero means the step's 1-based index.
	ID uint64 `yaml:"id,omitempty"`

	// Backdate sets the claimed timestamp this far before submission,
	// e.g. "24h".
	Backdate string `yaml:"backdate,omitempty"`
}

// Assertion checks the final state.
type Assertion struct {
	Type    string  `yaml:"type"`
	Peer    string  `yaml:"peer"`
	Post    uint64  `yaml:"post,omitempty"`
	Count   *int    `yaml:"count,omitempty"`
	Content *string `yaml:"content,omitempty"`
}

// Assertion type constants.
const (
	AssertTimelineCount = "timeline_count"
	AssertContent       = "content"
	AssertAbsent        = "absent"
	AssertStamped       = "stamped"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos do not silently weaken a scenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files in dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Peers) == 0 {
		return fmt.Errorf("peers list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	peers := make(map[string]bool, len(s.Peers))
	for i, p := range s.Peers {
		if p == "" {
			return fmt.Errorf("peers[%d]: name is required", i)
		}
		if peers[p] {
			return fmt.Errorf("peers[%d]: duplicate peer %q", i, p)
		}
		peers[p] = true
	}

	for i, step := range s.Steps {
		sub := step.Submit
		if !peers[sub.Target] {
			return fmt.Errorf("steps[%d]: unknown target %q", i, sub.Target)
		}
		if !peers[sub.Author] {
			return fmt.Errorf("steps[%d]: unknown author %q", i, sub.Author)
		}
		if sub.Backdate != "" {
			if _, err := time.ParseDuration(sub.Backdate); err != nil {
				return fmt.Errorf("steps[%d]: backdate: %w", i, err)
			}
		}
		if !step.Expect.valid() {
			return fmt.Errorf("steps[%d]: unknown expect %q", i, step.Expect)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], peers); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion, peers map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if !peers[a.Peer] {
		return fmt.Errorf("assertions[%d]: unknown peer %q", index, a.Peer)
	}

	switch a.Type {
	case AssertTimelineCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for timeline_count", index)
		}
	case AssertContent:
		if a.Post == 0 {
			return fmt.Errorf("assertions[%d]: post is required for content", index)
		}
		if a.Content == nil {
			return fmt.Errorf("assertions[%d]: content is required for content", index)
		}
	case AssertAbsent:
	case AssertStamped:
		if a.Post == 0 {
			return fmt.Errorf("assertions[%d]: post is required for stamped", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
