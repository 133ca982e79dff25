package harness

// Outcome names what the store did with a submitted post.
type Outcome string

const (
	OutcomeOK                 Outcome = "ok"
	OutcomeAuthorshipMismatch Outcome = "authorship_mismatch"
	OutcomeDuplicatePost      Outcome = "duplicate_post"
)

func (o Outcome) valid() bool {
	switch o {
	case OutcomeOK, OutcomeAuthorshipMismatch, OutcomeDuplicatePost:
		return true
	}
	return false
}

// TraceEvent records one submission.
type TraceEvent struct {
	Step      int     `json:"step"`
	Target    string  `json:"target"`
	Author    string  `json:"author"`
	Post      string  `json:"post"`
	Outcome   Outcome `json:"outcome"`
	Timestamp string  `json:"timestamp,omitempty"` // set when accepted
}

// TimelineEntry is one post of the final state, with peers by name.
type TimelineEntry struct {
	Post      string `json:"post"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every step had its expected outcome and every
	// assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Timelines is the final state keyed by peer name. Every declared peer
	// is present, with an empty slice when it has no timeline.
	Timelines map[string][]TimelineEntry `json:"timelines"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Timelines: map[string][]TimelineEntry{},
		Errors:    []string{},
	}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
