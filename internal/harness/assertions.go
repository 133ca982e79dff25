package harness

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/peerline/internal/timeline"
)

// AssertionContext is the final state assertions run against.
type AssertionContext struct {
	Store       *timeline.Store
	Peers       *peerSet
	SubmittedAt map[postKey]time.Time
}

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertTimelineCount:
		return assertTimelineCount(a, actx)
	case AssertContent:
		return assertContent(a, actx)
	case AssertAbsent:
		return assertAbsent(a, actx)
	case AssertStamped:
		return assertStamped(a, actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (actx *AssertionContext) lookup(a Assertion) (timeline.Post, bool) {
	tl, ok := actx.Store.Timeline(actx.Peers.ids[a.Peer])
	if !ok {
		return timeline.Post{}, false
	}
	return tl.Post(PostNumber(a.Post))
}

func assertTimelineCount(a Assertion, actx *AssertionContext) error {
	got := 0
	if tl, ok := actx.Store.Timeline(actx.Peers.ids[a.Peer]); ok {
		got = tl.Len()
	}
	if got != *a.Count {
		return &AssertionError{
			Type:     AssertTimelineCount,
			Expected: fmt.Sprintf("%s has %d posts", a.Peer, *a.Count),
			Actual:   fmt.Sprintf("%d posts", got),
		}
	}
	return nil
}

func assertContent(a Assertion, actx *AssertionContext) error {
	post, ok := actx.lookup(a)
	if !ok {
		return &AssertionError{
			Type:     AssertContent,
			Expected: fmt.Sprintf("%s holds post %d", a.Peer, a.Post),
			Actual:   "post not found",
		}
	}
	if post.Content != *a.Content {
		return &AssertionError{
			Type:     AssertContent,
			Expected: fmt.Sprintf("content %q", *a.Content),
			Actual:   fmt.Sprintf("content %q", post.Content),
		}
	}
	return nil
}

func assertAbsent(a Assertion, actx *AssertionContext) error {
	tl, ok := actx.Store.Timeline(actx.Peers.ids[a.Peer])
	if a.Post == 0 {
		if ok {
			return &AssertionError{
				Type:     AssertAbsent,
				Expected: fmt.Sprintf("%s has no timeline", a.Peer),
				Actual:   fmt.Sprintf("timeline with %d posts", tl.Len()),
			}
		}
		return nil
	}
	if ok && tl.Has(PostNumber(a.Post)) {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("%s lacks post %d", a.Peer, a.Post),
			Actual:   "post present",
		}
	}
	return nil
}

func assertStamped(a Assertion, actx *AssertionContext) error {
	post, ok := actx.lookup(a)
	if !ok {
		return &AssertionError{
			Type:     AssertStamped,
			Expected: fmt.Sprintf("%s holds post %d", a.Peer, a.Post),
			Actual:   "post not found",
		}
	}
	want, ok := actx.SubmittedAt[postKey{a.Peer, a.Post}]
	if !ok {
		return &AssertionError{
			Type:     AssertStamped,
			Expected: fmt.Sprintf("post %d accepted by a step targeting %s", a.Post, a.Peer),
			Actual:   "no accepting step",
		}
	}
	if !post.Timestamp.Equal(want) {
		return &AssertionError{
			Type:     AssertStamped,
			Expected: fmt.Sprintf("timestamp %s", formatTime(want)),
			Actual:   fmt.Sprintf("timestamp %s", formatTime(post.Timestamp)),
		}
	}
	return nil
}
