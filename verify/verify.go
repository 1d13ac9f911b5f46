// CLAUDE:SUMMARY Classifies a locator's matched element set against a snapshot reference element.
// Package verify decides whether a locator expression correctly identifies
// a snapshotted element. Classification is pure and total: every
// combination of matched set and reference resolves to exactly one
// Outcome, and unsuccessful diagnostics are results, never errors.
package verify

import (
	"context"

	"github.com/hazyhaar/testweave/locator"
)

// Handle is an identity-comparable reference to a live document node.
// Two handles address the same node exactly when their IDs are equal.
// The package never creates or destroys handles, only compares them.
type Handle interface {
	ID() string
}

// Outcome is the five-way classification of a locator against a reference.
type Outcome int

const (
	// NoReference: the snapshot reference did not resolve to a live element.
	NoReference Outcome = iota
	// NoMatch: the locator matched no elements.
	NoMatch
	// ExactMatch: the locator matched exactly the reference element.
	ExactMatch
	// AmbiguousMatch: the locator matched the reference plus other elements.
	AmbiguousMatch
	// WrongMatch: the locator matched elements, none of them the reference.
	WrongMatch
)

func (o Outcome) String() string {
	switch o {
	case NoReference:
		return "no_reference"
	case NoMatch:
		return "no_match"
	case ExactMatch:
		return "exact_match"
	case AmbiguousMatch:
		return "ambiguous_match"
	case WrongMatch:
		return "wrong_match"
	}
	return "unknown"
}

// Message returns the fixed diagnostic text for the outcome.
func (o Outcome) Message() string {
	switch o {
	case NoReference:
		return "No reference element found"
	case NoMatch:
		return "Locator does not match any elements"
	case ExactMatch:
		return "Locator is valid"
	case AmbiguousMatch:
		return "Locator is ambiguous, it matches the reference element but also other elements"
	default:
		return "Locator is invalid, it does not match the reference element"
	}
}

// Classify applies the decision table, first matching rule wins:
//
//  1. reference absent               -> NoReference
//  2. matched empty                  -> NoMatch
//  3. matched == {reference}         -> ExactMatch
//  4. len(matched) > 1, ref included -> AmbiguousMatch
//  5. otherwise                      -> WrongMatch
//
// Duplicate handle identities in matched (an engine artifact) are
// collapsed before the table is applied, so a locator matching the
// reference twice is still an ExactMatch.
func Classify(matched []Handle, reference Handle) (Outcome, string) {
	if reference == nil {
		return NoReference, NoReference.Message()
	}

	matched = dedup(matched)
	if len(matched) == 0 {
		return NoMatch, NoMatch.Message()
	}

	refID := reference.ID()
	included := false
	for _, h := range matched {
		if h.ID() == refID {
			included = true
			break
		}
	}

	switch {
	case len(matched) == 1 && included:
		return ExactMatch, ExactMatch.Message()
	case len(matched) > 1 && included:
		return AmbiguousMatch, AmbiguousMatch.Message()
	default:
		return WrongMatch, WrongMatch.Message()
	}
}

// dedup collapses duplicate handle identities, preserving document order.
func dedup(handles []Handle) []Handle {
	if len(handles) < 2 {
		return handles
	}
	seen := make(map[string]struct{}, len(handles))
	out := handles[:0:0]
	for _, h := range handles {
		if _, ok := seen[h.ID()]; ok {
			continue
		}
		seen[h.ID()] = struct{}{}
		out = append(out, h)
	}
	return out
}

// Matcher evaluates an engine query against the current document state,
// returning matches in document order. Engine faults surface as errors
// (the caller sees them as tool failures, not classifications).
type Matcher interface {
	Match(ctx context.Context, q locator.Query) ([]Handle, error)
}

// RefResolver looks a snapshot reference up against the captured snapshot.
// An unknown or stale reference is (nil, false, nil): an expected outcome
// that feeds classification, not an error.
type RefResolver interface {
	ResolveRef(ctx context.Context, ref string) (Handle, bool, error)
}

// Verifier runs the validation pipeline: element match and reference
// lookup concurrently (they are independent reads), then classification
// once both complete.
type Verifier struct {
	matcher  Matcher
	resolver RefResolver
}

// NewVerifier wires a Verifier from its two collaborators.
func NewVerifier(m Matcher, r RefResolver) *Verifier {
	return &Verifier{matcher: m, resolver: r}
}

// Verify resolves both sides and classifies. No partial classification is
// observable: any engine fault aborts the call before the decision table
// runs. The pipeline performs no retries.
func (v *Verifier) Verify(ctx context.Context, q locator.Query, ref string) (Outcome, string, error) {
	type matchResult struct {
		handles []Handle
		err     error
	}
	type refResult struct {
		handle Handle
		found  bool
		err    error
	}

	matchCh := make(chan matchResult, 1)
	refCh := make(chan refResult, 1)

	go func() {
		handles, err := v.matcher.Match(ctx, q)
		matchCh <- matchResult{handles: handles, err: err}
	}()
	go func() {
		h, found, err := v.resolver.ResolveRef(ctx, ref)
		refCh <- refResult{handle: h, found: found, err: err}
	}()

	m := <-matchCh
	r := <-refCh

	if m.err != nil {
		return 0, "", m.err
	}
	if r.err != nil {
		return 0, "", r.err
	}

	var reference Handle
	if r.found {
		reference = r.handle
	}
	outcome, message := Classify(m.handles, reference)
	return outcome, message, nil
}
