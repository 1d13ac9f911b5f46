// CLAUDE:SUMMARY Page snapshot model: ordered elements with opaque refs, ref resolution, agent-facing rendering.
// Package snapshot models a captured page as an ordered list of
// interactive elements, each addressable through an opaque reference
// string. References are valid only for the snapshot that minted them;
// a new capture replaces the old snapshot and invalidates its refs.
package snapshot

import (
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/testweave/idgen"
)

// Element is one interactive node from a capture. NodeID is the
// engine's stable node identity (stringified CDP backend node id),
// which doubles as the handle identity used by classification.
type Element struct {
	Ref    string `json:"ref"`
	Role   string `json:"role,omitempty"`
	Name   string `json:"name,omitempty"`
	Tag    string `json:"tag"`
	NodeID string `json:"nodeId"`
}

// ID reports the element's identity, making Element usable anywhere a
// handle is compared.
func (e Element) ID() string { return e.NodeID }

// Snapshot is an immutable capture of a page's interactive elements in
// document order. Refs are assigned e1..eN at construction.
type Snapshot struct {
	ID       string
	PageURL  string
	Taken    time.Time
	Elements []Element

	byRef map[string]int
}

// New builds a snapshot from captured elements, assigning refs in
// document order. The input refs, if any, are overwritten.
func New(pageURL string, elements []Element) *Snapshot {
	s := &Snapshot{
		ID:       idgen.Default(),
		PageURL:  pageURL,
		Taken:    time.Now().UTC(),
		Elements: make([]Element, len(elements)),
		byRef:    make(map[string]int, len(elements)),
	}
	for i, e := range elements {
		e.Ref = fmt.Sprintf("e%d", i+1)
		s.Elements[i] = e
		s.byRef[e.Ref] = i
	}
	return s
}

// Resolve looks a reference up within this snapshot. An unknown ref is
// (zero, false), never an error: it is an expected outcome downstream.
func (s *Snapshot) Resolve(ref string) (Element, bool) {
	i, ok := s.byRef[ref]
	if !ok {
		return Element{}, false
	}
	return s.Elements[i], true
}

// Render produces the agent-facing text listing, one element per line:
//
//	- button "Sign in" [ref=e1]
//	- textbox "Email" [ref=e2]
//
// Elements without an accessible role fall back to their tag name.
func (s *Snapshot) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page snapshot: %s\n", s.PageURL)
	for _, e := range s.Elements {
		kind := e.Role
		if kind == "" {
			kind = e.Tag
		}
		b.WriteString("- ")
		b.WriteString(kind)
		if e.Name != "" {
			fmt.Fprintf(&b, " %q", e.Name)
		}
		fmt.Fprintf(&b, " [ref=%s]\n", e.Ref)
	}
	return b.String()
}
