// CLAUDE:SUMMARY Tests ref assignment, resolution, and the rendered element listing.
package snapshot

import (
	"strings"
	"testing"
)

func capture() *Snapshot {
	return New("https://example.test/login", []Element{
		{Role: "textbox", Name: "Email", Tag: "input", NodeID: "101"},
		{Role: "textbox", Name: "Password", Tag: "input", NodeID: "102"},
		{Role: "button", Name: "Sign in", Tag: "button", NodeID: "103"},
		{Tag: "div", NodeID: "104"},
	})
}

func TestNew_AssignsRefsInOrder(t *testing.T) {
	s := capture()
	want := []string{"e1", "e2", "e3", "e4"}
	if len(s.Elements) != len(want) {
		t.Fatalf("got %d elements, want %d", len(s.Elements), len(want))
	}
	for i, ref := range want {
		if s.Elements[i].Ref != ref {
			t.Errorf("element %d ref = %q, want %q", i, s.Elements[i].Ref, ref)
		}
	}
	if s.ID == "" {
		t.Error("snapshot ID is empty")
	}
}

func TestResolve(t *testing.T) {
	s := capture()

	e, ok := s.Resolve("e3")
	if !ok {
		t.Fatal("Resolve(e3) not found")
	}
	if e.Name != "Sign in" || e.ID() != "103" {
		t.Errorf("Resolve(e3) = %+v", e)
	}

	if _, ok := s.Resolve("e99"); ok {
		t.Error("Resolve(e99) found, want not found")
	}
	if _, ok := s.Resolve(""); ok {
		t.Error("Resolve(\"\") found, want not found")
	}
}

func TestResolve_NewCaptureInvalidatesOldRefs(t *testing.T) {
	old := capture()
	fresh := New("https://example.test/login", []Element{
		{Role: "button", Name: "Sign in", Tag: "button", NodeID: "203"},
	})

	if _, ok := fresh.Resolve("e2"); ok {
		t.Error("stale ref resolved against fresh snapshot")
	}
	e, ok := fresh.Resolve("e1")
	if !ok || e.NodeID != "203" {
		t.Errorf("fresh e1 = %+v, ok=%v", e, ok)
	}
	if old.ID == fresh.ID {
		t.Error("snapshots share an ID")
	}
}

func TestRender(t *testing.T) {
	got := capture().Render()

	for _, want := range []string{
		"Page snapshot: https://example.test/login\n",
		"- textbox \"Email\" [ref=e1]\n",
		"- button \"Sign in\" [ref=e3]\n",
		"- div [ref=e4]\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("render missing %q:\n%s", want, got)
		}
	}
}
