// CLAUDE:SUMMARY Tests the instruction document template: numbering, order, idempotence, empty steps.
package compose

import (
	"strings"
	"testing"
)

func TestCompose_Template(t *testing.T) {
	got := Compose(Scenario{
		Name:        "Login",
		Description: "User logs in",
		Steps:       []string{"Open page", "Click Sign in"},
	})

	for _, want := range []string{
		"# Instructions\n",
		"# Scenario\n",
		"Test name: Login\n",
		"Description: User logs in\n",
		"Steps:\n",
		"- 1. Open page\n",
		"- 2. Click Sign in\n",
		"step by step using the tools",
		"tests directory",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("document missing %q:\n%s", want, got)
		}
	}
}

func TestCompose_StepNumbering(t *testing.T) {
	steps := []string{"a", "b", "c", "d", "e"}
	got := Compose(Scenario{Name: "n", Description: "d", Steps: steps})

	lines := strings.Split(got, "\n")
	var numbered []string
	for _, l := range lines {
		if strings.HasPrefix(l, "- ") && l[2] >= '0' && l[2] <= '9' {
			numbered = append(numbered, l)
		}
	}
	if len(numbered) != len(steps) {
		t.Fatalf("got %d numbered lines, want %d", len(numbered), len(steps))
	}
	for i, l := range numbered {
		want := "- " + string(rune('1'+i)) + ". " + steps[i]
		if l != want {
			t.Errorf("line %d = %q, want %q", i, l, want)
		}
	}
}

func TestCompose_Idempotent(t *testing.T) {
	s := Scenario{Name: "Checkout", Description: "Buys an item", Steps: []string{"Add to cart", "Pay"}}
	if Compose(s) != Compose(s) {
		t.Fatal("Compose is not deterministic for identical input")
	}
}

func TestCompose_OrderPreserved(t *testing.T) {
	a := Compose(Scenario{Name: "n", Description: "d", Steps: []string{"first", "second"}})
	b := Compose(Scenario{Name: "n", Description: "d", Steps: []string{"second", "first"}})
	if a == b {
		t.Fatal("permuting steps did not change output")
	}
	if !strings.Contains(a, "- 1. first") || !strings.Contains(b, "- 1. second") {
		t.Error("numbering does not follow input order")
	}
}

func TestCompose_EmptySteps(t *testing.T) {
	got := Compose(Scenario{Name: "Empty", Description: "No steps"})
	if !strings.Contains(got, "Test name: Empty\n") {
		t.Errorf("missing name line:\n%s", got)
	}
	if !strings.Contains(got, "Steps:\n") {
		t.Errorf("missing steps heading:\n%s", got)
	}
	if strings.Contains(got, "- 1.") {
		t.Errorf("unexpected step line in empty scenario:\n%s", got)
	}
}
