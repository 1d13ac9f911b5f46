// CLAUDE:SUMMARY Renders the fixed instruction document that directs an agent through a test scenario.
// Package compose turns a scenario description into the instruction text
// handed to a downstream agent. The agent executes the steps one by one
// through browser tools and only then writes the test script; this
// package never generates code itself.
package compose

import (
	"fmt"
	"strings"
)

// Scenario is the input to Compose. Steps are natural-language actions,
// kept in caller order. An empty Steps slice is valid.
type Scenario struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// directives precede the scenario in every rendered document. They tell
// the downstream agent how to work: drive each step through the browser
// tools, defer script emission until the run completes, and save the
// result in the conventional test directory.
var directives = []string{
	"You are a Playwright test generator.",
	"You are given a scenario, and you need to generate a Playwright test for it.",
	"DO NOT generate the test code based on the scenario alone.",
	"DO run the scenario step by step using the tools provided instead.",
	"Only after all steps are completed, emit a Playwright test that uses the interaction history.",
	"Save the generated test file in the tests directory.",
}

// Compose renders the instruction document. Pure and deterministic: the
// same scenario always yields byte-identical text, and steps keep their
// order with 1-based numbering.
func Compose(s Scenario) string {
	var b strings.Builder

	b.WriteString("# Instructions\n")
	for _, d := range directives {
		b.WriteString("- ")
		b.WriteString(d)
		b.WriteByte('\n')
	}

	b.WriteString("\n# Scenario\n")
	fmt.Fprintf(&b, "Test name: %s\n", s.Name)
	fmt.Fprintf(&b, "Description: %s\n", s.Description)
	b.WriteString("Steps:\n")
	for i, step := range s.Steps {
		fmt.Fprintf(&b, "- %d. %s\n", i+1, step)
	}

	return b.String()
}
