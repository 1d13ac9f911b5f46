package locator

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve_Role(t *testing.T) {
	tests := []struct {
		expr     string
		wantCSS  string
		wantName string
	}{
		{"role=button", roleSelectors["button"], ""},
		{`role=button[name="Sign in"]`, roleSelectors["button"], "sign in"},
		{`role=button[name=Sign in]`, roleSelectors["button"], "sign in"},
		{`role=link[name='Home']`, roleSelectors["link"], "home"},
		{`role=heading[name="  Welcome   Back "]`, roleSelectors["heading"], "welcome back"},
		{"role=tab", `[role="tab"]`, ""},
	}

	for _, tt := range tests {
		q, err := Resolve(tt.expr, "")
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.expr, err)
		}
		if q.CSS != tt.wantCSS {
			t.Errorf("Resolve(%q) CSS: got %q, want %q", tt.expr, q.CSS, tt.wantCSS)
		}
		if q.Name != tt.wantName {
			t.Errorf("Resolve(%q) Name: got %q, want %q", tt.expr, q.Name, tt.wantName)
		}
		if q.InnermostOnly {
			t.Errorf("Resolve(%q): role queries must not set InnermostOnly", tt.expr)
		}
	}
}

func TestResolve_Text(t *testing.T) {
	q, err := Resolve(`text="Add to cart"`, "")
	if err != nil {
		t.Fatal(err)
	}
	if q.CSS != "*" {
		t.Fatalf("CSS: got %q", q.CSS)
	}
	if q.Name != "add to cart" {
		t.Fatalf("Name: got %q", q.Name)
	}
	if !q.InnermostOnly {
		t.Fatal("text queries must keep innermost matches only")
	}
}

func TestResolve_TestID(t *testing.T) {
	q, err := Resolve("testid=submit-btn", "")
	if err != nil {
		t.Fatal(err)
	}
	if q.CSS != `[data-testid="submit-btn"]` {
		t.Fatalf("default attribute: got %q", q.CSS)
	}

	q, err = Resolve("testid=submit-btn", "data-qa")
	if err != nil {
		t.Fatal(err)
	}
	if q.CSS != `[data-qa="submit-btn"]` {
		t.Fatalf("override attribute: got %q", q.CSS)
	}
}

func TestResolve_CSSPassthrough(t *testing.T) {
	for _, expr := range []string{
		"#login-form",
		".nav > a.active",
		"input[type=text]",
		"css=nav > a",
		"button",
	} {
		q, err := Resolve(expr, "")
		if err != nil {
			t.Fatalf("Resolve(%q): %v", expr, err)
		}
		want := strings.TrimPrefix(expr, "css=")
		// "button" is bare CSS, not role syntax.
		if q.CSS != want {
			t.Errorf("Resolve(%q): got %q, want %q", expr, q.CSS, want)
		}
		if q.Name != "" {
			t.Errorf("Resolve(%q): unexpected name filter %q", expr, q.Name)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	const expr = `role=button[name="Sign in"]`
	a, err := Resolve(expr, "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve(expr, "")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("not deterministic: %+v vs %+v", a, b)
	}
}

func TestResolve_ParseErrors(t *testing.T) {
	tests := []struct {
		expr   string
		reason string
	}{
		{"", "empty expression"},
		{"   ", "empty expression"},
		{"css=", "empty css selector"},
		{"testid=", "empty test id"},
		{`text=""`, "empty text"},
		{"role=", "empty role"},
		{"role=Button", "invalid role"},
		{"role=button[name=", "unterminated option bracket"},
		{"role=button[exact=true]", "only [name=...] options"},
		{"xpath=//button", "unsupported scheme"},
	}

	for _, tt := range tests {
		_, err := Resolve(tt.expr, "")
		if err == nil {
			t.Fatalf("Resolve(%q): expected error", tt.expr)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Resolve(%q): expected *ParseError, got %T", tt.expr, err)
		}
		if !strings.Contains(pe.Reason, tt.reason) {
			t.Errorf("Resolve(%q): reason %q, want containing %q", tt.expr, pe.Reason, tt.reason)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Sign in", "sign in"},
		{"  Sign \t in  ", "sign in"},
		{"SIGN\nIN", "sign in"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
