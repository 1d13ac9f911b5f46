package shield

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(DefaultHeaders())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestHeadToGet(t *testing.T) {
	var seenMethod string
	h := HeadToGet(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenMethod = r.Method
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("HEAD", "/health", nil))
	if seenMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", seenMethod)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/health", nil))
	if seenMethod != http.MethodPost {
		t.Errorf("method = %q, want POST (non-HEAD untouched)", seenMethod)
	}
}

func TestStatusStack_Order(t *testing.T) {
	stack := StatusStack()
	if len(stack) != 2 {
		t.Fatalf("stack len = %d, want 2", len(stack))
	}

	h := okHandler()
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("HEAD", "/health", nil))
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") == "" {
		t.Error("security headers missing from stacked handler")
	}
}
