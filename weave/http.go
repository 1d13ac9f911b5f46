// CLAUDE:SUMMARY Read-only HTTP status surface: health, open targets, recent audit entries.
package weave

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/testweave/shield"
)

// NewRouter builds the status router. Everything here is read-only; the
// tool surface itself is MCP, not HTTP.
func (w *Weaver) NewRouter() http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.StatusStack() {
		r.Use(mw)
	}

	r.Get("/health", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/targets", func(rw http.ResponseWriter, req *http.Request) {
		writeJSON(rw, 200, w.ListTargets(req.Context()))
	})

	r.Get("/api/audit", func(rw http.ResponseWriter, req *http.Request) {
		if w.auditor == nil {
			writeJSON(rw, 200, []any{})
			return
		}
		limit := queryInt(req, "limit", 50)
		entries, err := w.auditor.Recent(req.Context(), limit)
		if err != nil {
			writeError(rw, 500, err)
			return
		}
		writeJSON(rw, 200, entries)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
