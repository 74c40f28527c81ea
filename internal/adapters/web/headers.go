package web

import "net/http"

// Headers browsers require before enabling SharedArrayBuffer in a
// cross-origin-isolated context.
const (
	coopHeader = "Cross-Origin-Opener-Policy"
	coopValue  = "same-origin"

	coepHeader = "Cross-Origin-Embedder-Policy"
	coepValue  = "require-corp"
)

// withIsolationHeaders sets the COOP/COEP pair before delegating to next,
// so they appear on every response regardless of the status next writes.
func withIsolationHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(coopHeader, coopValue)
		h.Set(coepHeader, coepValue)
		next.ServeHTTP(w, r)
	})
}
