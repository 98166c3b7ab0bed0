package cachecontrol

import "net/http"

// Wrap returns next with the directive applied to its responses. The header
// is decided once the response status is known: statuses below 400 get the
// composed directive, errors get no-cache. An already-present Cache-Control
// header is never overwritten, so with nested directives the innermost one
// wins. A zero directive returns next unchanged.
func (d Directive) Wrap(next http.Handler) http.Handler {
	if d.Zero() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&responseWriter{ResponseWriter: w, directive: d}, r)
	})
}

// responseWriter injects the Cache-Control header on the first write.
type responseWriter struct {
	http.ResponseWriter
	directive Directive
	wrote     bool
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.wrote {
		w.wrote = true
		h := w.Header()
		if h.Get("Cache-Control") == "" {
			if status >= http.StatusBadRequest {
				h.Set("Cache-Control", "no-cache")
			} else {
				h.Set("Cache-Control", w.directive.Header())
			}
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Flush passes through to streaming-capable writers.
func (w *responseWriter) Flush() {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap supports http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
