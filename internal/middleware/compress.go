package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// brotliWriter routes the response body through a brotli encoder.
// The encoder is created when the status is known so bodyless responses
// stay unencoded.
type brotliWriter struct {
	http.ResponseWriter
	bw          *brotli.Writer
	wroteHeader bool
}

func (w *brotliWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if code != http.StatusNoContent && code != http.StatusNotModified {
		w.Header().Set("Content-Encoding", "br")
		w.Header().Del("Content-Length")
		w.bw = brotli.NewWriterLevel(w.ResponseWriter, brotli.DefaultCompression)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *brotliWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.bw == nil {
		return w.ResponseWriter.Write(b)
	}
	return w.bw.Write(b)
}

func (w *brotliWriter) close() {
	if w.bw != nil {
		_ = w.bw.Close()
	}
}

// Compress encodes responses with brotli when the client accepts "br".
// WebSocket upgrades and metrics scrapes pass through untouched.
func Compress() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsBrotli(r) || isWebSocketUpgrade(r) || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Accept-Encoding")
			bw := &brotliWriter{ResponseWriter: w}
			defer bw.close()

			next.ServeHTTP(bw, r)
		})
	}
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if name == "br" {
			return true
		}
	}
	return false
}
