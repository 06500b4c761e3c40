package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

// Benchmark a plain and a brotli-encoded form page.
func BenchmarkClient_Get(b *testing.B) {
	page := "<html><body><form>" + strings.Repeat(`<label>Name <input name="n" value="v"></label>`, 200) + "</form></body></html>"
	mux := http.NewServeMux()
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/br", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = bw.Write([]byte(page))
		_ = bw.Close()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &Client{UserAgent: "fieldtext-bench", MaxAttempts: 1, PerRequestTimeout: 5 * time.Second}
	for _, path := range []string{"/plain", "/br"} {
		b.Run(strings.TrimPrefix(path, "/"), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := c.Get(context.Background(), srv.URL+path); err != nil {
					b.Fatalf("get: %v", err)
				}
			}
		})
	}
}
