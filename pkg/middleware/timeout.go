package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// deadlineWriter guards the ResponseWriter so the handler goroutine cannot
// write after the request deadline fired and the 504 was already sent.
type deadlineWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	expired bool
	written bool
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.written {
		return
	}

	dw.written = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}

	dw.written = true
	return dw.ResponseWriter.Write(b)
}

// expire marks the writer dead and reports whether the handler had already
// produced a response.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.expired = true
	return dw.written
}

// RequestTimeout bounds every request by the configured deadline. Booking
// mutations hold optimistic-lock retries, so the deadline also caps how long
// a contended update can spin before the caller gets a timeout.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(dw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if !dw.expire() {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = w.Write([]byte(`{"error":"Request deadline exceeded"}`))
				}
			}
		})
	}
}
