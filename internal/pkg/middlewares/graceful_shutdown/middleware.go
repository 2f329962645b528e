package graceful_shutdown

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
)

const shuttingDownBody = `{"error":"shutting_down","message":"service is shutting down"}`

// Middleware отклоняет запросы, пришедшие после отмены ongoingCtx, и закрывает
// SSE-подписки при отмене streamsCtx. streamsCtx отменяется до server.Shutdown:
// Shutdown не закрывает активные соединения сам.
func Middleware(isShuttingDown *atomic.Bool, ongoingCtx, streamsCtx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-ongoingCtx.Done():
				if isShuttingDown.Load() {
					reject(w)
					return
				}
			default:
			}

			if !isStream(r) {
				next.ServeHTTP(w, r)
				return
			}

			if isShuttingDown.Load() && streamsCtx.Err() != nil {
				reject(w)
				return
			}

			ctx, cancel := context.WithCancel(r.Context())
			defer cancel()
			stop := context.AfterFunc(streamsCtx, cancel)
			defer stop()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Connection", "close")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(shuttingDownBody))
}

// isStream: подписки живут на маршрутах .../subscribe.
func isStream(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, "/subscribe") ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
