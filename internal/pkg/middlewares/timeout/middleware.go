package timeout

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Middleware ограничивает время обработки запроса. Потоковые подписки
// живут до отключения клиента и под таймаут не попадают.
func Middleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStream(r) {
				next.ServeHTTP(w, r)
				return
			}

			// r.Context() = ongoingCtx (из BaseContext)
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isStream: подписки живут на маршрутах .../subscribe.
func isStream(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, "/subscribe") ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
