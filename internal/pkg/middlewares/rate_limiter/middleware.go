package rate_limiter

import (
	"net/http"
	"strconv"

	"dispatch/internal/handlers/rest/respond"
	"dispatch/pkg/logger"

	"github.com/gorilla/mux"
)

// Middleware ограничивает общий поток запросов. Маршруты из exempt (шаблоны mux,
// например пробы и /metrics) лимитом не режутся.
func Middleware(log handlerLogger, rateLimiterQPS int, rlimiter Limiter, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, route := range exempt {
		skip[route] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeTemplate(r)
			if _, ok := skip[route]; ok || rlimiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("rate limit exceeded",
				logger.NewField("method", r.Method),
				logger.NewField("route", route),
				logger.NewField("remote_addr", r.RemoteAddr),
			)
			RateLimitExceededTotal.WithLabelValues(r.Method, route).Inc()

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateLimiterQPS))
			w.Header().Set("Retry-After", "1")
			respond.JSON(w, log, http.StatusTooManyRequests, respond.ErrorBody{
				Error:   "rate_limited",
				Message: "rate limit exceeded, try again later",
			})
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return r.URL.Path
}
