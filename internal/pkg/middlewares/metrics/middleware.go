package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"dispatch/pkg/logger"

	"github.com/gorilla/mux"
)

// Middleware пишет метрики и лог запроса. Подписки меряются отдельной гистограммой,
// пробы /healthcheck и /metrics логируются на уровне Debug.
func Middleware(log handlerLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			statusCode := strconv.Itoa(rw.statusCode)

			// Пробуем взять из mux-роут
			handlerPath := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					handlerPath = template
				}
			}

			HTTPRequestTotal.WithLabelValues(r.Method, handlerPath, statusCode).Inc()
			if strings.HasSuffix(handlerPath, "/subscribe") {
				HTTPStreamDuration.WithLabelValues(handlerPath).Observe(duration.Seconds())
			} else {
				HTTPRequestDuration.WithLabelValues(r.Method, handlerPath, statusCode).Observe(duration.Seconds())
			}

			fields := []logger.Field{
				logger.NewField("method", r.Method),
				logger.NewField("route", handlerPath),
				logger.NewField("status", statusCode),
				logger.NewField("duration", duration.String()),
			}
			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				log.Error("HTTP request", append(fields, logger.NewField("path", r.URL.Path))...)
			case handlerPath == "/healthcheck" || handlerPath == "/metrics":
				log.Debug("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap нужен http.ResponseController: SSE-обработчики сбрасывают буфер и дедлайн записи.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
