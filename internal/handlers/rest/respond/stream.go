package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dispatch/pkg/logger"
)

const keepAliveInterval = 15 * time.Second

// Stream пишет значения из канала как server-sent events, пока канал не закрыт
// или клиент не отключился.
func Stream[T any](w http.ResponseWriter, r *http.Request, log errorLogger, event string, updates <-chan T) {
	rc := http.NewResponseController(w)
	// поток живёт дольше WriteTimeout сервера
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Error("reset write deadline", logger.NewField("error", err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flush(rc, log)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case value, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(value)
			if err != nil {
				log.Error("encode stream event", logger.NewField("error", err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
				return
			}
			flush(rc, log)

		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flush(rc, log)

		case <-r.Context().Done():
			return
		}
	}
}

func flush(rc *http.ResponseController, log errorLogger) {
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Error("flush stream", logger.NewField("error", err))
	}
}
