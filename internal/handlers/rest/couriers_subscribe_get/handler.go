package couriers_subscribe_get

import (
	"net/http"

	"dispatch/internal/handlers/rest/respond"
	"dispatch/pkg/logger"
)

const event = "fleet"

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With(logger.NewField("stream", event))

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

// ServeHTTP отдаёт поток срезов парка (SSE). Каждое событие - полный срез по фильтру.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	updates, err := h.service.SubscribeCourierFleet(r.Context(), respond.CourierFilter(r))
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	h.log.Info("fleet subscription opened", logger.NewField("remote_addr", r.RemoteAddr))
	respond.Stream(w, r, h.log, event, updates)
	h.log.Info("fleet subscription closed", logger.NewField("remote_addr", r.RemoteAddr))
}
