package couriers_get

import (
	"fmt"
	"net/http"

	"dispatch/internal/handlers/rest/respond"
)

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter := respond.CourierFilter(r)
	for _, status := range filter.Statuses {
		if !status.Valid() {
			respond.BadRequest(w, h.log, fmt.Sprintf("unknown courier status %q", status))
			return
		}
	}

	respond.JSON(w, h.log, http.StatusOK, h.service.ListCouriers(filter))
}
