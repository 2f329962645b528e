package order_cancel_post

import (
	"net/http"
	"strings"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"
	"dispatch/pkg/logger"

	"github.com/gorilla/mux"
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

// ServeHTTP отменяет заказ до забора. После забора - 409 invalid_transition.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "order id is required")
		return
	}

	var cancelDTO dto.CancelRequest
	if err := respond.Decode(r, &cancelDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed cancel body")
		return
	}
	actor := strings.TrimSpace(cancelDTO.Actor)
	if actor == "" {
		respond.BadRequest(w, h.log, "actor is required")
		return
	}

	order, err := h.service.CancelOrder(r.Context(), id, actor, cancelDTO.Reason)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	h.log.Info("order cancelled",
		logger.NewField("order_id", order.ID),
		logger.NewField("actor", actor),
	)
	dispatcher := entities.Viewer{Role: entities.ViewerDispatcher}
	respond.JSON(w, h.log, http.StatusOK, entities.NewOrderSnapshot(order).For(dispatcher))
}
