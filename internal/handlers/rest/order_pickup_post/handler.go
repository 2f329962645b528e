package order_pickup_post

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

// ServeHTTP подтверждает забор заказа. Пока не все позиции проверены - 422 incomplete_verification.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "order id is required")
		return
	}

	var actionDTO dto.CourierAction
	if err := respond.Decode(r, &actionDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed pickup body")
		return
	}
	if actionDTO.CourierID == "" {
		respond.BadRequest(w, h.log, "courier_id is required")
		return
	}

	order, err := h.service.ConfirmPickup(r.Context(), id, actionDTO.CourierID)
	if err != nil {
		if entities.IsBusinessOutcome(err) {
			h.log.Warn("pickup refused",
				logger.NewField("order_id", id),
				logger.NewField("courier_id", actionDTO.CourierID),
				logger.NewField("reason", err.Error()),
			)
		}
		respond.Fail(w, h.log, err)
		return
	}

	courier := entities.Viewer{Role: entities.ViewerCourier, ID: actionDTO.CourierID}
	respond.JSON(w, h.log, http.StatusOK, entities.NewOrderSnapshot(order).For(courier))
}
