package pickup_post

import (
	"net/http"

	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"
	"dispatch/pkg/logger"
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

// ServeHTTP бронирует доставку instant delivery. В ответе полный заказ вместе с PIN:
// его видит только заказавший клиент.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var pickupDTO dto.PickupRequest
	if err := respond.Decode(r, &pickupDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed pickup body")
		return
	}

	order, err := h.service.RequestPickup(r.Context(), pickupDTO.CustomerID, pickupDTO.ToDomain())
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	h.log.Info("pickup requested",
		logger.NewField("order_id", order.ID),
		logger.NewField("customer_id", order.CustomerID),
	)
	respond.JSON(w, h.log, http.StatusCreated, dto.NewOrder(order))
}
