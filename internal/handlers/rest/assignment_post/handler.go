package assignment_post

import (
	"net/http"

	"dispatch/internal/handlers/rest/dto"
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

// ServeHTTP предлагает заказ курьеру. Проигравший гонку за заказ получает 409 already_claimed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var offerDTO dto.OfferRequest
	if err := respond.Decode(r, &offerDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed offer body")
		return
	}
	if offerDTO.OrderID == "" || offerDTO.CourierID == "" {
		respond.BadRequest(w, h.log, "order_id and courier_id are required")
		return
	}

	assignment, err := h.service.Offer(r.Context(), offerDTO.OrderID, offerDTO.CourierID)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, dto.NewAssignment(assignment))
}
