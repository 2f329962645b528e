package order_delivery_post

import (
	"net/http"
	"strings"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"

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

// ServeHTTP подтверждает вручение по PIN клиента или по фото. Неверный PIN - 422 invalid_delivery_proof.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "order id is required")
		return
	}

	var deliveryDTO dto.DeliveryConfirm
	if err := respond.Decode(r, &deliveryDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed delivery body")
		return
	}
	if deliveryDTO.CourierID == "" {
		respond.BadRequest(w, h.log, "courier_id is required")
		return
	}

	order, err := h.service.ConfirmDelivery(r.Context(), id, deliveryDTO.CourierID, entities.DeliveryProofInput{
		PIN:      strings.TrimSpace(deliveryDTO.PIN),
		PhotoRef: strings.TrimSpace(deliveryDTO.PhotoRef),
	})
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	courier := entities.Viewer{Role: entities.ViewerCourier, ID: deliveryDTO.CourierID}
	respond.JSON(w, h.log, http.StatusOK, entities.NewOrderSnapshot(order).For(courier))
}
