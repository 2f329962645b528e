package courier_availability_put

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

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "courier id is required")
		return
	}

	var availabilityDTO dto.AvailabilityUpdate
	if err := respond.Decode(r, &availabilityDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed availability body")
		return
	}

	status := entities.CourierStatusType(strings.ToLower(strings.TrimSpace(availabilityDTO.Status)))
	courier, err := h.service.SetAvailability(r.Context(), id, status)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	if courier.PendingOffline {
		h.log.Info("offline deferred until delivery ends", logger.NewField("courier_id", courier.ID))
	}
	respond.JSON(w, h.log, http.StatusOK, dto.NewCourier(courier))
}
