package courier_post

import (
	"net/http"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"
	"dispatch/pkg/logger"

	"github.com/AlekSi/pointer"
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
	var courierCreateDTO dto.CourierCreate
	if err := respond.Decode(r, &courierCreateDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed courier body")
		return
	}

	courierModify := entities.CourierModify{
		Name:  pointer.To(courierCreateDTO.Name),
		Phone: pointer.To(courierCreateDTO.Phone),
		Hub:   pointer.To(courierCreateDTO.Hub),
	}
	if courierCreateDTO.ID != "" {
		courierModify.ID = pointer.To(courierCreateDTO.ID)
	}
	if courierCreateDTO.TransportType != "" {
		courierModify.TransportType = pointer.To(entities.CourierTransportType(courierCreateDTO.TransportType))
	}
	if courierCreateDTO.Plate != "" {
		courierModify.Plate = pointer.To(courierCreateDTO.Plate)
	}

	courier, err := h.service.RegisterCourier(r.Context(), courierModify)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	h.log.Info("courier registered", logger.NewField("courier_id", courier.ID))
	respond.JSON(w, h.log, http.StatusCreated, dto.NewCourier(courier))
}
