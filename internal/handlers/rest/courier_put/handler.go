package courier_put

import (
	"net/http"
	"strings"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"

	"github.com/AlekSi/pointer"
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

	var courierUpdateDTO dto.CourierUpdate
	if err := respond.Decode(r, &courierUpdateDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed courier body")
		return
	}

	courierModify := entities.CourierModify{
		ID:    pointer.To(id),
		Name:  courierUpdateDTO.Name,
		Phone: courierUpdateDTO.Phone,
		Plate: courierUpdateDTO.Plate,
		Hub:   courierUpdateDTO.Hub,
	}
	if courierUpdateDTO.TransportType != nil {
		courierModify.TransportType = pointer.To(entities.CourierTransportType(*courierUpdateDTO.TransportType))
	}
	// статус меняется через /availability, сервис отклонит такую правку
	if courierUpdateDTO.Status != nil {
		courierModify.Status = pointer.To(entities.CourierStatusType(*courierUpdateDTO.Status))
	}

	courier, err := h.service.UpdateCourierProfile(r.Context(), courierModify)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, dto.NewCourier(courier))
}
