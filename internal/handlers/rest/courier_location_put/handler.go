package courier_location_put

import (
	"net/http"
	"strings"
	"time"

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

// ServeHTTP принимает пинг координат. Время пинга задаёт устройство курьера;
// без него берётся время приёма.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "courier id is required")
		return
	}

	var locationDTO dto.LocationUpdate
	if err := respond.Decode(r, &locationDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed location body")
		return
	}
	if locationDTO.Lat == nil || locationDTO.Lon == nil {
		respond.BadRequest(w, h.log, "lat and lon are required")
		return
	}

	ts := time.Now().UTC()
	if locationDTO.Timestamp != nil {
		ts = locationDTO.Timestamp.UTC()
	}

	position, err := h.service.UpdateLocation(
		r.Context(),
		id,
		entities.Coordinate{Lat: *locationDTO.Lat, Lon: *locationDTO.Lon},
		ts,
	)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, dto.NewPosition(position))
}
