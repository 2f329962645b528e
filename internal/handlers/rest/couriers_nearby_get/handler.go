package couriers_nearby_get

import (
	"net/http"
	"strconv"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"
)

const (
	defaultRadiusKm = 3.0
	defaultLimit    = 10
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

// ServeHTTP: GET /couriers/nearby?lat=..&lon=..&radius_km=..&limit=..
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		respond.BadRequest(w, h.log, "lat must be a number")
		return
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		respond.BadRequest(w, h.log, "lon must be a number")
		return
	}

	radiusKm := defaultRadiusKm
	if raw := query.Get("radius_km"); raw != "" {
		if radiusKm, err = strconv.ParseFloat(raw, 64); err != nil {
			respond.BadRequest(w, h.log, "radius_km must be a number")
			return
		}
	}

	limit := defaultLimit
	if raw := query.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			respond.BadRequest(w, h.log, "limit must be an integer")
			return
		}
	}

	candidates, err := h.service.FindNearby(r.Context(), entities.Coordinate{Lat: lat, Lon: lon}, radiusKm, limit)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, dto.NewCandidates(candidates))
}
