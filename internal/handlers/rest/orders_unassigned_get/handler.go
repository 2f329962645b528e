package orders_unassigned_get

import (
	"net/http"
	"strconv"

	"dispatch/internal/handlers/rest/respond"
)

const (
	defaultLimit = 50
	maxLimit     = 500
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
	limit := uint64(defaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			respond.BadRequest(w, h.log, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxLimit)
	}

	orders, err := h.service.ListUnassigned(r.Context(), limit)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, orders)
}
