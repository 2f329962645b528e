package courier_get

import (
	"net/http"
	"strings"

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
		service: service,
		log:     handlerLog,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "courier id is required")
		return
	}

	snapshot, err := h.service.GetCourier(r.Context(), id)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, snapshot)
}
