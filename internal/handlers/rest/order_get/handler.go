package order_get

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
		log:     handlerLog,
		service: service,
	}
}

// ServeHTTP отдаёт снимок заказа глазами зрителя из заголовков X-Viewer-Role и X-Viewer-ID.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "order id is required")
		return
	}

	snapshot, err := h.service.GetOrder(r.Context(), id, respond.Viewer(r))
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, snapshot)
}
