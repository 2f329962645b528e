package order_subscribe_get

import (
	"net/http"
	"strings"

	"dispatch/internal/handlers/rest/respond"
	"dispatch/pkg/logger"

	"github.com/gorilla/mux"
)

const event = "order"

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With(logger.NewField("stream", event))

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

// ServeHTTP отдаёт поток снимков заказа (SSE): первым событием текущее состояние, дальше изменения.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "order id is required")
		return
	}

	viewer := respond.Viewer(r)
	updates, err := h.service.SubscribeOrder(r.Context(), id, viewer)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	streamLog := h.log.With(
		logger.NewField("order_id", id),
		logger.NewField("viewer_role", viewer.Role),
	)
	streamLog.Info("order subscription opened")
	respond.Stream(w, r, streamLog, event, updates)
	streamLog.Info("order subscription closed")
}
