package ping_get

import (
	"net/http"

	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"
)

type Handler struct {
	log     handlerLogger
	storage string
}

// New: storage - имя активного драйвера хранилища (postgres или memory).
func New(log handlerLogger, storage string) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		storage: storage,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, h.log, http.StatusOK, dto.PingResponse{
		Message: "pong",
		Storage: h.storage,
	})
}
